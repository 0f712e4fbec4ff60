package cmd

import "github.com/spf13/cobra"

var focusCmd = &cobra.Command{
	Use:   "focus LOCATOR",
	Short: "Move keyboard focus to a control",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, "focus", searchParams(cmd, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(focusCmd)
	addSearchFlags(focusCmd)
}
