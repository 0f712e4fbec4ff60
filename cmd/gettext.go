package cmd

import "github.com/spf13/cobra"

var getTextCmd = &cobra.Command{
	Use:   "get-text LOCATOR",
	Short: "Print the window text of a control",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, "get-text", searchParams(cmd, args[0]))
	},
}

var getValueCmd = &cobra.Command{
	Use:   "get-value LOCATOR",
	Short: "Print the value of a control",
	Long:  "Read the value of a control through its value pattern, or its legacy accessibility value when that is all it offers.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, "get-value", searchParams(cmd, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(getTextCmd, getValueCmd)
	addSearchFlags(getTextCmd)
	addSearchFlags(getValueCmd)
}
