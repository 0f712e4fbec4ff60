package cmd

import "github.com/spf13/cobra"

var selectCmd = &cobra.Command{
	Use:   "select LOCATOR VALUE",
	Short: "Select an item in a combo box or list",
	Args:  cobra.ExactArgs(2),
	RunE:  runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	addSearchFlags(selectCmd)
	selectCmd.Flags().Duration("wait", 0, "Settle time after selecting (default from settings)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	params := searchParams(cmd, args[0])
	params["value"] = args[1]
	setWait(cmd, params)
	return runAction(cmd, "select", params)
}
