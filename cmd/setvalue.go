package cmd

import "github.com/spf13/cobra"

var setValueCmd = &cobra.Command{
	Use:   "set-value LOCATOR VALUE",
	Short: "Set the value of a control",
	Long: `Set the value of a control and read it back.

The value pattern is used when the control offers one. Otherwise the value is
typed: the content is selected and deleted with {Ctrl}a{Del} (unless --append)
and the value is sent as literal key strokes. Line breaks cannot be typed and
are dropped; use --enter to press Enter after the value.

The read-back must equal the expected value after trimming whitespace, or the
command fails with the expected and actual values.`,
	Args: cobra.ExactArgs(2),
	RunE: runSetValue,
}

func init() {
	rootCmd.AddCommand(setValueCmd)
	addSearchFlags(setValueCmd)
	setValueCmd.Flags().Bool("append", false, "Keep the current content and append")
	setValueCmd.Flags().Bool("enter", false, "Press Ctrl+End and Enter afterwards")
	setValueCmd.Flags().Bool("newline", false, "Add a line break to the value (value pattern only)")
	setValueCmd.Flags().Bool("no-keys-fallback", false, "Fail instead of typing when there is no value pattern")
	setValueCmd.Flags().Bool("no-validate", false, "Skip the read-back check")
}

func runSetValue(cmd *cobra.Command, args []string) error {
	params := searchParams(cmd, args[0])
	params["value"] = args[1]
	params["append"], _ = cmd.Flags().GetBool("append")
	params["enter"], _ = cmd.Flags().GetBool("enter")
	params["newline"], _ = cmd.Flags().GetBool("newline")
	noFallback, _ := cmd.Flags().GetBool("no-keys-fallback")
	params["keys-fallback"] = !noFallback
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	params["validate"] = !noValidate
	return runAction(cmd, "set-value", params)
}
