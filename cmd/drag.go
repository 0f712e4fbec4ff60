package cmd

import "github.com/spf13/cobra"

var dragCmd = &cobra.Command{
	Use:   "drag FROM TO",
	Short: "Drag one control onto another",
	Long: `Drag from the center of the control matching FROM to the center of the
control matching TO. With --copy, Ctrl is held for the whole gesture and
released even when the drag fails.`,
	Args: cobra.ExactArgs(2),
	RunE: runDrag,
}

func init() {
	rootCmd.AddCommand(dragCmd)
	addSearchFlags(dragCmd)
	dragCmd.Flags().Bool("copy", false, "Hold Ctrl during the drag")
	dragCmd.Flags().Float64("speed", 1, "Gesture speed")
	dragCmd.Flags().Duration("wait", 0, "Settle time after the drop (default from settings)")
}

func runDrag(cmd *cobra.Command, args []string) error {
	params := searchParams(cmd, "")
	delete(params, "locator")
	params["from-locator"] = args[0]
	params["to-locator"] = args[1]
	params["copy"], _ = cmd.Flags().GetBool("copy")
	params["speed"], _ = cmd.Flags().GetFloat64("speed")
	setWait(cmd, params)
	return runAction(cmd, "drag", params)
}
