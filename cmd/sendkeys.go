package cmd

import "github.com/spf13/cobra"

var sendKeysCmd = &cobra.Command{
	Use:   "send-keys KEYS",
	Short: "Send key strokes to a control or to the focused window",
	Long: `Send key strokes. Plain characters are typed; braces name keys and
modifiers, which apply to the next stroke.

  {Enter} {Tab} {Esc} {Del} {Back} {Home} {End} {Up} {F5} ...
  {Ctrl}a  {Shift}{Tab}  {Enter 3}  {{} and {}} for literal braces

Without --locator the keys go to whatever has keyboard focus.

Examples:
  uiloc send-keys '{Ctrl}a{Del}hello' --locator 'id:15'
  uiloc send-keys '{Alt}{F4}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSendKeys,
}

func init() {
	rootCmd.AddCommand(sendKeysCmd)
	addSearchFlags(sendKeysCmd)
	sendKeysCmd.Flags().String("locator", "", "Control to send the keys to")
	sendKeysCmd.Flags().Bool("enter", false, "Press Enter after the keys")
	sendKeysCmd.Flags().Duration("interval", 0, "Pause between strokes (default 10ms)")
	sendKeysCmd.Flags().Duration("wait", 0, "Settle time afterwards (default from settings)")
}

func runSendKeys(cmd *cobra.Command, args []string) error {
	locator, _ := cmd.Flags().GetString("locator")
	params := searchParams(cmd, locator)
	if locator == "" {
		delete(params, "locator")
	}
	if len(args) > 0 {
		params["keys"] = args[0]
	}
	params["enter"], _ = cmd.Flags().GetBool("enter")
	if cmd.Flags().Changed("interval") {
		interval, _ := cmd.Flags().GetDuration("interval")
		params["interval"] = interval.String()
	}
	setWait(cmd, params)
	return runAction(cmd, "send-keys", params)
}
