package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/batch"
	"github.com/mj1618/uiloc/internal/output"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute multiple actions in a batch",
	Long: `Execute a sequence of actions from a YAML list on stdin.

Each step is an action name with its parameters as a map. Steps execute
sequentially, and by default execution stops on the first error. A find step
with "as" keeps the control under that name for later "ref" and "root"
parameters.

Supported step types: find, click, double-click, right-click, middle-click,
select, send-keys, get-text, get-value, set-value, drag, focus, sleep,
if-exists, try

Example:
  uiloc do <<'EOF'
  - find: { locator: 'name:"Untitled - Notepad"', as: win }
  - set-value: { root: win, locator: "id:15", value: "hello" }
  - if-exists:
      locator: 'name:"Save changes?"'
      then:
        - click: { locator: "name:Save" }
  - try:
      - click: { locator: "name:Close", timeout: 0 }
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error (default: true)")
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	steps, err := batch.ParseSteps(cmd.InOrStdin())
	if err != nil {
		return err
	}

	r, err := newRunner()
	if err != nil {
		return err
	}
	r.StopOnError = stopOnError

	res := r.Run(cmd.Context(), steps)
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%s", res.Error)
	}
	return nil
}
