package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/output"
)

var findCmd = &cobra.Command{
	Use:   "find LOCATOR",
	Short: "Find one control by locator",
	Long: `Resolve a locator to a single control and print its attributes.

The search polls until a control matches or the timeout expires.

Examples:
  uiloc find 'name:"Untitled - Notepad" > id:15'
  uiloc find 'type:Button name:Save' --timeout 500ms`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addSearchFlags(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Exec(cmd.Context(), "find", searchParams(cmd, args[0]))
	if err != nil {
		return err
	}
	return output.Print(output.FindResult{
		TS:       time.Now().Unix(),
		Elements: []output.ElementResult{*res.Target},
	})
}
