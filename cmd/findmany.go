package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/output"
)

var findManyCmd = &cobra.Command{
	Use:   "find-many LOCATOR",
	Short: "Find every control matching a locator",
	Long: `Resolve a locator to all matching controls. Steps before the last '>'
resolve to a single control; the last step collects every match under it.

Strategies:
  siblings   the first match and its later matching siblings (default)
  all        whole subtree in pre-order`,
	Args: cobra.ExactArgs(1),
	RunE: runFindMany,
}

func init() {
	rootCmd.AddCommand(findManyCmd)
	addSearchFlags(findManyCmd)
	findManyCmd.Flags().String("strategy", "siblings", "Collection strategy: siblings, all")
	findManyCmd.Flags().Bool("wait", false, "Poll until at least one control matches")
}

func runFindMany(cmd *cobra.Command, args []string) error {
	params := searchParams(cmd, args[0])
	params["many"] = true
	params["strategy"], _ = cmd.Flags().GetString("strategy")
	params["wait"], _ = cmd.Flags().GetBool("wait")

	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Exec(cmd.Context(), "find", params)
	if err != nil {
		return err
	}
	elements := res.Elements
	if elements == nil {
		elements = []output.ElementResult{}
	}
	return output.Print(output.FindResult{TS: time.Now().Unix(), Elements: elements})
}
