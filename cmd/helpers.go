package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/batch"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/output"
	"github.com/mj1618/uiloc/internal/platform"
	"github.com/mj1618/uiloc/internal/platform/memtree"
)

// newProvider returns the in-memory tree named by --tree, or the provider
// registered for the current OS.
func newProvider() (*platform.Provider, error) {
	path, _ := rootCmd.PersistentFlags().GetString("tree")
	if path == "" {
		return platform.NewProvider()
	}
	tree, err := memtree.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return tree.Provider(), nil
}

func newDispatcher() (*interact.Dispatcher, error) {
	p, err := newProvider()
	if err != nil {
		return nil, err
	}
	return interact.New(p, settings, logger), nil
}

func newRunner() (*batch.Runner, error) {
	d, err := newDispatcher()
	if err != nil {
		return nil, err
	}
	return batch.New(d, logger), nil
}

// addSearchFlags registers the flags that bound a locator search.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("timeout", "", "Search timeout, e.g. 2s (0 = single attempt, default from settings)")
	cmd.Flags().Int("depth", 0, "Max search depth (default from settings)")
}

// searchParams builds step parameters from the locator argument and the
// search flags.
func searchParams(cmd *cobra.Command, locator string) batch.Params {
	params := batch.Params{"locator": locator}
	if timeout, _ := cmd.Flags().GetString("timeout"); timeout != "" {
		params["timeout"] = timeout
	}
	if depth, _ := cmd.Flags().GetInt("depth"); depth > 0 {
		params["depth"] = depth
	}
	return params
}

// setWait copies --wait into params when it was given.
func setWait(cmd *cobra.Command, params batch.Params) {
	if cmd.Flags().Changed("wait") {
		wait, _ := cmd.Flags().GetDuration("wait")
		params["wait"] = wait.String()
	}
}

// runAction executes one step and prints it as an ActionResult.
func runAction(cmd *cobra.Command, action string, params batch.Params) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Exec(cmd.Context(), action, params)
	if err != nil {
		return err
	}
	return output.Print(actionResult(res))
}

func actionResult(res batch.StepResult) output.ActionResult {
	return output.ActionResult{
		OK:      true,
		Action:  res.Action,
		Element: res.Target,
		Target:  res.Dest,
		Text:    res.Text,
		Value:   res.Value,
	}
}
