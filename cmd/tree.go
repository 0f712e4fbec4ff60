package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/output"
)

var treeCmd = &cobra.Command{
	Use:   "tree [LOCATOR]",
	Short: "Print the control tree under a control or the desktop",
	Long: `Print the controls under a control (or the desktop) with their locator
attributes. With --lines every control is printed on one line in locator
syntax, indented by depth, ready to paste back into a query.

Examples:
  uiloc tree 'name:"Untitled - Notepad"' --lines
  uiloc tree --depth 2 --control Button
  uiloc tree --bbox 0,0,400,300 --flat`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().String("timeout", "", "Search timeout for LOCATOR, e.g. 2s")
	treeCmd.Flags().Int("depth", 0, "Levels to print below the root (0 = all)")
	treeCmd.Flags().String("text", "", "Keep controls whose name, id or class contain this text")
	treeCmd.Flags().String("control", "", "Keep controls of this type, e.g. Button")
	treeCmd.Flags().String("bbox", "", "Keep controls intersecting x,y,width,height")
	treeCmd.Flags().Bool("flat", false, "Flatten the tree with path breadcrumbs")
	treeCmd.Flags().Bool("lines", false, "Print one locator line per control")
}

func runTree(cmd *cobra.Command, args []string) error {
	opts := output.TreeOptions{}
	opts.Depth, _ = cmd.Flags().GetInt("depth")
	opts.Text, _ = cmd.Flags().GetString("text")
	opts.Control, _ = cmd.Flags().GetString("control")
	opts.Flat, _ = cmd.Flags().GetBool("flat")
	if bbox, _ := cmd.Flags().GetString("bbox"); bbox != "" {
		b, err := parseBBox(bbox)
		if err != nil {
			return err
		}
		opts.Bounds = &b
	}

	r, err := newRunner()
	if err != nil {
		return err
	}
	locator := ""
	if len(args) > 0 {
		locator = args[0]
	}
	params := searchParams(cmd, locator)
	// Depth bounds the printed tree, not the search for the root.
	delete(params, "depth")
	h, err := r.Target(cmd.Context(), params, "")
	if err != nil {
		return err
	}

	if lines, _ := cmd.Flags().GetBool("lines"); lines {
		return printTreeLines(cmd, h, opts)
	}
	v, err := output.BuildTree(h, opts)
	if err != nil {
		return err
	}
	return output.Print(v)
}

func printTreeLines(cmd *cobra.Command, h *element.Handle, opts output.TreeOptions) error {
	text, err := output.FormatTree(h, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), h.String()+"\n"+text)
	return err
}

// parseBBox parses "x,y,width,height".
func parseBBox(s string) ([4]int, error) {
	var b [4]int
	if n, err := fmt.Sscanf(s, "%d,%d,%d,%d", &b[0], &b[1], &b[2], &b[3]); err != nil || n != 4 {
		return b, fmt.Errorf("invalid --bbox %q: expected x,y,width,height", s)
	}
	return b, nil
}
