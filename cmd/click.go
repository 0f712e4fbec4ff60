package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click LOCATOR",
	Short: "Click a control",
	Long: `Click a control at its center. An offset:x,y predicate in the locator
clicks at that offset from the control's top-left corner instead.

Examples:
  uiloc click 'id:Save'
  uiloc click 'name:Document offset:10,5' --double`,
	Args: cobra.ExactArgs(1),
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addSearchFlags(clickCmd)
	clickCmd.Flags().Bool("double", false, "Double-click")
	clickCmd.Flags().Bool("right", false, "Right-click")
	clickCmd.Flags().Bool("middle", false, "Middle-click")
	clickCmd.Flags().Duration("wait", 0, "Settle time after the click (default from settings)")
	clickCmd.MarkFlagsMutuallyExclusive("double", "right", "middle")
}

func runClick(cmd *cobra.Command, args []string) error {
	action := "click"
	for _, kind := range []string{"double", "right", "middle"} {
		if on, _ := cmd.Flags().GetBool(kind); on {
			action = fmt.Sprintf("%s-click", kind)
		}
	}
	params := searchParams(cmd, args[0])
	setWait(cmd, params)
	return runAction(cmd, action, params)
}
