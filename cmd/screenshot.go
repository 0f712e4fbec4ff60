package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/element"
	"github.com/mj1618/uiloc/internal/interact"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot [LOCATOR]",
	Short: "Capture a control or the desktop as PNG",
	Long: `Capture the area of a control, or the whole desktop when no locator is
given. --label stamps the control's locator in the top-left corner.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	addSearchFlags(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().Float64("scale", 1, "Scale factor, up to 4")
	screenshotCmd.Flags().Bool("label", false, "Stamp the locator on the image")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}

	var h *element.Handle
	if len(args) > 0 {
		if h, err = r.Target(cmd.Context(), searchParams(cmd, args[0]), ""); err != nil {
			return err
		}
	}
	scale, _ := cmd.Flags().GetFloat64("scale")
	label, _ := cmd.Flags().GetBool("label")
	img, err := r.Dispatcher.Screenshot(h, interact.ScreenshotOptions{Scale: scale, Label: label})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		return os.WriteFile(path, buf.Bytes(), 0644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	out := cmd.OutOrStdout()
	encoder := base64.NewEncoder(base64.StdEncoding, out)
	if _, err := encoder.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}
