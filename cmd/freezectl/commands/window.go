package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate HWND",
	Short: "Bring a window to the foreground",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivate,
}

var captureCmd = &cobra.Command{
	Use:   "capture HWND",
	Short: "Capture a window's client area to PNG",
	Example: `  # Capture a window by handle
  freezectl capture 0x1a2b -o window.png`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

var prepareCmd = &cobra.Command{
	Use:   "prepare FILE",
	Short: "Prepare a PNG capture for text recognition",
	Long: `Rescale a PNG to the target height, re-encode it as JPEG and print the
base64 text. Without --height the configured ocr.target_height is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

var (
	captureOutput string
	prepareHeight uint32
)

func init() {
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(prepareCmd)

	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "capture.png", "output file")
	prepareCmd.Flags().Uint32Var(&prepareHeight, "height", 0, "target height in pixels (default is ocr.target_height)")
}

func runActivate(cmd *cobra.Command, args []string) error {
	hwnd, err := parseHandle(args[0])
	if err != nil {
		return err
	}
	if err := newApp().BringWindowToForeground(hwnd); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Window 0x%x activated\n", hwnd)
	return nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	hwnd, err := parseHandle(args[0])
	if err != nil {
		return err
	}
	data, err := newApp().TakeScreenshot(hwnd)
	if err != nil {
		return err
	}
	if err := os.WriteFile(captureOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", captureOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(data), captureOutput)
	return nil
}

func runPrepare(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	a := newApp()
	height := prepareHeight
	if !cmd.Flags().Changed("height") {
		height = a.DefaultOCRHeight()
	}

	encoded, err := a.PrepareScreenshotForOCR(data, height)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return nil
}
