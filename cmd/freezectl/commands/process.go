package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"freezeframe/internal/app"

	"github.com/spf13/cobra"
)

var foregroundCmd = &cobra.Command{
	Use:   "foreground",
	Short: "Show the foreground process, window and scale factor",
	Example: `  # Print the focused window's process as JSON
  freezectl foreground`,
	Args: cobra.NoArgs,
	RunE: runForeground,
}

var suspendCmd = &cobra.Command{
	Use:   "suspend PID",
	Short: "Suspend every thread of a process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcessCommand(cmd, args[0], (*app.App).SuspendProcess, "suspended")
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume PID",
	Short: "Resume every thread of a process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcessCommand(cmd, args[0], (*app.App).ResumeProcess, "resumed")
	},
}

func init() {
	rootCmd.AddCommand(foregroundCmd)
	rootCmd.AddCommand(suspendCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runForeground(cmd *cobra.Command, args []string) error {
	proc, err := newApp().GetForegroundProcess()
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(proc)
}

func runProcessCommand(cmd *cobra.Command, arg string, fn func(*app.App, uint32) error, verb string) error {
	pid, err := parsePID(arg)
	if err != nil {
		return err
	}
	if err := fn(newApp(), pid); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Process %d %s\n", pid, verb)
	return nil
}

func parsePID(arg string) (uint32, error) {
	pid, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pid: %s", arg)
	}
	return uint32(pid), nil
}

// parseHandle accepts decimal or 0x-prefixed hexadecimal window handles
func parseHandle(arg string) (uintptr, error) {
	h, err := strconv.ParseUint(arg, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle: %s", arg)
	}
	return uintptr(h), nil
}
