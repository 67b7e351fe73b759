package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"forkvm/internal/diag"
	"forkvm/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <file.fv>",
	Short: "Print a program in canonical layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolP("write", "w", false, "rewrite the file in place")
	fmtCmd.Flags().Bool("check", false, "exit with an error if the file is not formatted")
	fmtCmd.Flags().Int("indent", 4, "indent width in spaces")
	fmtCmd.Flags().Bool("tabs", false, "indent with tabs")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	write, _ := cmd.Flags().GetBool("write")
	check, _ := cmd.Flags().GetBool("check")
	indent, _ := cmd.Flags().GetInt("indent")
	tabs, _ := cmd.Flags().GetBool("tabs")

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	bag := diag.NewBag(0)
	opt := format.Options{IndentWidth: indent, UseTabs: tabs}
	out, err := format.Source(src, opt, diag.BagReporter{Bag: bag})
	if err != nil {
		printDiagnostics(cmd.ErrOrStderr(), path, bag)
		return &reportedError{summary: "cannot format a file with syntax errors"}
	}

	switch {
	case check:
		if !bytes.Equal(src, out) {
			return &reportedError{summary: path + " is not formatted"}
		}
		return nil
	case write:
		if bytes.Equal(src, out) {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, out, info.Mode().Perm())
	default:
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
}
