package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"forkvm/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.fv>",
	Short: "Parse and type-check a program without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		timer := observ.NewTimer()
		program, err := parseProgram(cmd, path, timer)
		if err != nil {
			return err
		}
		if err := checkProgram(cmd, path, program, timer); err != nil {
			return err
		}
		if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okColor.Sprint("ok"), path)
		}
		if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
			printTimings(cmd.ErrOrStderr(), timer)
		}
		return nil
	},
}
