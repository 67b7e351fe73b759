package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"forkvm/internal/diag"
	"forkvm/internal/observ"
	"forkvm/internal/sched"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.fv>",
	Short: "Type-check and run a forkvm program",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgram,
}

func init() {
	addRunFlags(runCmd)
	runCmd.Flags().String("ui", "auto", "live state viewer (auto|on|off)")
}

func runProgram(cmd *cobra.Command, args []string) error {
	path := args[0]
	timer := observ.NewTimer()

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	settings, err := resolveRunSettings(cmd, path)
	if err != nil {
		return err
	}
	program, err := parseProgram(cmd, path, timer)
	if err != nil {
		return err
	}

	logger, err := openLogger(&settings)
	if err != nil {
		return err
	}
	if logger != nil {
		settings.opts.Logger = logger
		defer closeLogger(cmd, logger)
	}

	useTUI := shouldUseTUI(mode) && !quiet
	var reports chan sched.RoundReport
	if useTUI {
		reports = make(chan sched.RoundReport, 64)
		settings.opts.Observer = sched.ObserverFunc(func(r sched.RoundReport) { reports <- r })
	}

	bag := diag.NewBag(1)
	settings.opts.Reporter = diag.BagReporter{Bag: bag}
	idx := timer.Begin("check")
	ctrl, err := sched.Load(program, settings.opts)
	timer.End(idx, "")
	if errors.Is(err, sched.ErrRejected) {
		printDiagnostics(cmd.ErrOrStderr(), path, bag)
		return &reportedError{summary: "type check failed, program not run"}
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	idx = timer.Begin("run")
	var res sched.Result
	if useTUI {
		res, err = runWithUI(ctx, path, ctrl, reports)
	} else {
		res, err = ctrl.Run(ctx)
	}
	timer.End(idx, ctrl.Stats().String())

	printOutput(cmd.OutOrStdout(), res)
	printFailures(cmd.ErrOrStderr(), res)
	if showTimings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &reportedError{summary: fmt.Sprintf("interrupted after %d rounds", res.Rounds)}
		}
		return err
	}
	if len(res.Failed) > 0 {
		return &reportedError{summary: fmt.Sprintf("%d state(s) failed", len(res.Failed))}
	}
	return nil
}

func printOutput(w io.Writer, res sched.Result) {
	for _, line := range res.Output {
		fmt.Fprintln(w, line)
	}
}

func printFailures(w io.Writer, res sched.Result) {
	for _, f := range res.Failed {
		fmt.Fprintf(w, "%s state %d, round %d: %s %s\n",
			errorColor.Sprint("panic:"), f.StateID, f.Round, codeColor.Sprint(f.Err.Code.String()), f.Err.Message)
		if f.Err.Stmt != "" {
			fmt.Fprintf(w, "    %s %s\n", dimColor.Sprint("at:"), f.Err.Stmt)
		}
	}
}
