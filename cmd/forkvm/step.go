package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lmorg/readline"
	"github.com/spf13/cobra"

	"forkvm/internal/diag"
	"forkvm/internal/execlog"
	"forkvm/internal/observ"
	"forkvm/internal/sched"
)

var stepCmd = &cobra.Command{
	Use:   "step [flags] <file.fv>",
	Short: "Run a program one round at a time",
	Long: `Interactive stepper. Commands:
  <enter>, n   run one round and print every state
  r            run to completion
  heap         print the shared heap
  q            quit`,
	Args: cobra.ExactArgs(1),
	RunE: runStep,
}

func init() {
	addRunFlags(stepCmd)
}

var stepCommands = []string{"n", "r", "heap", "q", "help"}

type lineSource interface {
	Readline() (string, error)
}

// scannerSource reads commands from a non-terminal stdin.
type scannerSource struct{ sc *bufio.Scanner }

func (s scannerSource) Readline() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

func runStep(cmd *cobra.Command, args []string) error {
	path := args[0]
	settings, err := resolveRunSettings(cmd, path)
	if err != nil {
		return err
	}
	program, err := parseProgram(cmd, path, observ.NewTimer())
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
	bag := diag.NewBag(1)
	settings.opts.Reporter = diag.BagReporter{Bag: bag}
	ctrl, err := sched.Load(program, settings.opts)
	if err != nil {
		printDiagnostics(cmd.ErrOrStderr(), path, bag)
		return &reportedError{summary: "type check failed, program not run"}
	}

	var src lineSource
	if isTerminal(os.Stdin) {
		rl := readline.NewInstance()
		rl.SetPrompt("forkvm> ")
		rl.TabCompleter = completeStep
		src = rl
	} else {
		src = scannerSource{sc: bufio.NewScanner(cmd.InOrStdin())}
	}

	session := &stepSession{ctrl: ctrl, out: cmd.OutOrStdout()}
	if err := session.loop(cmd.Context(), src); err != nil {
		return err
	}
	printFailures(cmd.ErrOrStderr(), ctrl.Result())
	return nil
}

// loop reads commands until q, EOF or an error, then closes the
// controller's files.
func (s *stepSession) loop(ctx context.Context, src lineSource) (err error) {
	defer func() {
		if cerr := s.ctrl.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		line, rerr := src.Readline()
		if rerr != nil {
			return nil // EOF или ctrl+c
		}
		quit, herr := s.handle(ctx, line)
		if herr != nil || quit {
			return herr
		}
	}
}

func completeStep(line []rune, pos int, _ readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
	var suggestions []string
	for _, c := range stepCommands {
		if strings.HasPrefix(c, string(line)) {
			suggestions = append(suggestions, c[pos:])
		}
	}
	return string(line[:pos]), suggestions, nil, readline.TabDisplayGrid
}

type stepSession struct {
	ctrl *sched.Controller
	out  io.Writer
}

// handle executes one stepper command and reports whether to stop.
func (s *stepSession) handle(ctx context.Context, line string) (bool, error) {
	switch strings.TrimSpace(line) {
	case "", "n":
		return s.round(ctx, true)
	case "r":
		for s.ctrl.Phase() != sched.PhaseDone {
			if done, err := s.round(ctx, false); done || err != nil {
				return done, err
			}
		}
		return true, nil
	case "heap":
		for _, e := range s.ctrl.Heap().Snapshot() {
			fmt.Fprintln(s.out, e.String())
		}
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		fmt.Fprintln(s.out, "commands: <enter>/n step, r run, heap, q quit")
		return false, nil
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", line)
		return false, nil
	}
}

func (s *stepSession) round(ctx context.Context, verbose bool) (bool, error) {
	rep, err := s.ctrl.RunRound(ctx)
	if err != nil {
		return true, err
	}
	if rep.Phase == sched.PhaseDone {
		fmt.Fprintf(s.out, "%s after %d rounds\n", okColor.Sprint("finished"), s.ctrl.Round())
		for _, line := range s.ctrl.Result().Output {
			fmt.Fprintln(s.out, line)
		}
		return true, nil
	}
	if verbose {
		for i := range rep.States {
			fmt.Fprint(s.out, execlog.RenderText(rep.Round, &rep.States[i]))
		}
	}
	return false, nil
}
