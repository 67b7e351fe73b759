package main

import (
	"fmt"
	"io"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"forkvm/internal/ast"
	"forkvm/internal/config"
	"forkvm/internal/diag"
	"forkvm/internal/execlog"
	"forkvm/internal/observ"
	"forkvm/internal/parser"
	"forkvm/internal/sched"
	"forkvm/internal/sema"
)

// parseProgram reads and parses path, printing diagnostics to the
// command's stderr.
func parseProgram(cmd *cobra.Command, path string, timer *observ.Timer) (ast.Stmt, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, fmt.Errorf("invalid --max-diagnostics: %w", err)
	}

	bag := diag.NewBag(maxDiagnostics)
	idx := timer.Begin("parse")
	res := parser.ParseFile(path, parser.Options{MaxErrors: maxErrors, Reporter: diag.BagReporter{Bag: bag}})
	timer.End(idx, "")
	if !res.OK() {
		printDiagnostics(cmd.ErrOrStderr(), path, bag)
		return nil, &reportedError{summary: fmt.Sprintf("%d syntax error(s)", res.Errors)}
	}
	return res.Program, nil
}

// checkProgram runs the type checker and prints its diagnostic.
func checkProgram(cmd *cobra.Command, path string, program ast.Stmt, timer *observ.Timer) error {
	bag := diag.NewBag(1)
	idx := timer.Begin("check")
	_, ok := sema.CheckProgram(program, diag.BagReporter{Bag: bag})
	timer.End(idx, "")
	if !ok {
		printDiagnostics(cmd.ErrOrStderr(), path, bag)
		return &reportedError{summary: "type check failed"}
	}
	return nil
}

func printDiagnostics(w io.Writer, path string, bag *diag.Bag) {
	bag.Sort()
	for _, d := range bag.Items() {
		loc := path
		if d.Pos.Line > 0 {
			loc += ":" + d.Pos.String()
		}
		sev := warnColor.Sprint(d.Severity.String())
		if d.Severity == diag.SevError {
			sev = errorColor.Sprint(d.Severity.String())
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, codeColor.Sprint(d.Code.ID()), d.Message)
		if d.Construct != "" {
			fmt.Fprintf(w, "    %s %s\n", dimColor.Sprint("in:"), d.Construct)
		}
	}
}

// runSettings are the merged config file and flag values.
type runSettings struct {
	cfg  config.Config
	opts sched.Options
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "worker limit per round (default from forkvm.toml, 2)")
	cmd.Flags().String("heap", "", "heap implementation (auto|plain|concurrent)")
	cmd.Flags().Int("shards", 0, "shards of the concurrent heap")
	cmd.Flags().Int("max-rounds", 0, "stop after this many rounds (0 = unlimited)")
	cmd.Flags().String("files-dir", "", "base directory for openRFile")
	cmd.Flags().String("log", "", "execution log path (- for stderr)")
	cmd.Flags().String("log-format", "", "execution log format (text|ndjson|yaml|msgpack)")
}

// resolveRunSettings loads forkvm.toml next to the program (or --config)
// and applies explicitly set flags on top.
func resolveRunSettings(cmd *cobra.Command, path string) (runSettings, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return runSettings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Discover(filepath.Dir(path), explicit)
	if err != nil {
		return runSettings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Run.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("heap") {
		cfg.Run.Heap, _ = flags.GetString("heap")
	}
	if flags.Changed("shards") {
		cfg.Run.Shards, _ = flags.GetInt("shards")
	}
	if flags.Changed("max-rounds") {
		cfg.Run.MaxRounds, _ = flags.GetInt("max-rounds")
	}
	if flags.Changed("files-dir") {
		cfg.Run.FilesDir, _ = flags.GetString("files-dir")
	}
	if flags.Changed("log") {
		cfg.Log.Path, _ = flags.GetString("log")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}

	heartbeat, err := cmd.Root().PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return runSettings{}, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	mode, err := sched.ParseHeapMode(cfg.Run.Heap)
	if err != nil {
		return runSettings{}, err
	}
	if cfg.Run.Workers < 0 || cfg.Run.MaxRounds < 0 || cfg.Run.Shards < 0 {
		return runSettings{}, fmt.Errorf("workers, shards and max-rounds must not be negative")
	}
	return runSettings{
		cfg: cfg,
		opts: sched.Options{
			Workers:   cfg.Run.Workers,
			Heap:      mode,
			Shards:    cfg.Run.Shards,
			MaxRounds: cfg.Run.MaxRounds,
			FilesDir:  cfg.Run.FilesDir,
			Heartbeat: heartbeat,
		},
	}, nil
}

// openLogger opens the execution log if one is configured.
func openLogger(s *runSettings) (execlog.Logger, error) {
	if s.cfg.Log.Path == "" {
		return nil, nil
	}
	format, err := execlog.ParseFormat(s.cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return execlog.Open(execlog.Config{Path: s.cfg.Log.Path, Format: format})
}

// closeLogger closes the execution log and warns on failure; a broken log
// never changes the exit status.
func closeLogger(cmd *cobra.Command, logger execlog.Logger) {
	if err := logger.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", warnColor.Sprint("log:"), err)
	}
}
