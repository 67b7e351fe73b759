package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"forkvm/internal/execlog"
	"forkvm/internal/vm"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect execution logs",
}

var traceShowCmd = &cobra.Command{
	Use:   "show [flags] <log.mp|log.yaml>",
	Short: "Decode a msgpack or yaml execution log",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceShow,
}

func init() {
	traceShowCmd.Flags().String("format", "text", "output format (text|json)")
	traceShowCmd.Flags().Int("state", 0, "only show this state id")
	traceShowCmd.Flags().Int("round", 0, "only show this round")
	traceCmd.AddCommand(traceShowCmd)
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	path := args[0]
	outFormat, _ := cmd.Flags().GetString("format")
	stateID, _ := cmd.Flags().GetInt("state")
	round, _ := cmd.Flags().GetInt("round")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var recs []execlog.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		recs, err = execlog.ReadYAML(f)
	default:
		recs, err = execlog.ReadMsgpack(f)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	recs = filterRecords(recs, round, stateID)

	out := cmd.OutOrStdout()
	switch strings.ToLower(outFormat) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "text":
		for _, rec := range recs {
			for i := range rec.States {
				fmt.Fprint(out, execlog.RenderText(rec.Round, &rec.States[i]))
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be text or json)", outFormat)
	}
}

// filterRecords keeps the given round and state; zero means any.
func filterRecords(recs []execlog.Record, round, stateID int) []execlog.Record {
	if round == 0 && stateID == 0 {
		return recs
	}
	var out []execlog.Record
	for _, rec := range recs {
		if round != 0 && rec.Round != round {
			continue
		}
		if stateID != 0 {
			var keep []vm.Snapshot
			for _, s := range rec.States {
				if s.ID == stateID {
					keep = append(keep, s)
				}
			}
			rec.States = keep
			if len(keep) == 0 {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}
