package execlog

import (
	"fmt"
	"io"
	"strings"

	"forkvm/internal/vm"
)

const separator = "--------------------------------------"

// encodeText writes one block per state:
//
//	Program ID: 1 (round 4)
//	Execution Stack:
//	...
//	--------------------------------------
func encodeText(w io.Writer, rec Record) error {
	var sb strings.Builder
	for i := range rec.States {
		writeBlock(&sb, rec.Round, &rec.States[i])
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderText returns the text rendering of one snapshot.
func RenderText(round int, snap *vm.Snapshot) string {
	var sb strings.Builder
	writeBlock(&sb, round, snap)
	return sb.String()
}

func writeBlock(sb *strings.Builder, round int, s *vm.Snapshot) {
	fmt.Fprintf(sb, "Program ID: %d (round %d)\n", s.ID, round)
	if s.Err != "" {
		sb.WriteString("Error: " + s.Err + "\n")
	}
	sb.WriteString("Execution Stack:\n")
	for _, st := range s.Stack {
		sb.WriteString(st + "\n")
	}
	sb.WriteString("SymTable:\n")
	for _, b := range s.Symbols {
		fmt.Fprintf(sb, "%s -> %s\n", b.Name, b.Value)
	}
	sb.WriteString("Out:\n")
	for _, o := range s.Output {
		sb.WriteString(o + "\n")
	}
	sb.WriteString("FileTable:\n")
	for _, f := range s.Files {
		sb.WriteString(f + "\n")
	}
	sb.WriteString("Heap:\n")
	for _, c := range s.Heap {
		fmt.Fprintf(sb, "%d -> %s\n", c.Addr, c.Value)
	}
	sb.WriteString(separator + "\n")
}
