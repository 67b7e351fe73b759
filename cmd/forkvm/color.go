package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	codeColor  = color.New(color.FgCyan)
	dimColor   = color.New(color.Faint)
	okColor    = color.New(color.FgGreen)
)

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != ""
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// reportedError means the details were already printed; only the summary
// is left to show.
type reportedError struct{ summary string }

func (e *reportedError) Error() string { return e.summary }

func printError(w io.Writer, err error) {
	var re *reportedError
	if errors.As(err, &re) {
		if re.summary != "" {
			fmt.Fprintln(w, dimColor.Sprint(re.summary))
		}
		return
	}
	fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("error:"), err)
}
