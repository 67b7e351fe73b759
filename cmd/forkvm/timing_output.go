package main

import (
	"fmt"
	"io"

	"forkvm/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	fmt.Fprint(out, dimColor.Sprint(timer.Summary()))
}
