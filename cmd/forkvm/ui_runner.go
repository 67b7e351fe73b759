package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"forkvm/internal/sched"
	"forkvm/internal/ui"
)

type runOutcome struct {
	result sched.Result
	err    error
}

// runWithUI runs ctrl in the background while the viewer consumes reports.
// The controller's observer must already send into reports.
func runWithUI(ctx context.Context, title string, ctrl *sched.Controller, reports chan sched.RoundReport) (sched.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		res, err := ctrl.Run(ctx)
		outcomeCh <- runOutcome{result: res, err: err}
		close(reports)
	}()

	model := ui.NewViewerModel(title, reports)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// зритель закрыт (конец, ctrl+c или ошибка): останавливаем прогон и
	// вычитываем оставшиеся отчёты, чтобы observer не блокировался
	cancel()
	go func() {
		for range reports {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
