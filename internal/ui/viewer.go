// Package ui renders a live view of a forkvm run in the terminal.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"forkvm/internal/sched"
	"forkvm/internal/vm"
)

type viewerModel struct {
	title   string
	reports <-chan sched.RoundReport
	spinner spinner.Model
	prog    progress.Model
	round   int
	items   []stateItem
	index   map[int]int
	heap    []vm.HeapCell
	output  []string
	freed   int
	width   int
	done    bool
}

type stateItem struct {
	id      int
	status  string
	top     string
	symbols string
}

type reportMsg sched.RoundReport
type doneMsg struct{}

// NewViewerModel returns a Bubble Tea model that shows every state the
// controller reports. It only reads snapshots and quits once reports is
// closed.
func NewViewerModel(title string, reports <-chan sched.RoundReport) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &viewerModel{
		title:   title,
		reports: reports,
		spinner: sp,
		prog:    prog,
		index:   make(map[int]int),
		width:   80,
	}
}

func (m *viewerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		cmd := m.apply(sched.RoundReport(msg))
		return m, tea.Batch(cmd, m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *viewerModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (round %d)", m.title, m.round)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	textWidth := m.width - 24
	if textWidth < 20 {
		textWidth = 20
	}
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%8s", item.status))
		fmt.Fprintf(&b, "  #%-4d %s  %s\n", item.id, status, truncate(item.top, textWidth))
		if item.symbols != "" {
			fmt.Fprintf(&b, "                 %s\n", truncate(item.symbols, textWidth))
		}
	}

	b.WriteString("\n")
	cells := make([]string, len(m.heap))
	for i, c := range m.heap {
		cells[i] = fmt.Sprintf("%d:%s", c.Addr, c.Value)
	}
	fmt.Fprintf(&b, "  heap  %s  (freed %d)\n", truncate(strings.Join(cells, " "), textWidth), m.freed)
	fmt.Fprintf(&b, "  out   %s\n\n", truncate(strings.Join(m.output, " "), textWidth))

	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *viewerModel) listen() tea.Cmd {
	return func() tea.Msg {
		rep, ok := <-m.reports
		if !ok {
			return doneMsg{}
		}
		return reportMsg(rep)
	}
}

func (m *viewerModel) apply(rep sched.RoundReport) tea.Cmd {
	m.round = rep.Round
	m.freed += rep.GC.Freed
	for i := range rep.States {
		snap := &rep.States[i]
		idx, ok := m.index[snap.ID]
		if !ok {
			idx = len(m.items)
			m.index[snap.ID] = idx
			m.items = append(m.items, stateItem{id: snap.ID})
		}
		item := &m.items[idx]
		item.status = statusOf(snap)
		item.top = ""
		if len(snap.Stack) > 0 {
			item.top = snap.Stack[0]
		} else if snap.Err != "" {
			item.top = snap.Err
		}
		item.symbols = symbolsLine(snap.Symbols)
		m.heap = snap.Heap
		m.output = snap.Output
	}
	sort.Slice(m.items, func(i, j int) bool { return m.items[i].id < m.items[j].id })
	for i, item := range m.items {
		m.index[item.id] = i
	}

	if len(m.items) == 0 {
		return nil
	}
	finished := 0
	for _, item := range m.items {
		if item.status != "running" {
			finished++
		}
	}
	return m.prog.SetPercent(float64(finished) / float64(len(m.items)))
}

func statusOf(s *vm.Snapshot) string {
	switch {
	case s.Err != "":
		return "failed"
	case s.Done:
		return "done"
	default:
		return "running"
	}
}

func symbolsLine(bs []vm.Binding) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.Name + "=" + b.Value
	}
	return strings.Join(parts, " ")
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "failed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "running":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
