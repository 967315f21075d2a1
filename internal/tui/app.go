// internal/tui/app.go
//
// Interactive size report viewer. It follows The Elm Architecture used by
// bubbletea: the App model measures the project on a command, then renders
// the per-directory breakdown, a budget bar, and the latest logbook lines.

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/sizegate/internal/logbook"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

const (
	defaultWidth = 72
	logTailLines = 5
)

// appState represents which "screen" we're on
type appState int

const (
	stateMeasuring appState = iota
	stateDone
)

// ErrNotFinished is returned by Result when the viewer closed before the
// measurement completed.
var ErrNotFinished = errors.New("tui: measurement did not finish")

// Measurer produces a size report for a project root.
type Measurer interface {
	Measure(root string) (sizecheck.Report, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook shows the most recent logbook entries under the report.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

type measureFinishedMsg struct {
	report sizecheck.Report
	err    error
}

// App is the viewer model.
type App struct {
	state    appState
	title    string
	root     string
	measurer Measurer
	logbook  *logbook.Logbook

	spinner spinner.Model
	bar     progress.Model
	width   int

	report sizecheck.Report
	err    error
}

// NewApp builds a viewer that measures root with m.
func NewApp(title, root string, m Measurer, opts ...AppOption) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	a := &App{
		state:    stateMeasuring,
		title:    title,
		root:     root,
		measurer: m,
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:    defaultWidth,
	}
	a.bar.Width = defaultWidth - 4
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Init starts the spinner and the measurement.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.measure())
}

func (a *App) measure() tea.Cmd {
	return func() tea.Msg {
		report, err := a.measurer.Measure(a.root)
		return measureFinishedMsg{report: report, err: err}
	}
}

// Update handles key presses, resizes, and measurement results.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = max(40, msg.Width)
		a.bar.Width = a.width - 4
	case measureFinishedMsg:
		a.state = stateDone
		a.report = msg.report
		a.err = msg.err
	case spinner.TickMsg:
		if a.state != stateMeasuring {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

// View renders the current screen.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ SIZEGATE · " + a.title)
	var body string
	switch {
	case a.state == stateMeasuring:
		body = fmt.Sprintf("%s Measuring %s ...", a.spinner.View(), a.root)
	case a.err != nil:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render("⚠ " + a.err.Error())
	default:
		body = a.renderReport()
	}
	sections := []string{header, body}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("q → quit")
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

// Result returns the measured report and, once measured, the audit outcome.
func (a *App) Result() (sizecheck.Report, error) {
	if a.state != stateDone {
		return a.report, ErrNotFinished
	}
	if a.err != nil {
		return a.report, a.err
	}
	return a.report, a.report.Err()
}

func (a *App) renderReport() string {
	r := a.report
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	var rows []string
	for _, dir := range r.Dirs {
		rows = append(rows, fmt.Sprintf("%-16s %6d files %12d bytes %10s",
			dir.Path, dir.Files, dir.Bytes, sizecheck.HumanSize(dir.Bytes)))
	}
	for _, file := range r.Watched {
		rows = append(rows, label.Render(fmt.Sprintf("  ↳ %s %d bytes", filepath.Base(file.Path), file.Bytes)))
	}
	rows = append(rows, fmt.Sprintf("%-16s %19d bytes %10s", "total", r.Total, sizecheck.HumanSize(r.Total)))

	percent := 0.0
	if r.Threshold > 0 {
		percent = float64(r.Total) / float64(r.Threshold)
	}
	status := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD787")).
		Render(fmt.Sprintf("within budget · %s headroom", sizecheck.HumanSize(r.Headroom())))
	if r.Exceeded() {
		status = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).
			Render(fmt.Sprintf("over budget by %s", sizecheck.HumanSize(-r.Headroom())))
	}
	budget := label.Render(fmt.Sprintf("%.1f%% of %s", percent*100, sizecheck.HumanSize(r.Threshold)))
	content := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(rows, "\n"),
		"",
		a.bar.ViewAs(min(percent, 1)),
		budget,
		status,
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, a.width)).
		Render(content)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", filepath.Base(a.logbook.Path())))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}
