package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/sizegate/internal/logbook"
	"github.com/kingrea/sizegate/internal/sizecheck"
)

type stubMeasurer struct {
	report sizecheck.Report
	err    error
	roots  []string
}

func (s *stubMeasurer) Measure(root string) (sizecheck.Report, error) {
	s.roots = append(s.roots, root)
	return s.report, s.err
}

func finishMeasure(t *testing.T, app *App) *App {
	t.Helper()
	model, _ := app.Update(app.measure()())
	next, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return next
}

func TestViewShowsBreakdownWithinBudget(t *testing.T) {
	m := &stubMeasurer{report: sizecheck.Report{
		Root:      "/project",
		Threshold: 5_000_000,
		Dirs: []sizecheck.DirSize{
			{Path: "dist/bin", Files: 2, Bytes: 3000},
			{Path: "dist/browser", Files: 1, Bytes: 3000},
		},
		Watched: []sizecheck.FileSize{{Path: "/project/dist/bin/aws-crt-nodejs.node", Bytes: 500}},
		Total:   6000,
	}}
	app := NewApp("NPM Package Size Check", "/project", m)
	if !strings.Contains(app.View(), "Measuring /project") {
		t.Fatalf("expected measuring screen, got:\n%s", app.View())
	}
	if _, err := app.Result(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("result before measurement should fail with ErrNotFinished, got %v", err)
	}
	app = finishMeasure(t, app)
	view := app.View()
	for _, want := range []string{"dist/bin", "aws-crt-nodejs.node", "within budget"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if _, err := app.Result(); err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
	if len(m.roots) != 1 || m.roots[0] != "/project" {
		t.Fatalf("measurer called with %v", m.roots)
	}
}

func TestResultReportsExceededBudget(t *testing.T) {
	m := &stubMeasurer{report: sizecheck.Report{Threshold: 10, Total: 11}}
	app := finishMeasure(t, NewApp("check", "/p", m))
	if !strings.Contains(app.View(), "over budget") {
		t.Fatalf("expected over budget status:\n%s", app.View())
	}
	if _, err := app.Result(); !errors.Is(err, sizecheck.ErrSizeLimitExceeded) {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestMeasureErrorIsShown(t *testing.T) {
	m := &stubMeasurer{err: errors.New("permission denied")}
	app := finishMeasure(t, NewApp("check", "/p", m))
	if !strings.Contains(app.View(), "permission denied") {
		t.Fatalf("expected error in view:\n%s", app.View())
	}
	if _, err := app.Result(); err == nil || err.Error() != "permission denied" {
		t.Fatalf("unexpected result error: %v", err)
	}
}

func TestQuitKeys(t *testing.T) {
	app := NewApp("check", "/p", &stubMeasurer{})
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := app.Update(key)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg for %q", key.String())
		}
	}
}

func TestLogPanelShowsRecentEntries(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), "sizegate.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	lb.Info("crt-size-check run=abc total=6000 threshold=5000000 ok")
	app := finishMeasure(t, NewApp("check", "/p", &stubMeasurer{report: sizecheck.Report{Threshold: 1}}, WithLogbook(lb)))
	view := app.View()
	if !strings.Contains(view, "LOG · sizegate.log") || !strings.Contains(view, "run=abc") {
		t.Fatalf("log panel missing:\n%s", view)
	}
}
