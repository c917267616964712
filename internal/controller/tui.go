package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// rebuildDebounce coalesces bursts of filesystem events (editors often write
// a file several times in quick succession) into a single rebuild.
const rebuildDebounce = 400 * time.Millisecond

// maxLogLines caps the log panel backlog.
const maxLogLines = 500

// BuildFunc runs one build and returns its report.
type BuildFunc func(ctx context.Context) m.BuildReport

// WatchArgs wires the watch TUI to the build pipeline: the build callback,
// the diagnostic event channel feeding the log panel and the filesystem
// change channel triggering rebuilds.
type WatchArgs struct {
	Root        m.Path
	Build       BuildFunc
	Diagnostics <-chan m.Diagnostic
	Changes     <-chan m.Path
}

// RunWatch runs the watch-mode TUI until the user quits.
func RunWatch(ctx context.Context, args WatchArgs) error {
	program := tea.NewProgram(newWatchModel(ctx, args), tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := program.Run()
	if err != nil {
		return fmt.Errorf("watch ui: %w", err)
	}

	return nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	logBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	logTitleText = "log panel"
)

type diagMsg m.Diagnostic

type changeMsg m.Path

type rebuildTickMsg struct {
	seq int
}

type buildDoneMsg m.BuildReport

type watchModel struct {
	ctx  context.Context
	args WatchArgs

	viewport viewport.Model
	ready    bool

	lines    []string
	status   string
	building bool
	seq      int
	report   *m.BuildReport
}

func newWatchModel(ctx context.Context, args WatchArgs) watchModel {
	return watchModel{
		ctx:    ctx,
		args:   args,
		status: "starting",
	}
}

func (w watchModel) Init() tea.Cmd {
	return tea.Batch(
		w.waitForDiagnostic(),
		w.waitForChange(),
		w.startBuild(),
	)
}

func (w watchModel) waitForDiagnostic() tea.Cmd {
	return func() tea.Msg {
		diag, ok := <-w.args.Diagnostics
		if !ok {
			return nil
		}

		return diagMsg(diag)
	}
}

func (w watchModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.args.Changes
		if !ok {
			return nil
		}

		return changeMsg(path)
	}
}

func (w watchModel) startBuild() tea.Cmd {
	build := w.args.Build
	ctx := w.ctx

	return func() tea.Msg {
		return buildDoneMsg(build(ctx))
	}
}

//nolint:cyclop // The message switch is the bubbletea update loop.
func (w watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.resize(msg.Width, msg.Height)
		return w, nil

	case tea.KeyMsg:
		return w.handleKey(msg)

	case diagMsg:
		w.appendLine(formatDiag(m.Diagnostic(msg)))
		return w, w.waitForDiagnostic()

	case changeMsg:
		w.seq++
		w.status = fmt.Sprintf("change detected: %s", msg)

		seq := w.seq

		return w, tea.Batch(
			w.waitForChange(),
			tea.Tick(rebuildDebounce, func(time.Time) tea.Msg {
				return rebuildTickMsg{seq: seq}
			}),
		)

	case rebuildTickMsg:
		// Only the most recent change in a burst triggers a rebuild.
		if msg.seq != w.seq || w.building {
			return w, nil
		}

		w.building = true
		w.status = "building..."

		return w, w.startBuild()

	case buildDoneMsg:
		w.building = false
		report := m.BuildReport(msg)
		w.report = &report

		if report.Failed() {
			w.status = failStyle.Render(fmt.Sprintf("build failed at %s stage (%d error(s))",
				report.Stage, len(report.Errors())))
		} else {
			w.status = okStyle.Render(fmt.Sprintf("built %d tab(s) -> %s",
				report.TabCount, report.ArtifactPath))
		}

		return w, nil
	}

	return w, nil
}

func (w *watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return *w, tea.Quit

	case "enter", "b":
		if w.building {
			return *w, nil
		}

		w.building = true
		w.status = "building..."

		return *w, w.startBuild()
	}

	var cmd tea.Cmd
	w.viewport, cmd = w.viewport.Update(msg)

	return *w, cmd
}

func (w *watchModel) resize(width, height int) {
	// Title, status and help lines plus the panel border.
	reserved := 6

	panelHeight := height - reserved
	if panelHeight < 3 {
		panelHeight = 3
	}

	if !w.ready {
		w.viewport = viewport.New(width-4, panelHeight)
		w.ready = true
	} else {
		w.viewport.Width = width - 4
		w.viewport.Height = panelHeight
	}

	w.refreshPanel()
}

func (w *watchModel) appendLine(line string) {
	w.lines = append(w.lines, line)
	if len(w.lines) > maxLogLines {
		w.lines = w.lines[len(w.lines)-maxLogLines:]
	}

	w.refreshPanel()
}

func (w *watchModel) refreshPanel() {
	if !w.ready {
		return
	}

	w.viewport.SetContent(strings.Join(w.lines, "\n"))
	w.viewport.GotoBottom()
}

func (w watchModel) View() string {
	if !w.ready {
		return "starting watch..."
	}

	title := titleStyle.Render(fmt.Sprintf("picobuild watch: %s", w.args.Root))
	help := faintStyle.Render("enter/b: rebuild • ↑/↓: scroll • q: quit")
	panel := logBoxStyle.Render(faintStyle.Render(logTitleText) + "\n" + w.viewport.View())

	return fmt.Sprintf("%s\n%s\n%s\n%s\n", title, w.status, panel, help)
}

func formatDiag(diag m.Diagnostic) string {
	style := warnStyle
	if diag.Severity == m.SeverityError {
		style = failStyle
	}

	label := style.Render(fmt.Sprintf("%-7s", string(diag.Severity)))

	location := ""
	if diag.Tab != "" {
		location = fmt.Sprintf(" [%s]", diag.Tab)
	}

	return fmt.Sprintf("%s %s%s %s", label, diag.Code, location, diag.Message)
}
