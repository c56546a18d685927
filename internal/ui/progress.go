package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tdx/internal/tasks"
)

const maxBarWidth = 60

type progressUpdateMsg tasks.ProgressUpdate

type progressDoneMsg struct{}

// ProgressModel renders a bar for the current phase, the files written so far and the latest message.
type ProgressModel struct {
	title   string
	updates <-chan tasks.ProgressUpdate
	cancel  func()
	quit    key.Binding
	bar     progress.Model
	percent float64
	phase   tasks.Phase
	message string
	written []string
	stopped bool
}

// NewProgressModel builds a model reading from updates. cancel runs when the user interrupts.
func NewProgressModel(title string, updates <-chan tasks.ProgressUpdate, cancel func()) ProgressModel {
	return ProgressModel{
		title:   title,
		updates: updates,
		cancel:  cancel,
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c", "stop"),
		),
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.waitForProgress()
}

func (m ProgressModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return progressDoneMsg{}
		}
		return progressUpdateMsg(update)
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			m.stopped = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)

	case progressUpdateMsg:
		update := tasks.ProgressUpdate(msg)
		if update.Phase == tasks.WriteExport {
			m.written = append(m.written, update.Message)
			return m, m.waitForProgress()
		}
		m.phase = update.Phase
		m.message = update.Message
		if update.Total > 0 {
			m.percent = float64(update.Step) / float64(update.Total)
		}
		return m, m.waitForProgress()

	case progressDoneMsg:
		m.percent = 1
		return m, tea.Quit
	}

	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(m.title))
	b.WriteString("\n")

	for _, line := range m.written {
		b.WriteString(styles.success.Render(line))
		b.WriteString("\n")
	}

	if m.stopped {
		b.WriteString(styles.warning.Render("Stopping after the current request..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.bar.ViewAs(m.percent))
	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(styles.muted.Render(fmt.Sprintf("%s  %s", m.phase, m.message)))
		b.WriteString("\n")
	}
	return b.String()
}

// ProgressOpts configures [RunProgress].
type ProgressOpts struct {
	Title    string
	Cancel   func()
	Output   io.Writer // default: stdout
	Headless bool      // no keyboard input
}

// RunProgress shows a progress bar until updates is closed or the user interrupts.
//
// updates is drained to the end even when the display stops early, so senders never block on it.
func RunProgress(updates <-chan tasks.ProgressUpdate, opts ProgressOpts) error {
	var teaOpts []tea.ProgramOption
	if opts.Output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(opts.Output))
	}
	if opts.Headless {
		teaOpts = append(teaOpts, tea.WithInput(nil))
	}

	program := tea.NewProgram(NewProgressModel(opts.Title, updates, opts.Cancel), teaOpts...)
	_, err := program.Run()

	for range updates {
	}

	if err != nil {
		return fmt.Errorf("error running progress display: %w", err)
	}
	return nil
}
