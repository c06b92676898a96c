// Package tui is the interactive terminal front end: one question line, a
// spinner while the model generates, and the answer rendered as markdown.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/hyperjump/sdkchat/internal/answer"
	"github.com/hyperjump/sdkchat/internal/models"
	"github.com/hyperjump/sdkchat/pkg/utils"
)

// PendingMessage is shown next to the spinner while an answer is generated.
const PendingMessage = "Generating answer..."

// Asker answers questions. Implemented by *answer.Service.
type Asker interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
}

// Renderer turns markdown into terminal output for the given width.
type Renderer func(markdown string, width int) (string, error)

type answerMsg struct {
	answer *models.Answer
	err    error
}

// Model is the Bubble Tea model for the chat UI.
type Model struct {
	ctx      context.Context
	asker    Asker
	render   Renderer
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	summary  string
	status   string
	content  string
	pending  bool
	ready    bool
}

// Option configures a Model.
type Option func(*Model)

// WithSummary sets the line shown under the header, e.g. the corpus size.
func WithSummary(s string) Option {
	return func(m *Model) { m.summary = s }
}

// WithRenderer replaces the glamour markdown renderer.
func WithRenderer(r Renderer) Option {
	return func(m *Model) {
		if r != nil {
			m.render = r
		}
	}
}

// New creates a chat model. ctx bounds every generation started from the UI.
func New(ctx context.Context, asker Asker, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the SDK and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	m := Model{
		ctx:      ctx,
		asker:    asker,
		render:   renderMarkdown,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Ready. Type a question.",
		content:  "No answer yet.",
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, spinner and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := answerBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + 1 + ih // header + summary, status, input line
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.input.Width = max(10, msg.Width-8)
		m.viewport.SetContent(m.content)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if m.pending {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.pending = false
		m.setAnswer(msg.answer, msg.err)
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	question := m.input.Value()
	if strings.TrimSpace(question) == "" {
		m.status = answer.EmptyQuestionMessage
		return m, nil
	}
	m.pending = true
	m.status = PendingMessage
	return m, tea.Batch(m.spinner.Tick, m.ask(question))
}

func (m Model) ask(question string) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		a, err := asker.Ask(ctx, question)
		return answerMsg{answer: a, err: err}
	}
}

func (m *Model) setAnswer(a *models.Answer, err error) {
	if a == nil {
		m.status = errorStyle.Render("no answer")
		return
	}
	var b strings.Builder
	b.WriteString(a.Answer)
	if len(a.Sources) > 0 {
		b.WriteString("\n\n---\n\n**Sources**\n\n")
		for _, s := range a.Sources {
			fmt.Fprintf(&b, "%d. `%s` (%.4f)\n", s.Rank, s.Document.Path, s.Distance)
		}
	}
	rendered, rerr := m.render(b.String(), m.viewport.Width)
	if rerr != nil {
		rendered = b.String()
	}
	m.content = rendered
	m.viewport.SetContent(rendered)
	m.viewport.GotoTop()

	question := utils.Truncate(utils.OneLine(a.Question), 60)
	if err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("Failed: %q", question))
		return
	}
	m.status = fmt.Sprintf("Answered %q in %dms", question, a.QueryTime)
}

// View renders the header, answer pane, input line and status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Dynamics 365 SDK Chat")
	summary := summaryStyle.Render(m.summary)
	body := answerBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.pending {
		status = m.spinner.View() + " " + status
	}
	help := sourceStyle.Render("enter: ask • pgup/pgdn: scroll • esc: quit")
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status + "  " + help
}

func renderMarkdown(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown, err
	}
	return r.Render(markdown)
}
