package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"svcsearch/internal/domain"
)

// Searcher is the TUI-facing subset of the catalog service.
type Searcher interface {
	Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error)
}

// Model is the Bubble Tea model for the interactive search UI.
type Model struct {
	service Searcher
	input   textinput.Model
	view    viewport.Model
	results []domain.QueryResult
	status  string
	topK    int
	ready   bool
}

// New creates a new TUI model instance.
func New(service Searcher, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe what you need and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if topK <= 0 {
		topK = 3
	}
	return Model{service: service, input: ti, view: vp, topK: topK, status: "Catalog loaded. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + query box + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.view.Width = max(20, msg.Width)
		m.view.Height = max(3, vh-rh)
		m.view.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			q := strings.TrimSpace(m.input.Value())
			if q == "" || q == "exit" {
				return m, tea.Quit
			}
			res, err := m.service.Query(context.Background(), q, m.topK)
			if err != nil {
				m.status = "Error: " + err.Error()
				m.results = nil
			} else {
				m.status = fmt.Sprintf("Results for %q", q)
				m.results = res
			}
			m.view.SetContent(m.renderResults())
			m.input.SetValue("")
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current results.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Service Catalog Search")
	results := resultBoxStyle.Render(m.view.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	var b strings.Builder
	for i, r := range m.results {
		name := nameStyle.Render(r.Name)
		score := scoreStyle.Render(fmt.Sprintf("score=%.4f", r.Score))
		fmt.Fprintf(&b, "%d. %s  %s\n%s\n\n", i+1, name, score, r.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
