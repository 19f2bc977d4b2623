package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"selekt/internal/domain"
	"selekt/internal/sampler"
)

// EnginePort is the TUI-facing subset of the engine.
type EnginePort interface {
	Query(query string, k int) ([]domain.ScoredCandidate, error)
	SampleVector(scores []float64) (int, error)
	Distribution(scores []float64) ([]float64, error)
	History() []int
	ResetSession()
	Policy() sampler.Policy
}

type mode int

const (
	modeSearch mode = iota
	modeSample
)

// Model is the Bubble Tea model for the console.
type Model struct {
	engine   EnginePort
	input    textinput.Model
	viewport viewport.Model
	mode     mode
	results  []domain.ScoredCandidate
	summary  string
	status   string
	cursor   int
	ready    bool
}

// New creates a new console model.
func New(engine EnginePort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter (tab: sampling mode)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{engine: engine, input: ti, viewport: vp, summary: summary, status: "Loaded. Type to search."}
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
		reserved := 3 + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeSearch {
				m.mode = modeSample
				m.input.Placeholder = "Scores, e.g. 1.0, 2.0, 3.0 (tab: search mode, ctrl+r: reset session)"
				m.status = fmt.Sprintf("Sampling mode. Policy: %s", describePolicy(m.engine.Policy()))
			} else {
				m.mode = modeSearch
				m.input.Placeholder = "Type query and press Enter (tab: sampling mode)"
				m.status = "Search mode."
			}
			m.viewport.SetContent(m.renderContent())
			return m, nil
		case "ctrl+r":
			m.engine.ResetSession()
			m.status = "Session history cleared."
			m.viewport.SetContent(m.renderContent())
			return m, nil
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			if m.mode == modeSearch {
				m.runQuery(value)
			} else {
				m.runSample(value)
			}
			m.viewport.SetContent(m.renderContent())
			return m, nil
		case "down":
			if m.mode == modeSearch && len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "up":
			if m.mode == modeSearch && len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Selekt - search"
	if m.mode == modeSample {
		title = "Selekt - sampling playground"
	}
	header := lipgloss.NewStyle().Bold(true).Render(title)
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) runQuery(query string) {
	results, err := m.engine.Query(query, 0)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		return
	}
	m.results = results
	m.cursor = 0
	m.status = fmt.Sprintf("%d results for %q", len(results), query)
}

func (m *Model) runSample(value string) {
	scores, err := parseScores(value)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	token, err := m.engine.SampleVector(scores)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("Selected index %d. History: %v", token, m.engine.History())
}

func (m Model) renderContent() string {
	if m.mode == modeSample {
		return m.renderDistribution()
	}
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.3f  source=%s", m.cursor+1, len(m.results), r.Score, r.Candidate.Group)
	return title + "\n\n" + r.Candidate.Text
}

func (m Model) renderDistribution() string {
	scores, err := parseScores(strings.TrimSpace(m.input.Value()))
	if err != nil || len(scores) == 0 {
		return "Enter a comma-separated score vector to preview its distribution."
	}
	probs, err := m.engine.Distribution(scores)
	if err != nil {
		return "Distribution unavailable: " + err.Error()
	}
	type entry struct {
		idx  int
		prob float64
	}
	entries := make([]entry, 0, len(probs))
	for i, p := range probs {
		if p > 0 {
			entries = append(entries, entry{i, p})
		}
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].prob > entries[b].prob })
	if len(entries) > 10 {
		entries = entries[:10]
	}
	var b strings.Builder
	b.WriteString("Post-filter distribution (top entries):\n\n")
	for _, e := range entries {
		bar := strings.Repeat("█", int(e.prob*40))
		fmt.Fprintf(&b, "%4d  %6.3f  %s\n", e.idx, e.prob, highlightStyle.Render(bar))
	}
	return b.String()
}

func parseScores(value string) ([]float64, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
	scores := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", f)
		}
		scores = append(scores, v)
	}
	return scores, nil
}

func describePolicy(p sampler.Policy) string {
	return fmt.Sprintf("temperature=%.2f top_k=%d top_p=%.2f repetition_penalty=%.2f",
		p.Temperature, p.TopK, p.TopP, p.RepetitionPenalty)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
