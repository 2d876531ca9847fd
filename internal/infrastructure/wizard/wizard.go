package wizard

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// Step sizes in percentage points.
const (
	offsetStep = 5
	limitStep  = 1
)

type (
	wizardState int

	rulesWizardModel struct {
		state     wizardState
		metric    domain.MetricKind
		offset    float64
		rows      []wizardRow
		cursor    int
		confirmed bool
		aborted   bool
	}

	wizardRow struct {
		suggestion domain.Suggestion
		base       float64
		limit      float64
		override   bool
		skip       bool
	}
)

const (
	stateIntro wizardState = iota
	stateEdit
	stateConfirm
)

// Run lets the user review suggested package rules. It returns the accepted
// rules, or false when the wizard was cancelled.
func Run(suggestions []domain.Suggestion, stdout io.Writer, stdin io.Reader) ([]domain.Suggestion, bool, error) {
	model := newRulesWizardModel(suggestions)
	program := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout))
	res, err := program.Run()
	if err != nil {
		return nil, false, err
	}
	finalModel, ok := res.(*rulesWizardModel)
	if !ok {
		return nil, false, fmt.Errorf("unexpected wizard state")
	}
	if finalModel.aborted || !finalModel.confirmed {
		return nil, false, nil
	}
	return finalModel.suggestions(), true, nil
}

func newRulesWizardModel(suggestions []domain.Suggestion) *rulesWizardModel {
	m := &rulesWizardModel{
		state:  stateIntro,
		metric: domain.MetricLine,
		rows:   make([]wizardRow, len(suggestions)),
	}
	if len(suggestions) > 0 {
		m.metric = suggestions[0].Metric
	}
	for i, s := range suggestions {
		percent := s.Limit.Mul(decimal.NewFromInt(100)).InexactFloat64()
		m.rows[i] = wizardRow{suggestion: s, base: percent, limit: percent}
	}
	return m
}

func (m *rulesWizardModel) Init() tea.Cmd {
	return nil
}

func (m *rulesWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q":
		m.aborted = true
		return m, tea.Quit
	case "enter":
		switch m.state {
		case stateIntro:
			m.state = stateEdit
		case stateEdit:
			m.state = stateConfirm
		case stateConfirm:
			m.confirmed = true
			return m, tea.Quit
		}
	case "esc":
		if m.state == stateConfirm {
			m.state = stateEdit
		}
	case "up":
		if m.state == stateEdit {
			m.moveCursor(-1)
		}
	case "down":
		if m.state == stateEdit {
			m.moveCursor(1)
		}
	case "left", "-":
		if m.state == stateEdit {
			m.adjustSelection(-1)
		}
	case "right", "+":
		if m.state == stateEdit {
			m.adjustSelection(1)
		}
	case " ", "x":
		if m.state == stateEdit && m.cursor > 0 {
			row := &m.rows[m.cursor-1]
			row.skip = !row.skip
		}
	}
	return m, nil
}

func (m *rulesWizardModel) View() string {
	switch m.state {
	case stateIntro:
		return m.viewIntro()
	case stateEdit:
		return m.viewEdit()
	case stateConfirm:
		return m.viewConfirm()
	default:
		return ""
	}
}

// moveCursor moves between the offset row (0) and the package rows.
func (m *rulesWizardModel) moveCursor(delta int) {
	m.cursor = max(0, min(m.cursor+delta, len(m.rows)))
}

func (m *rulesWizardModel) adjustSelection(direction float64) {
	if m.cursor == 0 {
		m.adjustOffset(direction * offsetStep)
		return
	}
	m.adjustRow(m.cursor-1, direction*limitStep)
}

// adjustOffset shifts every package that has not been edited individually.
func (m *rulesWizardModel) adjustOffset(delta float64) {
	m.offset = clamp(m.offset+delta, -100, 100)
	for i := range m.rows {
		if !m.rows[i].override {
			m.rows[i].limit = clamp(m.rows[i].base+m.offset, 0, 100)
		}
	}
}

func (m *rulesWizardModel) adjustRow(index int, delta float64) {
	if index < 0 || index >= len(m.rows) {
		return
	}
	m.rows[index].limit = clamp(m.rows[index].limit+delta, 0, 100)
	m.rows[index].override = true
}

func (m *rulesWizardModel) viewIntro() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\njacocogate init\n\n")
	fmt.Fprintf(&b, "Found %d packages with %s coverage. The wizard proposes one rule per package.\n\n", len(m.rows), m.metric)
	fmt.Fprintf(&b, "Press Enter to continue, or Ctrl+C to cancel.\n")
	return b.String()
}

func (m *rulesWizardModel) viewEdit() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nReview %s limits\n\n", m.metric)
	fmt.Fprintf(&b, "Use ↑/↓ to move, ←/→ or +/- to change values, x to skip a package.\n")
	indicator := "  "
	if m.cursor == 0 {
		indicator = "> "
	}
	fmt.Fprintf(&b, "%sOffset for unchanged packages: %+.0f points\n\n", indicator, m.offset)
	for i, row := range m.rows {
		prefix := "  "
		if m.cursor == i+1 {
			prefix = "> "
		}
		note := ""
		switch {
		case row.skip:
			note = " (skipped)"
		case row.override:
			note = " (custom)"
		}
		fmt.Fprintf(&b, "%s%s: %.1f%% (current %.1f%%)%s\n", prefix, row.suggestion.Package, row.limit, row.suggestion.Current, note)
	}
	fmt.Fprintf(&b, "\nEnter to continue, q to cancel.\n")
	return b.String()
}

func (m *rulesWizardModel) viewConfirm() string {
	var b strings.Builder
	accepted := m.suggestions()
	fmt.Fprintf(&b, "\nReady to write %d %s rules\n\n", len(accepted), m.metric)
	for _, s := range accepted {
		fmt.Fprintf(&b, "  %s >= %s\n", s.Package, s.Limit.String())
	}
	if skipped := len(m.rows) - len(accepted); skipped > 0 {
		fmt.Fprintf(&b, "\n%d packages skipped.\n", skipped)
	}
	fmt.Fprintf(&b, "\nPress Enter to save, Esc to go back, q to cancel.\n")
	return b.String()
}

// suggestions returns the non-skipped rows with their edited limits as ratios.
func (m *rulesWizardModel) suggestions() []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(m.rows))
	for _, row := range m.rows {
		if row.skip {
			continue
		}
		s := row.suggestion
		if row.limit != row.base {
			s.Limit = decimal.NewFromFloat(row.limit).Round(1).Div(decimal.NewFromInt(100))
			s.Reason = "adjusted in init wizard"
		}
		out = append(out, s)
	}
	return out
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
