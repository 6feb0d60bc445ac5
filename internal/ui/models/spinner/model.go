package spinner

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
)

// Model drives a single in-progress operation in the terminal. It
// spins until it receives a ResultMsg or ErrorMsg, then quits.
type Model struct {
	spinner spinner.Model
	label   string
	err     error
	done    bool
	result  interface{}
}

// ResultMsg completes the spinner with an operation result.
type ResultMsg struct {
	Result interface{}
}

// ErrorMsg completes the spinner with an operation failure.
type ErrorMsg struct {
	Err error
}

// New returns a spinner labelled with the given progress message.
func New(label string) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(ui.InfoColor)
	return Model{spinner: s, label: label}
}

func (m Model) HasError() bool {
	return m.err != nil
}

func (m Model) GetError() error {
	return m.err
}

func (m Model) HasResult() bool {
	return m.result != nil
}

func (m Model) GetResult() interface{} {
	return m.result
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	case error:
		return m.fail(msg)
	case ErrorMsg:
		return m.fail(msg.Err)
	case ResultMsg:
		m.result = msg.Result
		m.done = true
		return m, tea.Quit
	case string:
		// Progress updates replace the label.
		m.label = msg
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.done = true
	message := ui.ErrorStyle.Bold(true).Render(ui.ErrorSymbol + " " + strings.TrimSpace(err.Error()))
	return m, tea.Sequence(tea.Printf("%s", message), tea.Quit)
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + ui.DimStyle.Render(m.label)
}
