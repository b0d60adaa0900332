package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	confirmLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	confirmHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ConfirmResult struct {
	Confirmed bool
	Aborted   bool
}

// confirmModel is a standalone yes/no prompt for destructive CLI
// operations. The default answer is No.
type confirmModel struct {
	message  string
	selected bool // true = Yes, false = No
	result   ConfirmResult
}

func newConfirmModel(message string) confirmModel {
	return confirmModel{message: message}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Aborted = true
			return m, tea.Quit

		case "left", "right", "tab", "h", "l":
			m.selected = !m.selected
			return m, nil

		case "y", "Y":
			m.result.Confirmed = true
			return m, tea.Quit

		case "n", "N":
			m.result.Confirmed = false
			return m, tea.Quit

		case "enter":
			m.result.Confirmed = m.selected
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m confirmModel) View() string {
	var sb strings.Builder

	sb.WriteString(confirmLabelStyle.Render(m.message) + "\n\n")

	yesStyle := lipgloss.NewStyle().Padding(0, 2)
	noStyle := lipgloss.NewStyle().Padding(0, 2)

	if m.selected {
		yesStyle = yesStyle.Background(lipgloss.Color("196")).Foreground(lipgloss.Color("0"))
	} else {
		noStyle = noStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	}

	sb.WriteString(fmt.Sprintf("  %s  %s\n", yesStyle.Render("Yes"), noStyle.Render("No")))
	sb.WriteString("\n" + confirmHintStyle.Render("←/→: select • enter: confirm • y/n: quick select • esc: cancel"))

	return sb.String()
}

// RunConfirm prompts for a yes/no answer and blocks until one is given.
// The prompt renders on stderr so stdout stays clean for piped output.
func RunConfirm(message string) (ConfirmResult, error) {
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))

	m := newConfirmModel(message)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return ConfirmResult{Aborted: true}, err
	}

	return finalModel.(confirmModel).result, nil
}
