package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Style definitions.
var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// feedbackMsg carries the dispatcher's answer back to the model.
type feedbackMsg struct {
	input string
	text  string
	err   error
}

type chatModel struct {
	input     textinput.Model
	history   []string
	busy      bool
	userStyle lipgloss.Style
}

func newChatModel(darkMode bool) chatModel {
	ti := textinput.New()
	ti.Placeholder = `Try "add buy milk #groceries" or "what's on today?"`
	ti.Prompt = promptStyle.Render("> ")
	ti.Focus()
	ti.CharLimit = 280

	us := userStyle
	if !darkMode {
		us = lipgloss.NewStyle().Foreground(lipgloss.Color("235"))
	}
	return chatModel{input: ti, userStyle: us}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			return m, dispatchLine(line)
		}

	case feedbackMsg:
		m.busy = false
		m.history = append(m.history, m.userStyle.Render("> "+msg.input))
		if msg.err != nil {
			m.history = append(m.history, errStyle.Render("error: "+msg.err.Error()))
		} else {
			m.history = append(m.history, feedbackStyle.Render(msg.text))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	var b strings.Builder
	for _, line := range m.history {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(feedbackStyle.Render("enter to send, esc to quit"))
	return b.String()
}

// dispatchLine runs one line through the dispatcher off the update loop.
func dispatchLine(line string) tea.Cmd {
	return func() tea.Msg {
		text, err := Dispatcher.Handle(context.Background(), line)
		return feedbackMsg{input: line, text: text, err: err}
	}
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with the task manager",
	Long: `Open an interactive prompt. Each line goes through the same handler
as "tt do": grammar commands apply directly, plain language is
interpreted. Quit with Esc or Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Dispatcher == nil {
			return fmt.Errorf("dispatcher not initialized")
		}

		// Catch up on reminders that came due while nothing was running.
		if Checker != nil {
			Checker.ForceCheck()
		}

		darkMode := Store != nil && Store.Prefs().DarkMode
		p := tea.NewProgram(newChatModel(darkMode))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running chat: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
