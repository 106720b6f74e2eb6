package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmDialogModel is a yes/no prompt drawn over the task list.
// Focus starts on the cancel button.
type ConfirmDialogModel struct {
	message     string
	confirmText string
	cancelText  string
	focusOK     bool
	confirmed   bool
	done        bool
	width       int
	height      int

	// taskID is the task the prompt is about, empty for app-level prompts
	taskID string
}

// NewConfirmDialogModel creates a new confirmation dialog
func NewConfirmDialogModel(message, confirmText, cancelText string, width, height int) *ConfirmDialogModel {
	return &ConfirmDialogModel{
		message:     message,
		confirmText: confirmText,
		cancelText:  cancelText,
		width:       width,
		height:      height,
	}
}

// ForTask ties the dialog to a task
func (m *ConfirmDialogModel) ForTask(id string) *ConfirmDialogModel {
	m.taskID = id
	return m
}

// TaskID returns the task the prompt is about
func (m *ConfirmDialogModel) TaskID() string {
	return m.taskID
}

// Update handles user interaction
func (m *ConfirmDialogModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "n", "N":
			m.confirmed = false
			m.done = true

		case "y", "Y":
			m.confirmed = true
			m.done = true

		case "enter":
			m.confirmed = m.focusOK
			m.done = true

		case "tab", "shift+tab", "right", "left", "l", "h":
			m.focusOK = !m.focusOK
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return nil
}

// View renders the dialog
func (m *ConfirmDialogModel) View() string {
	dialogWidth := m.width / 2
	if dialogWidth < 30 {
		dialogWidth = 30
	}

	messageStyle := lipgloss.NewStyle().
		Width(dialogWidth - 6).
		Align(lipgloss.Center).
		PaddingBottom(1)

	confirmStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(lipgloss.Color("#F7768E")).
		Bold(m.focusOK).
		Underline(m.focusOK)

	cancelStyle := lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(lipgloss.Color("#A9B1D6")).
		Bold(!m.focusOK).
		Underline(!m.focusOK)

	buttonRow := lipgloss.JoinHorizontal(lipgloss.Center,
		confirmStyle.Render(m.confirmText), "   ", cancelStyle.Render(m.cancelText))

	buttons := lipgloss.NewStyle().
		Width(dialogWidth - 6).
		Align(lipgloss.Center).
		Render(buttonRow)

	content := lipgloss.JoinVertical(lipgloss.Center,
		messageStyle.Render(m.message),
		buttons,
		"",
		"y/n • tab: switch • enter: choose • esc: cancel",
	)

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#BB9AF7")).
		Padding(1, 2).
		Width(dialogWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

// Done returns whether the dialog is done
func (m *ConfirmDialogModel) Done() bool {
	return m.done
}

// Result returns the confirmation result
func (m *ConfirmDialogModel) Result() bool {
	return m.confirmed
}
