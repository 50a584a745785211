package dash

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("#5B8DEF"))

	selectedStyle = lipgloss.NewStyle().Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

func (m Model) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}
	return m.viewDashboard()
}

func (m Model) viewLogin() string {
	lines := []string{
		titleStyle.Render("boardkit"),
		"",
		m.email.View(),
		m.passwd.View(),
		"",
		dimStyle.Render("enter log in    ctrl+r register    ctrl+c quit"),
	}
	if m.banner != "" {
		lines = append(lines, "", bannerStyle.Render(m.banner))
	}
	if m.loading {
		lines = append(lines, "", dimStyle.Render("working..."))
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewDashboard() string {
	if m.modal.open {
		return m.viewModal()
	}
	if m.prompt.open {
		return m.viewPrompt()
	}

	width := m.width
	if width <= 0 {
		width = 100
	}
	leftWidth := maxInt(24, width/3)
	rightWidth := maxInt(30, width-leftWidth-6)

	left := m.renderBoardsPane(leftWidth)
	right := m.renderTodosPane(rightWidth)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	header := titleStyle.Render("boardkit") + dimStyle.Render("  "+m.user)
	sections := []string{header, body}
	if m.banner != "" {
		sections = append(sections, bannerStyle.Render(m.banner)+dimStyle.Render("  (esc to dismiss)"))
	}
	help := "tab switch pane    n new    r rename    d delete    f filter    ctrl+l logout"
	if m.loading {
		help = "working...    " + help
	}
	sections = append(sections, dimStyle.Render(help))
	return strings.Join(sections, "\n")
}

func (m Model) renderBoardsPane(width int) string {
	rows := []string{titleStyle.Render(fmt.Sprintf("Boards (%d)", len(m.boards)))}
	if len(m.boards) == 0 {
		rows = append(rows, dimStyle.Render("no boards yet, press n"))
	}
	for i, b := range m.boards {
		marker := "  "
		if b.ID == m.selectedBoard {
			marker = "* "
		}
		line := marker + b.Name
		if m.focus == focusBoards && i == m.boardCursor {
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		rows = append(rows, line)
	}
	style := paneStyle
	if m.focus == focusBoards {
		style = focusedPaneStyle
	}
	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) renderTodosPane(width int) string {
	visible := visibleTodos(m.todos, m.filter)
	rows := []string{titleStyle.Render(fmt.Sprintf("Todos (%d, %s)", len(visible), m.filter))}
	if m.selectedBoard == "" {
		rows = append(rows, dimStyle.Render("select a board"))
	} else if len(visible) == 0 {
		rows = append(rows, dimStyle.Render("nothing here"))
	}
	for i, t := range visible {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, t.Title)
		if t.Description != "" {
			line += dimStyle.Render("  " + t.Description)
		}
		if m.focus == focusTodos && i == m.todoCursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	style := paneStyle
	if m.focus == focusTodos {
		style = focusedPaneStyle
	}
	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m Model) viewModal() string {
	heading := "New todo"
	if m.modal.todoID != "" {
		heading = "Edit todo"
	}
	lines := []string{
		titleStyle.Render(heading),
		"",
		m.modal.title.View(),
		m.modal.desc.View(),
		"",
		dimStyle.Render("enter save    tab next field    esc cancel"),
	}
	if m.banner != "" {
		lines = append(lines, "", bannerStyle.Render(m.banner))
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewPrompt() string {
	heading := "New board"
	if m.prompt.renameID != "" {
		heading = "Rename board"
	}
	lines := []string{
		titleStyle.Render(heading),
		"",
		m.prompt.input.View(),
		"",
		dimStyle.Render("enter save    esc cancel"),
	}
	if m.banner != "" {
		lines = append(lines, "", bannerStyle.Render(m.banner))
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
