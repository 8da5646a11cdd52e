package studio

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmorgan81/dallestudio/internal/image"
	"github.com/samber/lo"
)

// Rows used by everything in the left panel except the picture.
const leftChromeRows = 14

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	focusedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("28"))
	saveStyle     = buttonStyle.Background(lipgloss.Color("27"))
	disabledStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")).Background(lipgloss.Color("237"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	modalStyle    = lipgloss.NewStyle().
			Width(50).
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205"))
	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	left := m.leftWidth()
	right := width - left - 1

	m.apiKey.Width = max(left-20, 10)
	m.style.Width = max(left-20, 10)
	m.prompt.SetWidth(max(left-2, 10))
	m.path.Width = 40
	m.detail.Width = max(right-2, 10)
	m.detail.Height = 6
	m.help.Width = right
	m.setDetail()
}

func (m *Model) leftWidth() int {
	return m.width * 6 / 10
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.modal {
	case modalError:
		return m.overlay(errorTitleStyle.Render("Error") + "\n\n" + m.errMsg + "\n\n" + dimStyle.Render("enter to dismiss"))
	case modalConfirmClear:
		return m.overlay(titleStyle.Render("Clear History") + "\n\nDelete all generated images in this session?\n\n" + dimStyle.Render("y / N"))
	case modalSave:
		return m.overlay(titleStyle.Render("Save Current") + "\n\n" + m.path.View() + "\n\n" + dimStyle.Render("enter to save, esc to cancel"))
	}

	left := lipgloss.NewStyle().
		Width(m.leftWidth()).
		Height(m.height).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		Render(m.leftPanelView())
	right := lipgloss.NewStyle().
		Width(m.width - m.leftWidth() - 1).
		Height(m.height).
		Render(m.rightPanelView())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(content))
}

func (m *Model) label(f focus, text string) string {
	return lo.Ternary(m.focus == f, focusedStyle, titleStyle).Render(text)
}

func (m *Model) leftPanelView() string {
	var b strings.Builder

	b.WriteString(m.label(focusKey, "OpenAI API Key: ") + m.apiKey.View() + "\n\n")
	b.WriteString(titleStyle.Render("Quality: ") + radio(image.Qualities, m.quality, image.Quality.Name))
	b.WriteString("   " + titleStyle.Render("Aspect Ratio: ") + radio(image.Sizes, m.size, image.Size.Name) + "\n\n")
	b.WriteString(m.label(focusStyle, "In The Style Of: ") + m.style.View() + "\n\n")
	b.WriteString(m.label(focusPrompt, "Prompt:") + "\n" + m.prompt.View() + "\n\n")

	generate := lo.Ternary(m.generating, disabledStyle, buttonStyle).Render("Generate")
	save := lo.Ternary(m.current == nil, disabledStyle, saveStyle).Render("Save Current")
	b.WriteString(generate + " " + save + "\n")

	switch {
	case m.generating:
		b.WriteString(m.spinner.View() + " Generating image...")
	case m.status != "":
		b.WriteString(dimStyle.MaxWidth(m.leftWidth() - 1).Render(m.status))
	}
	b.WriteString("\n\n")

	rows := max(m.height-leftChromeRows, 3)
	if m.current != nil {
		b.WriteString(m.picture.render(m.current.ID, m.current.Thumbnail, m.leftWidth()-1, rows))
	}
	return b.String()
}

func (m *Model) rightPanelView() string {
	var b strings.Builder

	b.WriteString(m.label(focusHistory, "Session History") + "\n")
	rows := max(m.height-m.detail.Height-8, 3)
	b.WriteString(m.historyView(rows) + "\n")
	b.WriteString(titleStyle.Render("Selected Full Prompt:") + "\n")
	b.WriteString(m.detail.View() + "\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	return b.String()
}

func (m *Model) historyView(rows int) string {
	lines := make([]string, 0, rows)
	start := max(m.cursor-rows+1, 0)
	for i := start; i < len(m.labels) && len(lines) < rows; i++ {
		if i == m.cursor && m.current != nil {
			lines = append(lines, selectedStyle.Render(m.labels[i]))
			continue
		}
		lines = append(lines, m.labels[i])
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func radio[T comparable](options []T, selected T, name func(T) string) string {
	return strings.Join(lo.Map(options, func(o T, _ int) string {
		return fmt.Sprintf("(%s) %s", lo.Ternary(o == selected, "•", " "), name(o))
	}), " ")
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
