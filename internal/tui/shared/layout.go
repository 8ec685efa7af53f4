package shared

import "github.com/charmbracelet/lipgloss"

// RenderTwoColumnLayout renders content in two equal columns.
// The right column absorbs the odd column when width is odd.
func RenderTwoColumnLayout(leftContent, rightContent string, width int) string {
	leftWidth := width / 2 //nolint:mnd // Two equal panes
	rightWidth := width - leftWidth

	leftStyle := lipgloss.NewStyle().Width(leftWidth)
	rightStyle := lipgloss.NewStyle().Width(rightWidth)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(leftContent),
		rightStyle.Render(rightContent),
	)
}

// RenderPaneBox renders a pane in a titled box. The focused pane gets the
// primary border color, the other a subtle gray.
func RenderPaneBox(title, content string, width int, focused bool) string {
	const widthOverhead = 4 // Account for borders (2) and padding (2)

	boxStyle := BoxStyle()
	if focused {
		boxStyle = ActivePaneStyle()
	}

	boxStyle = boxStyle.Width(max(width-widthOverhead, 1))

	return boxStyle.Render(TitleStyle().Render(title) + "\n" + content)
}
