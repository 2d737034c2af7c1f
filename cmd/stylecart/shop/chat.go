package shop

import (
	"strings"
)

// renderChatHistory renders the transcript for the chat viewport. Assistant
// responses may contain markup; they are rendered as markdown through
// glamour, so markup is interpreted for display rather than executed.
func (m *Model) renderChatHistory() string {
	if len(m.chatHistory) == 0 {
		return m.styles.Muted.Render("Ask about products, prices or recommendations.")
	}

	var sb strings.Builder
	for _, msg := range m.chatHistory {
		switch msg.Role {
		case "user":
			sb.WriteString(m.styles.Bold.Foreground(m.styles.Theme.Primary).Render("You"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")
		default:
			sb.WriteString(m.styles.Bold.Foreground(m.styles.Theme.Accent).Render("Assistant"))
			sb.WriteString("\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m *Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, fall back to plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
