package shop

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"stylecart/internal/tryon"
)

// handleTryOnKey drives the virtual try-on page. The upload control is
// disabled while an attempt is in flight; there is no cancellation.
func (m *Model) handleTryOnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.photoInput.path.Blur()
		m.photoInput.token.Blur()
		m.page = PageDetail
		if m.detail == nil {
			m.page = PageHome
		}
		return m, nil
	case "tab":
		if m.photoInput.focus == 0 {
			m.photoInput.focus = 1
			m.photoInput.path.Blur()
			m.photoInput.token.Focus()
		} else {
			m.photoInput.focus = 0
			m.photoInput.token.Blur()
			m.photoInput.path.Focus()
		}
		return m, nil
	case "d":
		if !m.tryonBusy && !m.photoInput.path.Focused() && !m.photoInput.token.Focused() {
			m.tryon.Dismiss()
			m.tryonResult = ""
			return m, nil
		}
	case "enter":
		if m.tryonBusy {
			return m, nil
		}
		path := strings.TrimSpace(m.photoInput.path.Value())
		if path == "" {
			m.errText = "enter the path to your photo first"
			return m, nil
		}
		m.errText = ""
		m.tryonBusy = true
		m.tryonResult = ""
		m.photoInput.path.Blur()
		m.photoInput.token.Blur()
		return m, m.runTryOn(path, strings.TrimSpace(m.photoInput.token.Value()))
	}

	var cmd tea.Cmd
	if m.photoInput.token.Focused() {
		m.photoInput.token, cmd = m.photoInput.token.Update(msg)
	} else {
		m.photoInput.path, cmd = m.photoInput.path.Update(msg)
	}
	return m, cmd
}

// runTryOn reads the user's photo and drives one orchestrator attempt.
func (m *Model) runTryOn(photoPath, token string) tea.Cmd {
	orchestrator := m.tryon
	cfgToken := m.cfg.TryOn.Token
	return func() tea.Msg {
		if token == "" {
			token = cfgToken
		}

		data, err := os.ReadFile(photoPath)
		if err != nil {
			return tryonDoneMsg{err: err}
		}
		photo := tryon.FileHandle{
			Name:        filepath.Base(photoPath),
			ContentType: photoContentType(photoPath),
			Data:        data,
		}

		res, err := orchestrator.Run(context.Background(), photo, token)
		if err != nil {
			return tryonDoneMsg{err: err}
		}
		return tryonDoneMsg{imageURL: res.ImageURL}
	}
}

func photoContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
