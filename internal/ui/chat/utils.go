// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/commands"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
)

// =============================================================================
// CLIPBOARD
// =============================================================================

// copyToClipboard writes content to the system clipboard off the render
// loop; X11 roundtrips can stall.
func copyToClipboard(content string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(content); err != nil {
			return commands.CopyCompleteMsg{Success: false, Error: err}
		}
		return commands.CopyCompleteMsg{Success: true}
	}
}

// lastAssistantContent returns the newest assistant reply in the
// transcript, or empty when there is none.
func (m Model) lastAssistantContent() string {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if m.transcript[i].Role == model.RoleAssistant {
			return m.transcript[i].Content
		}
	}
	return ""
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// sessionInfoList converts stored sessions to the display rows the
// command layer and the picker share.
func sessionInfoList(sessions []model.Session) []commands.SessionInfo {
	infos := make([]commands.SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = commands.SessionInfo{
			ID:        s.ID,
			Title:     s.Title,
			Preview:   s.LastMessage,
			UpdatedAt: s.Timestamp.Format("2006-01-02 15:04"),
			MsgCount:  s.MessageCount,
		}
	}
	return infos
}

// documentInfoList converts stored documents to completion rows.
func documentInfoList(docs []storage.Document) []commands.DocumentInfo {
	infos := make([]commands.DocumentInfo, len(docs))
	for i, d := range docs {
		infos[i] = commands.DocumentInfo{
			ID:         d.ID,
			Name:       d.Name,
			Size:       d.Size,
			UploadedAt: d.UploadedAt.Format("2006-01-02 15:04"),
		}
	}
	return infos
}

// =============================================================================
// FORMATTING
// =============================================================================

// truncateRunes shortens s to max runes with an ellipsis. UNICODE: rune
// count, not bytes, so multibyte text never splits mid-character.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// formatSize renders a byte count the way directory listings do.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// pluralize formats a count with the right noun form.
func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
