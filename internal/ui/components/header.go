// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT - Title bar with parley branding
// =============================================================================

// SourceMode identifies where assistant replies come from.
type SourceMode int

const (
	SourceSimulated SourceMode = iota
	SourceNetwork
)

// String returns the display string for the source mode.
func (m SourceMode) String() string {
	switch m {
	case SourceSimulated:
		return "SIMULATED"
	case SourceNetwork:
		return "NETWORK"
	default:
		return "UNKNOWN"
	}
}

// Header is the title bar: app brand, current session title, stream
// source badge, and an unsaved marker.
type Header struct {
	Title        string // Main title (default: "parley")
	SessionTitle string // Current session title
	Source       SourceMode
	Dirty        bool // Unsaved changes marker
	Width        int
	theme        *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:  "parley",
		Source: SourceSimulated,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetSessionTitle updates the displayed session title.
func (h *Header) SetSessionTitle(title string) {
	h.SessionTitle = title
}

// SetSource updates the stream source badge.
func (h *Header) SetSource(mode SourceMode) {
	h.Source = mode
}

// View renders the bordered two-line header.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		return h.ViewCompact()
	}

	// Inner width accounts for borders and padding
	innerWidth := width - 6

	brandStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan)

	accentStyle := lipgloss.NewStyle().
		Foreground(styles.Purple)

	brand := accentStyle.Render("< ") +
		brandStyle.Render(h.Title) +
		accentStyle.Render(" >")

	// Subtitle line: session title, source badge, unsaved marker
	subtitleParts := []string{}

	if h.SessionTitle != "" {
		title := h.SessionTitle
		if h.Dirty {
			title += " *"
		}
		subtitleParts = append(subtitleParts,
			lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(title))
	} else if h.Dirty {
		subtitleParts = append(subtitleParts, h.theme.StatusDirty.Render("unsaved"))
	}

	subtitleParts = append(subtitleParts,
		h.sourceStyle().Render("["+h.Source.String()+"]"))

	subtitle := strings.Join(subtitleParts, " ")

	brandLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Render(brand)

	subtitleLine := lipgloss.NewStyle().
		Width(innerWidth).
		Align(lipgloss.Center).
		Foreground(styles.TextMuted).
		Render(subtitle)

	content := lipgloss.JoinVertical(lipgloss.Center, brandLine, subtitleLine)

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Background(styles.SurfaceDim).
		Padding(0, 2).
		Width(width).
		Render(content)
}

// ViewCompact renders a single-line header for narrow terminals.
// Format: <parley> | Session title * | [SIM]
func (h *Header) ViewCompact() string {
	brandStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan)

	accentStyle := lipgloss.NewStyle().
		Foreground(styles.Purple)

	brand := accentStyle.Render("<") +
		brandStyle.Render(h.Title) +
		accentStyle.Render(">")

	parts := []string{brand}

	if h.SessionTitle != "" {
		title := h.SessionTitle
		titleRunes := []rune(title)
		if len(titleRunes) > 20 {
			title = string(titleRunes[:17]) + "..."
		}
		if h.Dirty {
			title += " *"
		}
		parts = append(parts,
			lipgloss.NewStyle().Foreground(styles.TextMuted).Render(title))
	}

	badge := "SIM"
	if h.Source == SourceNetwork {
		badge = "NET"
	}
	parts = append(parts, h.sourceStyle().Render("["+badge+"]"))

	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	return strings.Join(parts, separator)
}

// sourceStyle returns the style for the source badge.
func (h *Header) sourceStyle() lipgloss.Style {
	switch h.Source {
	case SourceNetwork:
		return lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
	default:
		return lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)
	}
}

// =============================================================================
// GRADIENT TITLE (for terminals with true color support)
// =============================================================================

// GradientTitle creates a gradient text effect. Works best in terminals
// with true color support; degraded profiles quantize the colors.
func GradientTitle(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	if len(runes) == 1 {
		return lipgloss.NewStyle().Foreground(startColor).Bold(true).Render(text)
	}

	var b strings.Builder
	for i, r := range runes {
		t := float64(i) / float64(len(runes)-1)
		color := interpolateColor(startColor, endColor, t)
		b.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(string(r)))
	}
	return b.String()
}

// interpolateColor blends two hex colors at position t in [0, 1].
func interpolateColor(start, end lipgloss.Color, t float64) lipgloss.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	r1, g1, b1 := parseHexColor(string(start))
	r2, g2, b2 := parseHexColor(string(end))

	r := uint8(float64(r1) + (float64(r2)-float64(r1))*t)
	g := uint8(float64(g1) + (float64(g2)-float64(g1))*t)
	b := uint8(float64(b1) + (float64(b2)-float64(b1))*t)

	return lipgloss.Color(formatHexColor(r, g, b))
}

// parseHexColor parses "#RRGGBB" into components. Unparseable input
// yields black, which still renders.
func parseHexColor(hex string) (r, g, b uint8) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	return parseHexByte(hex[0:2]), parseHexByte(hex[2:4]), parseHexByte(hex[4:6])
}

// parseHexByte parses a two-character hex byte.
func parseHexByte(s string) uint8 {
	var v uint8
	for i := 0; i < len(s) && i < 2; i++ {
		v <<= 4
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v |= c - '0'
		case c >= 'a' && c <= 'f':
			v |= c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v |= c - 'A' + 10
		}
	}
	return v
}

// formatHexColor formats RGB components as "#RRGGBB".
func formatHexColor(r, g, b uint8) string {
	const digits = "0123456789ABCDEF"
	out := []byte{'#', 0, 0, 0, 0, 0, 0}
	out[1] = digits[r>>4]
	out[2] = digits[r&0x0F]
	out[3] = digits[g>>4]
	out[4] = digits[g&0x0F]
	out[5] = digits[b>>4]
	out[6] = digits[b&0x0F]
	return string(out)
}
