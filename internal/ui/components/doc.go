// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the parley TUI.

This package contains a collection of styled components built on top of
the Bubble Tea and Lip Gloss libraries. Components are render helpers:
they hold presentation state only (width, theme, animation frame) and
draw from domain values passed in at render time. The bubbletea model in
internal/ui/chat owns the wiring.

# Core Components

## Display Components

Header (header.go) - Application header with session title, source badge, and unsaved marker.
StatusBar (statusbar.go) - Bottom status bar with session state, typing speed, and shortcuts.
MessageBubble (message.go) - Styled chat bubbles for user, assistant, and error turns.
CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma.
ThinkingPanel (timeline.go) - The step-by-step thinking timeline shown while a reply streams.

## Progress and Feedback

Spinner (spinner.go) - Animated spinner with reduced-motion fallback.
Toast (toast.go) - Non-blocking corner notifications that auto-dismiss.

## Input Components

CompletionPopup (completion.go) - Slash-command completion popup with fuzzy matching.

## Specialized Views

Welcome (welcome.go) - First-run welcome screen with quick-start hints.

# Theme Integration

All components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme()
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	view := bar.View()

# Responsive Layouts

Components degrade gracefully across terminal widths, collapsing in the
same three tiers the styles package defines: narrow (< 60 columns),
medium (60-100), and wide (> 100).

ACCESSIBILITY: components pair color with the shape indicators from
styles.StatusIndicators so state reads correctly without color, and
respect reduced-motion preferences by swapping animated spinners for
static glyphs.
*/
package components
