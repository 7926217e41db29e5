// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY BINDINGS
// =============================================================================

// KeyMap defines the keyboard shortcuts for the chat view.
type KeyMap struct {
	// Core
	Submit  key.Binding
	Newline key.Binding
	Quit    key.Binding
	Cancel  key.Binding

	// Completion popup
	AcceptCompletion key.Binding
	NextCompletion   key.Binding
	PrevCompletion   key.Binding

	// Conversation
	SaveSession   key.Binding
	OpenPicker    key.Binding
	CopyLast      key.Binding
	QuickExport   key.Binding
	ToggleThink   key.Binding
	ToggleHelp    key.Binding

	// Scrolling
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	GotoTop    key.Binding
	GotoBottom key.Binding
}

// DefaultKeyMap returns the standard chat key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		Newline: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("ctrl+j", "insert newline"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancel / quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel reply / close"),
		),
		AcceptCompletion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept completion"),
		),
		NextCompletion: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next completion"),
		),
		PrevCompletion: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous completion"),
		),
		SaveSession: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save session"),
		),
		OpenPicker: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "browse sessions"),
		),
		CopyLast: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy last reply"),
		),
		QuickExport: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export as markdown"),
		),
		ToggleThink: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle thinking panel"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("ctrl+↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("ctrl+↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "go to bottom"),
		),
	}
}

// ShortHelp returns the bindings shown in the collapsed help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.OpenPicker, k.ToggleHelp, k.Quit}
}

// FullHelp returns all bindings grouped for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Newline, k.Cancel, k.Quit},
		{k.AcceptCompletion, k.NextCompletion, k.PrevCompletion},
		{k.SaveSession, k.OpenPicker, k.CopyLast, k.QuickExport},
		{k.ToggleThink, k.ToggleHelp},
		{k.PageUp, k.PageDown, k.GotoTop, k.GotoBottom},
	}
}

// HelpSection groups related shortcuts for the help screen.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpSections returns the shortcuts grouped the way the help screen
// presents them.
func (k KeyMap) HelpSections() []HelpSection {
	return []HelpSection{
		{Title: "Conversation", Bindings: []key.Binding{k.Submit, k.Newline, k.Cancel, k.Quit}},
		{Title: "Completion", Bindings: []key.Binding{k.AcceptCompletion, k.NextCompletion, k.PrevCompletion}},
		{Title: "Sessions", Bindings: []key.Binding{k.SaveSession, k.OpenPicker, k.CopyLast, k.QuickExport}},
		{Title: "Display", Bindings: []key.Binding{k.ToggleThink, k.ToggleHelp}},
		{Title: "Scrolling", Bindings: []key.Binding{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.GotoTop, k.GotoBottom}},
	}
}
