// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer produces tab-completion candidates for slash commands and
// their arguments. The dynamic sources (saved sessions, workbench
// documents, config keys, files) are injected as callbacks so the package
// never reaches into the stores directly.
type Completer struct {
	registry *Registry

	SessionsFn func() []SessionInfo         // Returns saved sessions
	DocsFn     func() []DocumentInfo        // Returns workbench documents
	ConfigFn   func() []string              // Returns config keys
	FilesFn    func(prefix string) []string // Returns matching files
}

// NewCompleter creates a completer over the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// GetCommand returns a command by name from the completer's registry.
func (c *Completer) GetCommand(name string) *Command {
	if c.registry == nil {
		return nil
	}
	return c.registry.Get(name)
}

// Complete returns candidates for the input at the cursor position: command
// names while the name is being typed, argument values afterwards.
func (c *Completer) Complete(input string, cursorPos int) []Completion {
	if cursorPos < len(input) {
		input = input[:cursorPos]
	}

	// Trailing space is significant: it marks the start of the next argument
	input = strings.TrimLeft(input, " \t")

	// Only slash commands complete; plain chat text does not
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return c.completeCommands("")
	}

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	// Which argument, and how much of it, is under the cursor.
	argIndex := len(parts) - 2
	partial := ""
	if strings.HasSuffix(input, " ") {
		argIndex++
	} else if len(parts) > 1 {
		partial = parts[len(parts)-1]
	}

	return c.completeArg(cmd, argIndex, partial)
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

// completeCommands matches partial against visible command names and
// aliases. Aliases rank below their canonical names and display as
// "alias -> name" so the popup teaches the long form.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}

		if strings.HasPrefix(strings.ToLower(cmd.Name), partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}

		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(strings.ToLower(alias), partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

// completeArg dispatches on the declared type of the argument under the
// cursor.
func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	switch arg := cmd.Args[argIndex]; arg.Type {
	case ArgTypeSession:
		return c.completeSessions(partial)
	case ArgTypeDocument:
		return c.completeDocs(partial)
	case ArgTypeFile:
		return c.completeFiles(partial)
	case ArgTypeEnum:
		return c.completeFromList(arg.Values, partial)
	case ArgTypeConfig:
		return c.completeConfig(partial)
	case ArgTypeString:
		if arg.Completer != nil {
			return c.completeFromList(arg.Completer(), partial)
		}
		return nil
	default:
		return nil
	}
}

// record is the shape sessions and documents share for completion: an ID
// to insert, a human name to match and display, and a description column.
type record struct {
	id   string
	name string
	desc string
}

// completeRecords matches partial against record IDs (by prefix) and names
// (by substring). A name-only match ranks a little below an ID match so
// typing the start of an ID surfaces it first.
func (c *Completer) completeRecords(records []record, partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, r := range records {
		idMatch := strings.HasPrefix(strings.ToLower(r.id), partial)
		nameMatch := strings.Contains(strings.ToLower(r.name), partial)
		if !idMatch && !nameMatch {
			continue
		}

		score := calculateScore(r.id, partial)
		if !idMatch {
			score -= 5
		}

		display := r.id
		if r.name != "" {
			display = r.id + " - " + truncate(r.name, 30)
		}

		completions = append(completions, Completion{
			Value:       r.id,
			Display:     display,
			Description: r.desc,
			Score:       score,
		})
	}

	sortCompletions(completions)
	return completions
}

// completeSessions completes saved session IDs, matching titles too.
func (c *Completer) completeSessions(partial string) []Completion {
	if c.SessionsFn == nil {
		return nil
	}

	sessions := c.SessionsFn()
	records := make([]record, len(sessions))
	for i, s := range sessions {
		records[i] = record{id: s.ID, name: s.Title, desc: s.Preview}
	}
	return c.completeRecords(records, partial)
}

// completeDocs completes workbench document IDs, matching names too.
func (c *Completer) completeDocs(partial string) []Completion {
	if c.DocsFn == nil {
		return nil
	}

	docs := c.DocsFn()
	records := make([]record, len(docs))
	for i, d := range docs {
		records[i] = record{id: d.ID, name: d.Name, desc: formatFileSize(d.Size)}
	}
	return c.completeRecords(records, partial)
}

// completeFiles completes file paths, via the injected lister when set.
func (c *Completer) completeFiles(partial string) []Completion {
	if c.FilesFn != nil {
		return c.completeFromList(c.FilesFn(partial), partial)
	}
	return c.walkDirectory(partial)
}

// walkDirectory is the fallback file completion: list the directory the
// partial path points into and prefix-match the base name. Hidden entries
// stay hidden until the partial itself starts with a dot.
func (c *Completer) walkDirectory(partial string) []Completion {
	if partial == "" {
		partial = "."
	}

	dir := filepath.Dir(partial)
	prefix := filepath.Base(partial)
	if strings.HasSuffix(partial, string(os.PathSeparator)) {
		dir, prefix = partial, ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	prefix = strings.ToLower(prefix)
	var completions []Completion

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		score := calculateScore(name, prefix)
		desc := ""
		if entry.IsDir() {
			path += string(os.PathSeparator)
			score += 5
			desc = "directory"
		} else if info, err := entry.Info(); err == nil {
			desc = formatFileSize(info.Size())
		}

		completions = append(completions, Completion{
			Value:       path,
			Display:     name,
			Description: desc,
			Score:       score,
		})
	}

	sortCompletions(completions)
	if len(completions) > 20 {
		completions = completions[:20]
	}
	return completions
}

// completeConfig completes config keys from the injected source, falling
// back to the full key list.
func (c *Completer) completeConfig(partial string) []Completion {
	keys := ConfigKeys()
	if c.ConfigFn != nil {
		keys = c.ConfigFn()
	}
	return c.completeFromList(keys, partial)
}

// completeFromList prefix-matches partial against plain string values.
func (c *Completer) completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), partial) {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// RANKING HELPERS
// =============================================================================

// calculateScore ranks value against partial: exact beats prefix, prefix
// beats everything else, and shorter values edge out longer ones.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	if value == partial {
		return 200
	}

	score := 100
	if strings.HasPrefix(value, partial) {
		score += 50 + (20 - len(value))
	}
	return score - len(value)/2
}

// sortCompletions orders by score descending, ties alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// truncate shortens s to maxLen runes, ellipsized when cut. UNICODE:
// rune-based so multibyte characters never split.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatFileSize renders a byte count with at most one decimal, the way
// the document list shows sizes: "100 B", "1.5 KB", "2 MB".
func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}

	div := int64(unit)
	exp := 0
	for n := size / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}

	val := strconv.FormatFloat(float64(size)/float64(div), 'f', 1, 64)
	val = strings.TrimSuffix(val, ".0")
	return val + " " + [...]string{"KB", "MB", "GB"}[exp]
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState tracks popup navigation for an input widget: the text as
// typed before completion began, the candidates, and the selection.
type CompletionState struct {
	OriginalInput string
	Completions   []Completion
	Selected      int
	Visible       bool
}

// NewCompletionState creates an empty state with nothing selected.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update installs fresh candidates, auto-selecting the first.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	cs.Visible = len(completions) > 0
}

// Next moves the selection down, wrapping.
func (cs *CompletionState) Next() {
	if n := len(cs.Completions); n > 0 {
		cs.Selected = (cs.Selected + 1) % n
	}
}

// Prev moves the selection up, wrapping.
func (cs *CompletionState) Prev() {
	if n := len(cs.Completions); n > 0 {
		cs.Selected = (cs.Selected - 1 + n) % n
	}
}

// Accept returns the value to insert: the selection, or the first
// candidate when nothing is selected yet.
func (cs *CompletionState) Accept() string {
	if cs.Selected >= 0 && cs.Selected < len(cs.Completions) {
		return cs.Completions[cs.Selected].Value
	}
	if len(cs.Completions) > 0 {
		return cs.Completions[0].Value
	}
	return ""
}

// Clear resets the state to empty.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Visible = false
}

// GetSelected returns the selected candidate, nil when none.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
