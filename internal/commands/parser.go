// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult is the outcome of parsing one line of user input.
type ParseResult struct {
	// IsCommand is true when the input starts with "/". Plain chat text
	// parses with IsCommand false and nothing else set.
	IsCommand bool

	// Command is the registry entry the name resolved to, nil when the
	// name is unknown.
	Command *Command

	// CommandName is the typed name including the slash, e.g. "/export".
	CommandName string

	// Args are the tokenized arguments.
	Args []string

	// RawInput is the trimmed original line.
	RawInput string

	// RawArgs is everything after the command name, untokenized. Handlers
	// that want the argument text verbatim (/rename titles) read this.
	RawArgs string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser resolves slash input against a command registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser over the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse tokenizes input and resolves the command name. Input without a
// leading slash is plain chat text, returned with IsCommand false.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{RawInput: input}

	if !strings.HasPrefix(input, "/") {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return result
	}

	result.CommandName = parts[0]
	if len(parts) > 1 {
		result.Args = parts[1:]
		if idx := strings.Index(input, result.CommandName); idx >= 0 {
			result.RawArgs = strings.TrimSpace(input[idx+len(result.CommandName):])
		}
	}

	result.Command = p.registry.Get(result.CommandName)
	return result
}

// ParseArgs tokenizes a raw argument string, honoring quotes.
func ParseArgs(input string) []string {
	return splitCommandLine(input)
}

// =============================================================================
// TOKENIZER
// =============================================================================

// splitCommandLine splits a line into tokens. Either quote style groups a
// token containing spaces ("/rename 'my first chat'"); the quotes
// themselves are dropped. Backslash escapes a quote or backslash inside a
// quoted token. UNICODE: iterates runes, not bytes, so quoted titles with
// multibyte characters tokenize intact.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder

	// quote holds the active quote rune, or 0 outside quotes.
	var quote rune

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case (char == '\'' || char == '"') && quote == 0:
			quote = char

		case char == quote:
			quote = 0

		case char == '\\' && quote != 0 && i+1 < len(runes):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && quote == 0:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// =============================================================================
// INPUT INSPECTION
// =============================================================================

// IsCommand reports whether the input looks like a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName returns the command name portion of the input,
// e.g. "/load abc123" yields "/load". Empty for non-command input.
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if end := strings.IndexFunc(input, unicode.IsSpace); end >= 0 {
		return input[:end]
	}
	return input
}

// GetPartialCommand returns the command name still being typed, which the
// completion popup matches against. Once a space ends the name the popup
// switches to argument completion, signalled by an empty return.
func GetPartialCommand(input string) string {
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if strings.IndexFunc(input, unicode.IsSpace) >= 0 {
		return ""
	}
	return input
}

// GetPartialArg returns the index and text of the argument being typed.
// Trailing whitespace or a just-closed quote means a fresh argument is
// starting, returned as an empty partial at the next index.
func GetPartialArg(input string) (int, string) {
	parts := splitCommandLine(input)
	if len(parts) <= 1 {
		return 0, ""
	}

	trimmed := strings.TrimSpace(input)
	if strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\"") || strings.HasSuffix(trimmed, "'") {
		return len(parts) - 1, ""
	}
	return len(parts) - 2, parts[len(parts)-1]
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateArgs checks tokenized arguments against the command's argument
// definitions: required arguments must be present, enum arguments must
// carry one of the declared values (case-insensitive).
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}

	for i, argDef := range cmd.Args {
		if argDef.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      argDef.Name,
				Message:  "required argument missing",
				Expected: argDef.Description,
			}
		}

		if i < len(args) && argDef.Type == ArgTypeEnum && len(argDef.Values) > 0 {
			if !containsFold(argDef.Values, args[i]) {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(argDef.Values, ", "),
				}
			}
		}
	}
	return nil
}

// containsFold reports whether values contains s, ignoring case.
func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// ValidationError describes an argument that failed validation.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
