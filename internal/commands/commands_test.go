// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat UI.
package commands

import (
	"testing"

	"github.com/jeranaias/parley/internal/config"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/load abc123", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/load abc123", "/load"},
		{"/save my-session", "/save"},
		{"  /help  ", "/help"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/hel", "/hel"},
		{"/help", "/help"},
		{"/load ", ""},       // Space after command means complete
		{"/load abc123", ""}, // Has arguments
		{"hello", ""},
	}

	for _, tc := range tests {
		got := GetPartialCommand(tc.input)
		if got != tc.want {
			t.Errorf("GetPartialCommand(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialArg(t *testing.T) {
	tests := []struct {
		input    string
		wantIdx  int
		wantPart string
	}{
		{"/help", 0, ""},
		{"/load abc", 0, "abc"},
		// Note: trailing space is trimmed by the function before checking,
		// so it returns the last part as partial text
		{"/load abc123 ", 0, "abc123"},
		{"/save my session", 1, "session"},
	}

	for _, tc := range tests {
		gotIdx, gotPart := GetPartialArg(tc.input)
		if gotIdx != tc.wantIdx || gotPart != tc.wantPart {
			t.Errorf("GetPartialArg(%q) = (%d, %q), want (%d, %q)",
				tc.input, gotIdx, gotPart, tc.wantIdx, tc.wantPart)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/help", []string{"/help"}},
		{"/load abc123", []string{"/load", "abc123"}},
		{`/save "my session"`, []string{"/save", "my session"}},
		{`/save 'my session'`, []string{"/save", "my session"}},
		{"/config key value", []string{"/config", "key", "value"}},
		{`/doc save "notes with spaces"`, []string{"/doc", "save", "notes with spaces"}},
		// UNICODE: multibyte text inside quotes must survive tokenization
		{`/save "café ☕ notes"`, []string{"/save", "café ☕ notes"}},
	}

	for _, tc := range tests {
		got := ParseArgs(tc.input)
		if len(got) != len(tc.want) {
			t.Errorf("ParseArgs(%q) = %v, want %v", tc.input, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseArgs(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Should have built-in commands
	if len(r.commands) == 0 {
		t.Error("Registry should have built-in commands")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	cmd := &Command{
		Name:        "/test",
		Aliases:     []string{"/t"},
		Description: "Test command",
	}

	r.Register(cmd)

	if r.Get("/test") == nil {
		t.Error("Should get command by name")
	}

	if r.Get("/t") == nil {
		t.Error("Should get command by alias")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	// Built-in commands
	if r.Get("/help") == nil {
		t.Error("/help command should exist")
	}

	if r.Get("/h") == nil {
		t.Error("/h alias should resolve to /help")
	}

	if r.Get("/?") == nil {
		t.Error("/? alias should resolve to /help")
	}

	if r.Get("/nonexistent") != nil {
		t.Error("/nonexistent should return nil")
	}
}

func TestRegistry_All(t *testing.T) {
	r := NewRegistry()
	all := r.All()

	if len(all) == 0 {
		t.Error("All() should return commands")
	}

	// Check that essential commands are present
	found := make(map[string]bool)
	for _, cmd := range all {
		found[cmd.Name] = true
	}

	essentials := []string{"/help", "/quit", "/new", "/save", "/load", "/export", "/share"}
	for _, name := range essentials {
		if !found[name] {
			t.Errorf("Essential command %s not found in All()", name)
		}
	}
}

func TestRegistry_ByCategory(t *testing.T) {
	r := NewRegistry()
	byCategory := r.ByCategory()

	if len(byCategory) == 0 {
		t.Error("ByCategory() should return categories")
	}

	// Check that expected categories exist
	expectedCategories := []string{"Navigation", "Conversation", "Workbench", "Sharing", "Settings"}
	for _, cat := range expectedCategories {
		if _, ok := byCategory[cat]; !ok {
			t.Errorf("Expected category %q not found", cat)
		}
	}

	// Hidden commands should not appear
	for _, cmds := range byCategory {
		for _, cmd := range cmds {
			if cmd.Hidden {
				t.Errorf("Hidden command %s should not appear in ByCategory()", cmd.Name)
			}
		}
	}
}

// =============================================================================
// PARSE PIPELINE TESTS
// =============================================================================

func TestParser_Parse(t *testing.T) {
	r := NewRegistry()
	p := NewParser(r)

	tests := []struct {
		input     string
		isCommand bool
		cmdName   string
		argsLen   int
	}{
		{"/help", true, "/help", 0},
		{"/load abc123", true, "/load", 1},
		{"hello world", false, "", 0},
		{"/nonexistent", true, "/nonexistent", 0},
		{`/save "my session"`, true, "/save", 1},
	}

	for _, tc := range tests {
		result := p.Parse(tc.input)

		if result.IsCommand != tc.isCommand {
			t.Errorf("Parse(%q).IsCommand = %v, want %v", tc.input, result.IsCommand, tc.isCommand)
		}

		if result.CommandName != tc.cmdName {
			t.Errorf("Parse(%q).CommandName = %q, want %q", tc.input, result.CommandName, tc.cmdName)
		}

		if len(result.Args) != tc.argsLen {
			t.Errorf("Parse(%q) args length = %d, want %d", tc.input, len(result.Args), tc.argsLen)
		}
	}
}

func TestParser_Parse_CommandLookup(t *testing.T) {
	r := NewRegistry()
	p := NewParser(r)

	// Existing command
	result := p.Parse("/help")
	if result.Command == nil {
		t.Error("Parse(/help).Command should not be nil")
	}

	// Alias lookup
	result = p.Parse("/h")
	if result.Command == nil {
		t.Error("Parse(/h).Command should not be nil (alias)")
	}

	// Non-existent command
	result = p.Parse("/nonexistent")
	if result.Command != nil {
		t.Error("Parse(/nonexistent).Command should be nil")
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidateArgs(t *testing.T) {
	// Command with required argument
	cmdWithRequired := &Command{
		Name: "/test",
		Args: []ArgDef{
			{Name: "required_arg", Required: true, Description: "A required argument"},
		},
	}

	// Missing required argument
	err := ValidateArgs(cmdWithRequired, []string{})
	if err == nil {
		t.Error("ValidateArgs should return error for missing required argument")
	}

	// Provided required argument
	err = ValidateArgs(cmdWithRequired, []string{"value"})
	if err != nil {
		t.Errorf("ValidateArgs should not error when required argument provided: %v", err)
	}

	// Command with enum argument
	cmdWithEnum := &Command{
		Name: "/source",
		Args: []ArgDef{
			{Name: "source", Required: true, Type: ArgTypeEnum, Values: []string{"simulated", "network"}},
		},
	}

	// Valid enum value
	err = ValidateArgs(cmdWithEnum, []string{"simulated"})
	if err != nil {
		t.Errorf("ValidateArgs should accept valid enum value: %v", err)
	}

	// Invalid enum value
	err = ValidateArgs(cmdWithEnum, []string{"invalid"})
	if err == nil {
		t.Error("ValidateArgs should reject invalid enum value")
	}

	// Case insensitive enum
	err = ValidateArgs(cmdWithEnum, []string{"SIMULATED"})
	if err != nil {
		t.Errorf("ValidateArgs should accept case-insensitive enum: %v", err)
	}

	// Nil command should not error
	err = ValidateArgs(nil, []string{"anything"})
	if err != nil {
		t.Errorf("ValidateArgs(nil) should not error: %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Command:  "/test",
		Arg:      "arg1",
		Message:  "invalid value",
		Got:      "bad",
		Expected: "good1, good2",
	}

	errStr := err.Error()

	// Check that all parts are in the error string
	if errStr == "" {
		t.Error("Error() should return non-empty string")
	}

	// Should contain command, argument, message, got, expected
	contains := []string{"/test", "arg1", "invalid value", "bad", "good1, good2"}
	for _, s := range contains {
		if !containsStr(errStr, s) {
			t.Errorf("Error() should contain %q, got: %s", s, errStr)
		}
	}
}

// =============================================================================
// CONTEXT TESTS
// =============================================================================

func TestNewContext(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil, nil)
	if ctx == nil {
		t.Fatal("NewContext() returned nil")
	}
}

func TestContext_RecordActivity(t *testing.T) {
	// With nil session, should not panic
	ctx := NewContext(nil, nil, nil, nil, nil)
	ctx.RecordActivity() // Should not panic
}

// =============================================================================
// ARGTYPE TESTS
// =============================================================================

func TestArgType_Values(t *testing.T) {
	// Verify ArgType constants are defined
	types := []ArgType{
		ArgTypeString,
		ArgTypeSession,
		ArgTypeDocument,
		ArgTypeFile,
		ArgTypeEnum,
		ArgTypeConfig,
	}

	for i, at := range types {
		if int(at) != i {
			t.Errorf("ArgType constant %d has unexpected value %d", i, at)
		}
	}
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestHandleExport_Formats(t *testing.T) {
	tests := []struct {
		args       []string
		wantFormat string
		wantErr    bool
	}{
		{nil, "markdown", false}, // Default
		{[]string{"markdown"}, "markdown", false},
		{[]string{"md"}, "markdown", false},
		{[]string{"txt"}, "text", false},
		{[]string{"text"}, "text", false},
		{[]string{"json"}, "json", false},
		{[]string{"pdf"}, "pdf", false},
		{[]string{"html"}, "", true}, // Unsupported
		{[]string{"docx"}, "", true},
	}

	for _, tc := range tests {
		msg := HandleExport(nil, tc.args)()

		if tc.wantErr {
			if _, ok := msg.(ErrorMsg); !ok {
				t.Errorf("HandleExport(%v) = %T, want ErrorMsg", tc.args, msg)
			}
			continue
		}

		exp, ok := msg.(ExportConversationMsg)
		if !ok {
			t.Fatalf("HandleExport(%v) = %T, want ExportConversationMsg", tc.args, msg)
		}
		if exp.Format != tc.wantFormat {
			t.Errorf("HandleExport(%v).Format = %q, want %q", tc.args, exp.Format, tc.wantFormat)
		}
	}
}

func TestHandleExport_DirOverride(t *testing.T) {
	msg := HandleExport(nil, []string{"json", "/tmp/out"})()

	exp, ok := msg.(ExportConversationMsg)
	if !ok {
		t.Fatalf("expected ExportConversationMsg, got %T", msg)
	}
	if exp.Dir != "/tmp/out" {
		t.Errorf("Dir = %q, want %q", exp.Dir, "/tmp/out")
	}
}

func TestHandleSave_Title(t *testing.T) {
	msg := HandleSave(nil, []string{"my", "session"})()

	save, ok := msg.(SaveConversationMsg)
	if !ok {
		t.Fatalf("expected SaveConversationMsg, got %T", msg)
	}
	if save.Title != "my session" {
		t.Errorf("Title = %q, want %q", save.Title, "my session")
	}
}

func TestHandleSpeed(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	// Numeric speed updates config and reports the new rate
	msg := HandleSpeed(ctx, []string{"60"})()
	speed, ok := msg.(TypingSpeedMsg)
	if !ok {
		t.Fatalf("expected TypingSpeedMsg, got %T", msg)
	}
	if speed.Speed != 60 || speed.Instant {
		t.Errorf("TypingSpeedMsg = %+v, want Speed=60 Instant=false", speed)
	}
	if cfg.Typing.Speed != 60 {
		t.Errorf("config speed = %d, want 60", cfg.Typing.Speed)
	}

	// Instant flips reduced motion on
	msg = HandleSpeed(ctx, []string{"instant"})()
	speed, ok = msg.(TypingSpeedMsg)
	if !ok {
		t.Fatalf("expected TypingSpeedMsg, got %T", msg)
	}
	if !speed.Instant {
		t.Error("TypingSpeedMsg.Instant should be true")
	}
	if !cfg.Typing.ReducedMotion {
		t.Error("config reduced motion should be true")
	}

	// Out-of-range and junk are rejected
	for _, bad := range []string{"0", "121", "-5", "warp"} {
		msg = HandleSpeed(ctx, []string{bad})()
		if _, ok := msg.(ErrorMsg); !ok {
			t.Errorf("HandleSpeed(%q) = %T, want ErrorMsg", bad, msg)
		}
	}
}

func TestHandleThinking_Toggle(t *testing.T) {
	cfg := config.Default()
	cfg.Thinking.Visible = true
	ctx := NewContext(cfg, nil, nil, nil, nil)

	// No argument flips the current setting
	msg := HandleThinking(ctx, nil)()
	toggle, ok := msg.(ToggleThinkingMsg)
	if !ok {
		t.Fatalf("expected ToggleThinkingMsg, got %T", msg)
	}
	if toggle.Visible {
		t.Error("toggle from visible should hide the panel")
	}
	if cfg.Thinking.Visible {
		t.Error("config should record the hidden state")
	}

	// Explicit on
	msg = HandleThinking(ctx, []string{"on"})()
	toggle = msg.(ToggleThinkingMsg)
	if !toggle.Visible {
		t.Error("explicit on should show the panel")
	}

	// Junk argument rejected
	msg = HandleThinking(ctx, []string{"sideways"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg, got %T", msg)
	}
}

func TestHandleSource(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	// Network without an endpoint is refused
	msg := HandleSource(ctx, []string{"network"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("network with no endpoint should error, got %T", msg)
	}

	// With an endpoint it switches
	cfg.Chat.EndpointURL = "http://localhost:9090/chat"
	msg = HandleSource(ctx, []string{"network"})()
	sw, ok := msg.(SourceSwitchMsg)
	if !ok {
		t.Fatalf("expected SourceSwitchMsg, got %T", msg)
	}
	if sw.Source != "network" {
		t.Errorf("Source = %q, want network", sw.Source)
	}
	if cfg.Chat.Source != "network" {
		t.Errorf("config source = %q, want network", cfg.Chat.Source)
	}

	// Back to simulated always works
	msg = HandleSource(ctx, []string{"simulated"})()
	if _, ok := msg.(SourceSwitchMsg); !ok {
		t.Errorf("expected SourceSwitchMsg, got %T", msg)
	}

	// Unknown source rejected
	msg = HandleSource(ctx, []string{"telepathy"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg, got %T", msg)
	}
}

func TestHandleTheme(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	msg := HandleTheme(ctx, []string{"light"})()
	theme, ok := msg.(ThemeChangedMsg)
	if !ok {
		t.Fatalf("expected ThemeChangedMsg, got %T", msg)
	}
	if theme.Theme != "light" {
		t.Errorf("Theme = %q, want light", theme.Theme)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("config theme = %q, want light", cfg.UI.Theme)
	}

	msg = HandleTheme(ctx, []string{"neon"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg, got %T", msg)
	}
}

func TestHandleDoc_Validation(t *testing.T) {
	// Too few arguments
	msg := HandleDoc(nil, []string{"save"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg for missing ref, got %T", msg)
	}

	// Unknown action
	msg = HandleDoc(nil, []string{"frobnicate", "x"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg for unknown action, got %T", msg)
	}

	// Save passes the name through; content comes from the app
	msg = HandleDoc(nil, []string{"save", "meeting", "notes"})()
	save, ok := msg.(SaveDocumentMsg)
	if !ok {
		t.Fatalf("expected SaveDocumentMsg, got %T", msg)
	}
	if save.Name != "meeting notes" {
		t.Errorf("Name = %q, want %q", save.Name, "meeting notes")
	}
}

func TestHandleSearch_RequiresQuery(t *testing.T) {
	msg := HandleSearch(nil, nil)()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg, got %T", msg)
	}
}

func TestHandleConfig_GetSet(t *testing.T) {
	cfg := config.Default()
	ctx := NewContext(cfg, nil, nil, nil, nil)

	// Get a known key
	msg := HandleConfig(ctx, []string{"typing.speed"})()
	show, ok := msg.(ShowConfigMsg)
	if !ok {
		t.Fatalf("expected ShowConfigMsg, got %T", msg)
	}
	if show.Key != "typing.speed" {
		t.Errorf("Key = %q, want typing.speed", show.Key)
	}

	// Set a key
	msg = HandleConfig(ctx, []string{"typing.speed", "45"})()
	update, ok := msg.(ConfigUpdateMsg)
	if !ok {
		t.Fatalf("expected ConfigUpdateMsg, got %T", msg)
	}
	if update.Error != nil {
		t.Fatalf("unexpected error: %v", update.Error)
	}
	if cfg.Typing.Speed != 45 {
		t.Errorf("config speed = %d, want 45", cfg.Typing.Speed)
	}

	// Unknown key surfaces an error
	msg = HandleConfig(ctx, []string{"no.such.key"})()
	if _, ok := msg.(ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg, got %T", msg)
	}
}

func TestConfigKeys(t *testing.T) {
	keys := ConfigKeys()
	if len(keys) == 0 {
		t.Fatal("ConfigKeys() should not be empty")
	}

	want := map[string]bool{
		"typing.speed": false,
		"chat.source":  false,
		"ui.theme":     false,
	}
	for _, k := range keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("ConfigKeys() missing %q", k)
		}
	}
}

// =============================================================================
// HELP TEXT TESTS
// =============================================================================

func TestGenerateHelpText(t *testing.T) {
	r := NewRegistry()

	// Quick help is the default
	quick := GenerateHelpText(r, "")
	if !containsStr(quick, "/help") || !containsStr(quick, "/quit") {
		t.Error("quick help should mention essential commands")
	}

	// Full help lists every visible command
	full := GenerateHelpText(r, "all")
	for _, name := range []string{"/share", "/export", "/sessions", "/doc", "/speed"} {
		if !containsStr(full, name) {
			t.Errorf("full help should mention %s", name)
		}
	}

	// Category help filters
	conv := GenerateHelpText(r, "conversation")
	if !containsStr(conv, "/save") {
		t.Error("conversation help should mention /save")
	}
	if containsStr(conv, "/theme") {
		t.Error("conversation help should not mention /theme")
	}
}

// =============================================================================
// COMPLETION TYPE TESTS
// =============================================================================

func TestCompletion_Fields(t *testing.T) {
	c := Completion{
		Value:       "/help",
		Display:     "/help - Show help",
		Description: "Show help and available commands",
		Score:       100,
		IsCurrent:   true,
	}

	if c.Value != "/help" {
		t.Error("Completion.Value not set correctly")
	}

	if c.Score != 100 {
		t.Error("Completion.Score not set correctly")
	}

	if !c.IsCurrent {
		t.Error("Completion.IsCurrent not set correctly")
	}
}

// =============================================================================
// COMMAND DEFINITION TESTS
// =============================================================================

func TestCommand_Fields(t *testing.T) {
	cmd := &Command{
		Name:        "/test",
		Aliases:     []string{"/t", "/tst"},
		Description: "Test command",
		Usage:       "/test <arg>",
		Category:    "Testing",
		Hidden:      false,
		Args: []ArgDef{
			{Name: "arg", Required: true, Type: ArgTypeString, Description: "Test argument"},
		},
	}

	if cmd.Name != "/test" {
		t.Error("Command.Name not set correctly")
	}

	if len(cmd.Aliases) != 2 {
		t.Error("Command.Aliases not set correctly")
	}

	if cmd.Category != "Testing" {
		t.Error("Command.Category not set correctly")
	}

	if len(cmd.Args) != 1 {
		t.Error("Command.Args not set correctly")
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func containsStr(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (haystack == needle ||
		len(haystack) > len(needle) && (haystack[:len(needle)] == needle ||
			containsStr(haystack[1:], needle)))
}
