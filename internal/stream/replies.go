// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"hash/fnv"
	"strings"
)

// =============================================================================
// CANNED REPLIES (SIMULATED MODE)
// =============================================================================

// Reply is one canned assistant response for the simulated source. ToolName,
// when non-empty, names the tool the thinking timeline shows while the reply
// streams.
type Reply struct {
	Text     string
	ToolName string
}

// ReplyFor picks the canned reply for a user message. Selection is
// deterministic: keyword buckets first, then a stable hash over the
// normalized message indexes the general pool, so replaying the same prompt
// always streams the same reply.
func ReplyFor(message string) Reply {
	norm := strings.ToLower(strings.TrimSpace(message))

	switch {
	case norm == "":
		return Reply{Text: "Say something and I will answer. Try /help to see what else I can do."}
	case containsAny(norm, "hello", "hi ", "hey"), norm == "hi":
		return Reply{Text: "Hello! I'm running in simulated mode, so every reply here is canned. " +
			"Switch with /source network when you have an endpoint, or just keep chatting to try the interface."}
	case containsAny(norm, "help", "what can you"):
		return Reply{Text: "I can hold a conversation, save it (/save), bring it back (/load), " +
			"export it as text, markdown, JSON or PDF (/export), and publish a read-only snapshot (/share). " +
			"Slash commands complete with Tab."}
	case containsAny(norm, "code", "function", "example", "snippet"):
		return Reply{
			ToolName: "formatter",
			Text: "Here is a small example:\n\n```go\nfunc greet(name string) string {\n" +
				"\tif name == \"\" {\n\t\tname = \"stranger\"\n\t}\n" +
				"\treturn \"hello, \" + name\n}\n```\n\n" +
				"The empty-name fallback keeps the output printable either way.",
		}
	case containsAny(norm, "thank", "thx"):
		return Reply{Text: "You're welcome. Anything else you want to try?"}
	}

	pool := generalReplies()
	return pool[hashIndex(norm, len(pool))]
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hashIndex maps s onto [0, n) with FNV-1a. Stable across runs, unlike
// map iteration or math/rand.
func hashIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(n))
}

// generalReplies is the fallback pool for prompts outside every bucket.
func generalReplies() []Reply {
	return []Reply{
		{Text: "That's a fair question. In simulated mode I answer from a fixed set of replies, " +
			"so treat this as a stand-in for the real thing: the streaming, the thinking steps, " +
			"and the typing speed all behave exactly as they would against a live endpoint."},
		{Text: "Let me think that through. The short version: it depends on what you are optimizing " +
			"for. The longer version would need a live endpoint; point chat.endpoint_url at one and " +
			"switch with /source network."},
		{Text: "Interesting. A few things worth noting:\n\n" +
			"- replies stream word by word, at the configured typing speed\n" +
			"- the thinking panel above traces what the assistant is doing\n" +
			"- Esc cancels a reply once the grace period has passed\n\n" +
			"All of it works the same in network mode."},
		{
			ToolName: "search",
			Text: "I checked what I have on that. Nothing definitive in simulated mode, but the " +
				"relevant pieces are the stream source, the reducer, and the typing renderer. " +
				"Each one is swappable without touching the others.",
		},
		{Text: "Good point. Keep in mind `/save` deduplicates by content, so saving the same " +
			"conversation twice updates one session instead of creating a copy."},
		{Text: "I don't have a strong answer for that one here. If you want real responses, " +
			"configure an endpoint and run /source network; everything else about this " +
			"conversation stays the same."},
	}
}
