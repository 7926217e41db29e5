// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// textSeparator divides messages in plain-text output.
const textSeparator = "----------------------------------------"

// TextExporter exports sessions to plain text.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain-text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a session to plain text.
func (e *TextExporter) Export(sess *model.Session) ([]byte, error) {
	if err := validateSession(sess); err != nil {
		return nil, err
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString(sess.Title + "\n")
		sb.WriteString(fmt.Sprintf("Date: %s\n", formatTimestamp(sess.Timestamp)))
		sb.WriteString(fmt.Sprintf("Messages: %d\n", len(sess.Messages)))
		sb.WriteString(textSeparator + "\n\n")
	}

	for i, msg := range sess.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("%s %s\n", roleLabel(msg.Role), formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(roleLabel(msg.Role) + "\n")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
		if i < len(sess.Messages)-1 {
			sb.WriteString("\n" + textSeparator + "\n\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nExported from parley on %s\n", time.Now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
