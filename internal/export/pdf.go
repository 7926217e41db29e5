// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// PDF EXPORTER
// =============================================================================

// PDF layout, in millimeters on A4 portrait.
const (
	pdfMargin       = 15.0
	pdfLineHeight   = 5.5
	pdfFooterOffset = -15.0
)

// PDFExporter exports sessions to a paginated PDF. Long lines wrap at the
// page width and pages break automatically; the footer carries page counts.
type PDFExporter struct {
	options *Options
}

// NewPDFExporter creates a new PDF exporter.
func NewPDFExporter(opts *Options) *PDFExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &PDFExporter{options: opts}
}

// Export renders a session to PDF bytes.
func (e *PDFExporter) Export(sess *model.Session) ([]byte, error) {
	if err := validateSession(sess); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(sess.Title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(pdfFooterOffset)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// UNICODE: core PDF fonts are cp1252; the translator maps what it can
	// and substitutes the rest instead of emitting broken glyphs.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title block
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 8, tr(sess.Title), "", "L", false)

	if e.options.IncludeMetadata {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(110, 110, 110)
		meta := fmt.Sprintf("%s - %d messages", formatTimestamp(sess.Timestamp), len(sess.Messages))
		pdf.MultiCell(0, 5, tr(meta), "", "L", false)
	}
	pdf.Ln(4)

	// Messages
	for _, msg := range sess.Messages {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		label := roleLabel(msg.Role)
		if e.options.IncludeTimestamps {
			label = fmt.Sprintf("%s  %s", label, formatShortTimestamp(msg.Timestamp))
		}
		pdf.MultiCell(0, pdfLineHeight, tr(label), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(0, pdfLineHeight, tr(msg.Content), "", "L", false)
		pdf.Ln(3)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("pdf rendering: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return ".pdf"
}

// MimeType returns the MIME type for PDF.
func (e *PDFExporter) MimeType() string {
	return "application/pdf"
}
