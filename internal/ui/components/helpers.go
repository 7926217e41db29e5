// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import "time"

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// toStr converts an integer to a string without using fmt package.
func toStr(n int) string {
	if n == 0 {
		return "0"
	}

	if n == -9223372036854775808 { // math.MinInt64
		return "-9223372036854775808"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}

	if negative {
		return "-" + string(digits)
	}
	return string(digits)
}

// pad2 renders n as two digits, zero-padded. Used for clock display.
func pad2(n int) string {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return "0" + toStr(n)
	}
	return toStr(n)
}

// fmtNumber formats a number with thousand separators.
func fmtNumber(n int) string {
	// Handle math.MinInt64 specially since -math.MinInt64 overflows
	if n == -9223372036854775808 {
		return "-9,223,372,036,854,775,808"
	}

	if n < 0 {
		return "-" + fmtNumber(-n)
	}

	if n < 1000 {
		return toStr(n)
	}

	s := toStr(n)
	result := ""
	count := 0

	for i := len(s) - 1; i >= 0; i-- {
		if count > 0 && count%3 == 0 {
			result = "," + result
		}
		result = string(s[i]) + result
		count++
	}

	return result
}

// fmtPercent formats a percentage with no decimals, e.g. "42%".
func fmtPercent(p float64) string {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	// Add 0.5 for proper rounding
	return toStr(int(p+0.5)) + "%"
}

// fmtClock formats a wall-clock time as "15:04" for status display.
func fmtClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return pad2(t.Hour()) + ":" + pad2(t.Minute())
}

// fmtElapsed formats a duration as a compact elapsed-time string:
// "12s", "1m 02s", "1h 05m".
func fmtElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d.Seconds())
	if seconds < 60 {
		return toStr(seconds) + "s"
	}
	minutes := seconds / 60
	secs := seconds % 60
	if minutes < 60 {
		return toStr(minutes) + "m " + pad2(secs) + "s"
	}
	hours := minutes / 60
	mins := minutes % 60
	return toStr(hours) + "h " + pad2(mins) + "m"
}
