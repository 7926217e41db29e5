// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the parley TUI.

This package defines the color palette, component styles, and animation
primitives used throughout the application. All colors use Lip Gloss
AdaptiveColor so every style resolves correctly on both light and dark
terminals.

# Color System (colors.go)

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for prompts, commands, and user highlights
  - Emerald - Success states
  - Amber - Warnings and pending states
  - Rose - Errors and failed thinking steps

Surface and text colors are layered tokens (Surface, SurfaceDim, Overlay,
TextPrimary, TextSecondary, TextMuted) rather than raw hex values, so
components never hardcode a color.

# Theme (theme.go)

Theme aggregates every component style in one struct. Build one with
NewTheme for terminal auto-detection, or NewThemeWithMode to honor the
configured "dark"/"light"/"auto" preference. Components receive the theme
by pointer and never construct styles themselves.

# Animations (animations.go)

Spinner frame sets, progress bar rendering, and the typing cursor live
here. All frames are ASCII-only so they degrade cleanly on limited
terminals, and every animation has a reduced-motion fallback.

ACCESSIBILITY: status rendering always pairs color with a shape indicator
([OK], [X], [!], [i]) so state is legible without color vision.
*/
package styles
