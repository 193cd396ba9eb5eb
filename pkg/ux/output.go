// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the subsetsum CLI.
package ux

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// Printer
// =============================================================================

// Printer writes CLI output to a writer.
//
// # Description
//
// A styled Printer renders icons, colors and boxes. A plain Printer writes
// line-oriented text with "OK:", "WARN:" and "ERROR:" prefixes, suitable
// for pipes and scripts.
type Printer struct {
	out    io.Writer
	styled bool
}

// NewPrinter returns a Printer that styles output only when out is a
// terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, styled: IsTerminal(out)}
}

// NewPlainPrinter returns a Printer that never styles output.
func NewPlainPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Styled reports whether the printer renders styles.
func (p *Printer) Styled() bool {
	return p.styled
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Title prints a styled title. Plain printers skip it.
func (p *Printer) Title(text string) {
	if !p.styled {
		return
	}
	fmt.Fprintln(p.out, Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	if !p.styled {
		fmt.Fprintf(p.out, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	if !p.styled {
		fmt.Fprintf(p.out, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message
func (p *Printer) Error(text string) {
	if !p.styled {
		fmt.Fprintf(p.out, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational message
func (p *Printer) Info(text string) {
	if !p.styled {
		fmt.Fprintln(p.out, text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Box prints text in a rounded box
func (p *Printer) Box(title, content string) {
	if !p.styled {
		fmt.Fprintf(p.out, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.out, Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
}

// =============================================================================
// Result Rendering
// =============================================================================

// Matches prints one line per matching subset.
//
// # Description
//
// Plain output is tab separated: the 1-based match number, the subset in
// bracket notation, and the source indices. Styled output bullets each
// subset and mutes the indices.
func (p *Printer) Matches(matches []subsetsum.SubsetSum) {
	for i, m := range matches {
		subset := FormatInts(m.Elements)
		indices := FormatInts(m.Indices)
		if !p.styled {
			fmt.Fprintf(p.out, "%d\t%s\t%s\n", i+1, subset, indices)
			continue
		}
		fmt.Fprintf(p.out, "%s %s %s\n",
			IconBullet.Render(),
			Styles.Highlight.Render(subset),
			Styles.Muted.Render("indices "+indices),
		)
	}
}

// Summary prints match and enumeration counts for a result.
func (p *Printer) Summary(res subsetsum.Result, elapsed time.Duration) {
	s := res.Stats
	if !p.styled {
		fmt.Fprintf(p.out, "SUMMARY: strategy=%s matches=%d elements=%d iterations=%d elapsed=%s\n",
			res.Strategy, len(res.Matches), s.Elements, s.Iterations, elapsed.Round(time.Microsecond))
		return
	}
	fmt.Fprintf(p.out, "\n%s %s  %s %s  %s %s  %s\n",
		Styles.Success.Render(fmt.Sprintf("%d", len(res.Matches))), Styles.Muted.Render("matches"),
		Styles.Bold.Render(fmt.Sprintf("%d", s.Elements)), Styles.Muted.Render("elements"),
		Styles.Bold.Render(fmt.Sprintf("%d", s.Iterations)), Styles.Muted.Render("iterations"),
		Styles.Muted.Render(string(res.Strategy)+" "+elapsed.Round(time.Microsecond).String()),
	)
}

// FormatInts renders values in bracket notation, e.g. "[1, -2, 3]".
func FormatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
