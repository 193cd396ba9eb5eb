// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
)

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Styled(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("expected rendered %q to contain the icon", icon)
		}
	}
}

func TestIcon_Render_Default(t *testing.T) {
	for _, icon := range []Icon{IconArrow, IconBullet} {
		if result := icon.Render(); result != string(icon) {
			t.Errorf("expected %q for %q, got %q", string(icon), icon, result)
		}
	}
}

// =============================================================================
// Printer Tests
// =============================================================================

func TestNewPrinter_BufferIsNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	if NewPrinter(&buf).Styled() {
		t.Error("expected a buffer to get a plain printer")
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Error("expected a regular file not to be a terminal")
	}
}

func TestPlainPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Title("ignored")
	p.Success("done")
	p.Warning("careful")
	p.Error("failed")
	p.Info("note")
	p.Box("Input", "[1, 2]")

	want := "OK: done\nWARN: careful\nERROR: failed\nnote\nInput: [1, 2]\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStyledPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, styled: true}

	p.Title("Subset Sum")
	p.Success("done")
	p.Box("Input", "[1, 2]")

	out := buf.String()
	for _, want := range []string{"Subset Sum", string(IconSuccess), "done", "Input", "[1, 2]", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

// =============================================================================
// Result Rendering Tests
// =============================================================================

func TestPlainPrinter_Matches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Matches([]subsetsum.SubsetSum{
		{Elements: []int{2, 3}, Indices: []int{1, 2}, Sum: 5},
		{Elements: []int{}, Indices: []int{}, Sum: 0},
	})

	want := "1\t[2, 3]\t[1, 2]\n2\t[]\t[]\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlainPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Summary(subsetsum.Result{
		Matches:  []subsetsum.SubsetSum{{Elements: []int{5}, Indices: []int{0}, Sum: 5}},
		Strategy: subsetsum.StrategySplitSign,
		Stats:    subsetsum.Stats{Elements: 3, Iterations: 12},
	}, 1500*time.Microsecond)

	want := "SUMMARY: strategy=split_sign matches=1 elements=3 iterations=12 elapsed=1.5ms\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatInts(t *testing.T) {
	tests := []struct {
		in   []int
		want string
	}{
		{nil, "[]"},
		{[]int{7}, "[7]"},
		{[]int{1, -2, 3}, "[1, -2, 3]"},
	}
	for _, tt := range tests {
		if got := FormatInts(tt.in); got != tt.want {
			t.Errorf("FormatInts(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
