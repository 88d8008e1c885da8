package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fitrack/internal/finance"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-80000, "-80,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(512); got != "512 B" {
		t.Errorf("FormatBytes(512) = %q", got)
	}
	if got := FormatBytes(1536); got != "1.5 KB" {
		t.Errorf("FormatBytes(1536) = %q", got)
	}
	if got := FormatBytes(3 << 20); got != "3.0 MB" {
		t.Errorf("FormatBytes(3MB) = %q", got)
	}
}

func TestMoneyAndRate(t *testing.T) {
	if got := Money(1234.5, finance.USD); got != "$1,234.50" {
		t.Errorf("Money = %q", got)
	}
	if got := Rate(0.00011371, finance.USD); got != "$0.000114" {
		t.Errorf("Rate = %q", got)
	}
	if got := FormatDelta(10, 12.5, finance.USD); got != "-$2.50" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatDelta(12.5, 10, finance.USD); got != "+$2.50" {
		t.Errorf("FormatDelta = %q", got)
	}
}

func TestRenderGoalBar(t *testing.T) {
	bar := RenderGoalBar(25, 0, 20)
	if !strings.Contains(bar, "25.00%") {
		t.Fatalf("missing percentage: %q", bar)
	}
	if n := strings.Count(bar, "█"); n != 5 {
		t.Fatalf("filled cells = %d, want 5", n)
	}

	full := RenderGoalBar(140, 100, 10)
	if !strings.Contains(full, "100.00%") || strings.Count(full, "█") != 10 {
		t.Fatalf("clamped bar wrong: %q", full)
	}

	marked := RenderGoalBar(10, 50, 10)
	if !strings.Contains(marked, "│") {
		t.Fatalf("watermark tick missing: %q", marked)
	}
}

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Time to goal", "∞"},
			{"Balance", "R$ 80.000,00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	w := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != w {
			t.Fatalf("line %d width %d, want %d:\n%s", i, lipgloss.Width(l), w, out)
		}
	}
}

func TestRenderKV(t *testing.T) {
	line := RenderKV("Goal", "R$ 1.000.000,00", 10)
	if !strings.HasPrefix(line, "  Goal") || !strings.HasSuffix(line, "R$ 1.000.000,00") {
		t.Fatalf("RenderKV = %q", line)
	}
}
