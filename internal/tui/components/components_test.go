package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/theirongolddev/fitrack/internal/tui/theme"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range Tabs {
		pos := 0
		for i := range Tabs {
			w := TabWidth(i, active)
			if got := TabAtX(pos+w/2, active); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := TabAtX(pos+50, active); got != -1 {
			t.Fatalf("past the last tab -> %d, want -1", got)
		}
	}
}

func TestRenderTabBar_MatchesTabWidths(t *testing.T) {
	for active := range Tabs {
		bar := ansi.Strip(RenderTabBar(active, 200))
		pos := 0
		for i, tab := range Tabs {
			idx := strings.Index(bar, tab.Name)
			if idx < 0 {
				t.Fatalf("tab %q missing from %q", tab.Name, bar)
			}
			if got := lipgloss.Width(bar[:idx]); got != pos+1 {
				t.Fatalf("active=%d tab %q starts at %d, want %d", active, tab.Name, got, pos+1)
			}
			pos += TabWidth(i, active) + 1
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('a') != 1 || TabIdxByKey('z') != -1 {
		t.Fatal("TabIdxByKey mismatch")
	}
}

func TestSparkline(t *testing.T) {
	got := ansi.Strip(Sparkline([]float64{1, 2, 3}, theme.Active.Gain))
	if got != "▁▄█" {
		t.Fatalf("Sparkline = %q", got)
	}
	if flat := ansi.Strip(Sparkline([]float64{5, 5}, theme.Active.Gain)); flat != "▁▁" {
		t.Fatalf("flat Sparkline = %q", flat)
	}
	if Sparkline(nil, theme.Active.Gain) != "" {
		t.Fatal("empty Sparkline should be empty")
	}
}

func TestShareBar(t *testing.T) {
	got := ansi.Strip(ShareBar(0.5, 10, theme.Active.Accent))
	if got != "━━━━━─────  50.0%" {
		t.Fatalf("ShareBar = %q", got)
	}
}

func TestGoalBar_ClampsPercent(t *testing.T) {
	if got := ansi.Strip(GoalBar(140, 10)); !strings.HasSuffix(got, "100.00%") {
		t.Fatalf("GoalBar(140) = %q", got)
	}
	if got := ansi.Strip(GoalBar(-3, 10)); !strings.HasSuffix(got, "  0.00%") {
		t.Fatalf("GoalBar(-3) = %q", got)
	}
}

func TestMilestoneRuler(t *testing.T) {
	got := ansi.Strip(MilestoneRuler(10, 20))
	if lipgloss.Width(got) != 20 {
		t.Fatalf("ruler width = %d", lipgloss.Width(got))
	}
	if strings.Count(got, "▴") != 2 {
		t.Fatalf("lit markers in %q, want 2", got)
	}
	if strings.Count(got, "·") != 17 {
		t.Fatalf("dim markers in %q, want 17", got)
	}
}

func TestColorForPct(t *testing.T) {
	th := theme.Active
	if ColorForPct(10) != th.Warn || ColorForPct(50) != th.Goal || ColorForPct(80) != th.Gain {
		t.Fatal("ColorForPct bands mismatch")
	}
}
