package cmd

import (
	"fmt"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/finance"

	"github.com/spf13/cobra"
)

var earningsCmd = &cobra.Command{
	Use:   "earnings",
	Short: "Real earnings and contributions broken down by period",
	RunE:  runEarnings,
}

func init() {
	rootCmd.AddCommand(earningsCmd)
}

func runEarnings(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.eng.Snapshot()
	cur := currency()
	e, c := snap.Earnings, snap.Contributions

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EARNINGS  inflation %s", finance.FormatPercent(snap.Portfolio.InflationPct, 2))))
	fmt.Println()

	periods := []struct {
		name string
		v    float64
	}{
		{"Second", e.PerSecond},
		{"Minute", e.PerMinute},
		{"Hour", e.PerHour},
		{"Day", e.PerDay},
		{"Week", e.PerWeek},
		{"Month", e.PerMonth},
		{"Year", e.PerYear},
	}
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		amount := cli.Money(p.v, cur)
		if p.name == "Second" {
			amount = cli.Rate(p.v, cur)
		}
		contrib := ""
		switch p.name {
		case "Month":
			contrib = cli.Money(c.PerMonth, cur)
		case "Year":
			contrib = cli.Money(c.PerYear, cur)
		}
		rows = append(rows, []string{p.name, amount, contrib})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Per", "Earnings", "Contribution"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println(cli.RenderKV("Earned today", cli.Money(snap.EarnedToday, cur), 14))
	fmt.Println()
	return nil
}
