package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"

	"github.com/spf13/cobra"
)

var flagShowFormat string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the portfolio, goal progress and time to goal",
	RunE:  runShow,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, showCmd} {
		c.Flags().StringVarP(&flagShowFormat, "format", "f", "text", "Output format: text, json or yaml")
	}
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.eng.Snapshot()
	if flagShowFormat != "text" {
		return writeFormatted(os.Stdout, flagShowFormat, snap)
	}
	printSnapshot(snap)
	return nil
}

func printSnapshot(snap engine.Snapshot) {
	cur := currency()
	p := snap.Portfolio

	fmt.Println()
	fmt.Println(cli.RenderTitle("FITRACK  ·  FINANCIAL INDEPENDENCE"))
	fmt.Println()
	fmt.Println("  " + cli.RenderGoalBar(snap.Progress, p.Watermark, 40))
	fmt.Println()

	const lw = 18
	fmt.Println(cli.RenderKV("Aggregate", cli.Money(snap.Aggregate, cur), lw))
	fmt.Println(cli.RenderKV("Principal", cli.Money(p.TotalPrincipal, cur)+"  ("+cli.FormatDelta(snap.Aggregate, p.TotalPrincipal, cur)+")", lw))
	fmt.Println(cli.RenderKV("Goal", cli.Money(p.Goal, cur), lw))
	fmt.Println(cli.RenderKV("Time to goal", snap.TimeToGoalStr, lw))
	fmt.Println(cli.RenderKV("Earned today", cli.Money(snap.EarnedToday, cur), lw))
	fmt.Println(cli.RenderKV("Earnings / s", cli.Rate(snap.EarningsPerSecond, cur), lw))
	fmt.Println(cli.RenderKV("Contribution / s", cli.Rate(snap.ContributionPerSecond, cur), lw))
	fmt.Println(cli.RenderKV("Inflation", finance.FormatPercent(p.InflationPct, 2), lw))
	fmt.Println(cli.RenderKV("Next milestone", finance.FormatPercent(snap.NextMilestone, 0), lw))
	fmt.Println()

	fmt.Print(cli.RenderTable(accountsTable(snap)))

	if !snap.ConsentGiven {
		fmt.Println()
		fmt.Println(cli.RenderWarning("Read-only: run `fitrack consent show` to review the data terms."))
	}
	fmt.Println()
}

func accountsTable(snap engine.Snapshot) cli.Table {
	cur := currency()
	t := cli.Table{
		Title:   "Accounts",
		Headers: []string{"#", "Principal", "Balance", "Rate", "Earnings/s", "Per month"},
	}
	for i, a := range snap.Portfolio.Accounts {
		eps := a.EarningsPerSecond
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", i+1),
			cli.Money(a.Principal, cur),
			cli.Money(a.Balance, cur),
			finance.FormatPercent(a.RatePct, 2),
			cli.Rate(eps, cur),
			cli.Money(eps*finance.SecondsPerMonth, cur),
		})
	}
	if len(t.Rows) == 0 {
		t.Rows = append(t.Rows, []string{"-", "no accounts", "", "", "", ""})
	}
	return t
}
