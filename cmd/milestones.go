package cmd

import (
	"fmt"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/finance"

	"github.com/spf13/cobra"
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List the goal milestones reached so far",
	RunE:  runMilestones,
}

func init() {
	rootCmd.AddCommand(milestonesCmd)
}

func runMilestones(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	ms, err := s.store.Milestones(cmd.Context())
	if err != nil {
		return err
	}
	snap := s.eng.Snapshot()

	t := cli.Table{
		Title:   "Milestones",
		Headers: []string{"Band", "Reached", "Amount"},
	}
	for _, m := range ms {
		t.Rows = append(t.Rows, []string{
			finance.FormatPercent(m.Band, 0),
			m.ReachedAt.Local().Format("2006-01-02 15:04"),
			cli.Money(snap.Portfolio.Goal*m.Band/100, currency()),
		})
	}
	if len(t.Rows) == 0 {
		t.Rows = append(t.Rows, []string{"-", "none yet", ""})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	fmt.Println()
	fmt.Println(cli.RenderKV("Next", finance.FormatPercent(snap.NextMilestone, 0)+" at "+
		cli.Money(snap.Portfolio.Goal*snap.NextMilestone/100, currency()), 8))
	fmt.Println()
	return nil
}
