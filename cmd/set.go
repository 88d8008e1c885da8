package cmd

import (
	"fmt"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"

	"github.com/spf13/cobra"
)

var (
	flagGoal         string
	flagInflation    string
	flagContribution string
)

var setCmd = &cobra.Command{
	Use:     "set",
	Short:   "Change the goal, inflation or monthly contribution",
	Example: "  fitrack set --goal 2.000.000 --inflation 4,2\n  fitrack set --contribution 7500",
	RunE:    runSet,
}

func init() {
	setCmd.Flags().StringVar(&flagGoal, "goal", "", "Financial independence goal")
	setCmd.Flags().StringVar(&flagInflation, "inflation", "", "Annual inflation in percent")
	setCmd.Flags().StringVar(&flagContribution, "contribution", "", "Monthly contribution")
	setCmd.MarkFlagsOneRequired("goal", "inflation", "contribution")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, _ []string) error {
	type change struct {
		flag  string
		value *string
		apply func(*engine.Engine, float64) error
	}
	changes := []change{
		{"goal", &flagGoal, (*engine.Engine).SetGoal},
		{"inflation", &flagInflation, (*engine.Engine).SetInflation},
		{"contribution", &flagContribution, (*engine.Engine).SetContribution},
	}

	s, err := mutate(cmd.Context(), func(eng *engine.Engine) error {
		for _, c := range changes {
			if !cmd.Flags().Changed(c.flag) {
				continue
			}
			v, err := finance.ParseAmount(*c.value)
			if err != nil {
				return fmt.Errorf("--%s: %w", c.flag, err)
			}
			if err := c.apply(eng, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer s.Close()

	p := s.eng.Snapshot().Portfolio
	cur := currency()
	fmt.Println(cli.RenderKV("Goal", cli.Money(p.Goal, cur), 14))
	fmt.Println(cli.RenderKV("Inflation", finance.FormatPercent(p.InflationPct, 2), 14))
	fmt.Println(cli.RenderKV("Contribution", cli.Money(p.MonthlyContribution, cur)+" / month", 14))
	return nil
}
