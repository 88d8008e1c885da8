package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine headless until interrupted",
	Long: "Ticks the portfolio, sends milestone and reminder notifications and persists\n" +
		"state until SIGINT or SIGTERM, then writes a final save.",
	RunE: runHeadless,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runHeadless(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cur := currency()
	onMilestone := func(ev engine.Event) {
		fmt.Printf("  %s milestone: %s of the goal (aggregate %s)\n",
			ev.At.Local().Format("15:04:05"),
			finance.FormatPercent(ev.Band, 0),
			cli.Money(ev.Aggregate, cur))
	}
	if err := s.eng.Bus().Subscribe(engine.TopicMilestone, onMilestone); err != nil {
		return fmt.Errorf("subscribing to milestones: %w", err)
	}
	defer func() { _ = s.eng.Bus().Unsubscribe(engine.TopicMilestone, onMilestone) }()

	if !flagQuiet {
		snap := s.eng.Snapshot()
		fmt.Printf("  Tracking %d account(s), %s toward %s. Ctrl+C to stop.\n",
			len(snap.Portfolio.Accounts),
			finance.FormatPercent(snap.Progress, 2),
			cli.Money(snap.Portfolio.Goal, cur))
	}

	if err := s.eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if !flagQuiet {
		fmt.Printf("  Stopped. Final aggregate %s\n", cli.Money(s.eng.Snapshot().Aggregate, cur))
	}
	return nil
}
