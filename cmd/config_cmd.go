package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fitrack/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    State database: %s\n", cfg.ResolvedStatePath())
	fmt.Printf("    Tick interval:  %s\n", cfg.TickInterval())
	fmt.Printf("    Save throttle:  %s\n", cfg.SaveThrottle())
	fmt.Println()

	fmt.Println("  [Notifications]")
	fmt.Printf("    Enabled:        %v\n", cfg.Notifications.Enabled)
	if len(cfg.Notifications.Command) > 0 {
		fmt.Printf("    Command:        %s\n", strings.Join(cfg.Notifications.Command, " "))
	} else {
		fmt.Println("    Command:        none (log only)")
	}
	if h := cfg.Notifications.DailyReminderHour; h >= 0 {
		fmt.Printf("    Daily reminder: %02d:00\n", h)
	} else {
		fmt.Println("    Daily reminder: off")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Currency: %s\n", strings.ToUpper(currency().Code))
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: %s\n", cfg.Daemon.Addr)
	fmt.Println()

	fmt.Println("  Run `fitrack setup` to reconfigure.")
	return nil
}
