// Package cmd implements the fitrack CLI commands.
package cmd

import (
	"os"
	"strings"

	"github.com/theirongolddev/fitrack/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagState     string
	flagEphemeral bool
	flagCurrency  string
	flagEnvFile   string
	flagQuiet     bool
	flagVerbose   bool
	flagLogJSON   bool
)

// appCfg is the loaded configuration with flag overrides applied.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "fitrack",
	Short: "Live financial independence tracker",
	Long: "Track interest-bearing accounts compounding in real time, your progress toward a\n" +
		"financial independence goal and the milestones you cross on the way.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runShow,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagState, "state", "s", "", "State database path (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep state in memory only; nothing is written to disk")
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "Money format: brl, usd or eur (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Read environment overrides from this file if it exists")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON")
}

// prepare loads .env, the config file and environment overrides, applies
// flag overrides and configures logging. Flags win over everything.
func prepare(_ *cobra.Command, _ []string) error {
	configureLogging()

	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagState != "" {
		cfg.General.StatePath = flagState
	}
	if flagCurrency != "" {
		cfg.Appearance.Currency = strings.ToLower(flagCurrency)
	}
	appCfg = cfg
	return nil
}

func configureLogging() {
	log.SetOutput(os.Stderr)
	switch {
	case flagVerbose:
		log.SetLevel(log.DebugLevel)
	case flagQuiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if flagLogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
