package cmd

import (
	"fmt"

	"github.com/theirongolddev/fitrack/internal/config"
	"github.com/theirongolddev/fitrack/internal/tui"
	"github.com/theirongolddev/fitrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	// Log lines would tear the alternate screen.
	if !flagVerbose {
		log.SetLevel(log.ErrorLevel)
	}

	if err := s.eng.Start(cmd.Context()); err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Engine:     s.eng,
		Milestones: s.store,
		Config:     appCfg,
		FirstRun:   !config.Exists(),
		Log:        log.NewEntry(log.StandardLogger()),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
