package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/fitrack/internal/config"
	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	fmt.Println()
	fmt.Println("  Welcome to fitrack!")
	fmt.Println()

	cfg := promptSetup(bufio.NewReader(os.Stdin), os.Stdout, appCfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	appCfg = cfg

	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `fitrack consent show` next, then `fitrack tui`.")
	fmt.Println()
	return nil
}

// promptSetup walks through the numbered questions and returns cfg with the
// answers applied. An empty answer keeps the current value.
func promptSetup(r *bufio.Reader, w io.Writer, cfg config.Config) config.Config {
	ask := func() string {
		fmt.Fprint(w, "     > ")
		line, _ := r.ReadString('\n')
		fmt.Fprintln(w)
		return strings.TrimSpace(line)
	}

	// 1. Currency
	fmt.Fprintln(w, "  1. Currency")
	for i, c := range finance.Currencies {
		mark := ""
		if c.Code == finance.CurrencyByCode(cfg.Appearance.Currency).Code {
			mark = " [current]"
		}
		fmt.Fprintf(w, "     (%d) %s %s%s\n", i+1, strings.ToUpper(c.Code), c.Symbol, mark)
	}
	if n, ok := pick(ask(), len(finance.Currencies)); ok {
		cfg.Appearance.Currency = finance.Currencies[n].Code
	}

	// 2. Theme
	fmt.Fprintln(w, "  2. Color theme")
	names := theme.Names()
	for i, name := range names {
		mark := ""
		if name == theme.ByName(cfg.Appearance.Theme).Name {
			mark = " [current]"
		}
		fmt.Fprintf(w, "     (%d) %s%s\n", i+1, name, mark)
	}
	if n, ok := pick(ask(), len(names)); ok {
		cfg.Appearance.Theme = names[n]
	}

	// 3. Notifier command
	fmt.Fprintln(w, "  3. Notification command (optional)")
	fmt.Fprintln(w, "     e.g. notify-send {title} {body}; enter - to clear")
	if len(cfg.Notifications.Command) > 0 {
		fmt.Fprintf(w, "     Current: %s\n", strings.Join(cfg.Notifications.Command, " "))
	}
	switch cmdline := ask(); cmdline {
	case "":
	case "-":
		cfg.Notifications.Command = []string{}
	default:
		cfg.Notifications.Command = strings.Fields(cmdline)
	}

	// 4. Daily reminder
	fmt.Fprintln(w, "  4. Daily reminder hour, 0-23 (off to disable)")
	if h := cfg.Notifications.DailyReminderHour; h >= 0 {
		fmt.Fprintf(w, "     Current: %02d:00\n", h)
	}
	switch answer := strings.ToLower(ask()); answer {
	case "":
	case "off", "-", "no":
		cfg.Notifications.DailyReminderHour = -1
	default:
		if h, err := strconv.Atoi(answer); err == nil && h >= 0 && h <= 23 {
			cfg.Notifications.DailyReminderHour = h
		} else {
			fmt.Fprintln(w, "     Not an hour; keeping the current setting.")
		}
	}

	return cfg
}

// pick parses a 1-based menu choice into an index.
func pick(answer string, n int) (int, bool) {
	i, err := strconv.Atoi(answer)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}
