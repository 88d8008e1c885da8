package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"

	"github.com/spf13/cobra"
)

var (
	flagPrincipal string
	flagRate      string
)

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"accounts", "acct"},
	Short:   "List and change the tracked accounts",
	RunE:    runAccountList,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with their live balances",
	RunE:  runAccountList,
}

var accountAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add an account",
	Example: "  fitrack account add --principal 25000 --rate 10.5",
	RunE:    runAccountAdd,
}

var accountEditCmd = &cobra.Command{
	Use:   "edit <n>",
	Short: "Change an account's principal and rate; its balance restarts from the principal",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountEdit,
}

var accountRemoveCmd = &cobra.Command{
	Use:     "remove <n>",
	Aliases: []string{"rm"},
	Short:   "Remove an account",
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountRemove,
}

func init() {
	for _, c := range []*cobra.Command{accountAddCmd, accountEditCmd} {
		c.Flags().StringVarP(&flagPrincipal, "principal", "p", "", "Initial amount")
		c.Flags().StringVarP(&flagRate, "rate", "r", "", "Annual nominal rate in percent")
	}
	_ = accountAddCmd.MarkFlagRequired("principal")
	_ = accountAddCmd.MarkFlagRequired("rate")

	accountCmd.AddCommand(accountListCmd, accountAddCmd, accountEditCmd, accountRemoveCmd)
	rootCmd.AddCommand(accountCmd)
}

func runAccountList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println()
	fmt.Print(cli.RenderTable(accountsTable(s.eng.Snapshot())))
	fmt.Println()
	return nil
}

func runAccountAdd(cmd *cobra.Command, _ []string) error {
	principal, rate, err := parseAccountFlags(cmd, 0, 0)
	if err != nil {
		return err
	}
	var idx int
	s, err := mutate(cmd.Context(), func(eng *engine.Engine) error {
		i, err := eng.AddAccount()
		if err != nil {
			return err
		}
		idx = i
		return eng.EditAccount(i, principal, rate)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("  Added account %d: %s at %s\n", idx+1, cli.Money(principal, currency()), finance.FormatPercent(rate, 2))
	return nil
}

func runAccountEdit(cmd *cobra.Command, args []string) error {
	idx, err := accountIndex(args[0])
	if err != nil {
		return err
	}
	var principal, rate float64
	s, err := mutate(cmd.Context(), func(eng *engine.Engine) error {
		accounts := eng.Snapshot().Portfolio.Accounts
		if idx >= len(accounts) {
			return fmt.Errorf("%w: %d", engine.ErrNoSuchAccount, idx+1)
		}
		cur := accounts[idx]
		var err error
		principal, rate, err = parseAccountFlags(cmd, cur.Principal, cur.RatePct)
		if err != nil {
			return err
		}
		return eng.EditAccount(idx, principal, rate)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("  Account %d is now %s at %s\n", idx+1, cli.Money(principal, currency()), finance.FormatPercent(rate, 2))
	return nil
}

func runAccountRemove(cmd *cobra.Command, args []string) error {
	idx, err := accountIndex(args[0])
	if err != nil {
		return err
	}
	s, err := mutate(cmd.Context(), func(eng *engine.Engine) error {
		return eng.RemoveAccount(idx)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("  Removed account %d\n", idx+1)
	return nil
}

// accountIndex converts a 1-based account number to an index.
func accountIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid account number %q", arg)
	}
	return n - 1, nil
}

// parseAccountFlags reads --principal and --rate, keeping the given values
// for flags that were not set.
func parseAccountFlags(cmd *cobra.Command, principal, rate float64) (float64, float64, error) {
	if cmd.Flags().Changed("principal") {
		v, err := finance.ParseAmount(flagPrincipal)
		if err != nil {
			return 0, 0, fmt.Errorf("--principal: %w", err)
		}
		principal = v
	}
	if cmd.Flags().Changed("rate") {
		v, err := finance.ParseAmount(flagRate)
		if err != nil {
			return 0, 0, fmt.Errorf("--rate: %w", err)
		}
		rate = v
	}
	return principal, rate, nil
}
