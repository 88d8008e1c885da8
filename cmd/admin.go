package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/fitrack/internal/cli"

	"github.com/spf13/cobra"
)

var flagResetYes bool

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Maintenance commands for the state database",
}

var adminResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all stored data and start again from the example portfolio",
	RunE:  runAdminReset,
}

var adminQuotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show how much the state database holds",
	RunE:  runAdminQuota,
}

var adminSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the current state now, without validation",
	RunE:  runAdminSave,
}

func init() {
	adminResetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Do not ask for confirmation")
	adminCmd.AddCommand(adminResetCmd, adminQuotaCmd, adminSaveCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminReset(cmd *cobra.Command, _ []string) error {
	if !flagResetYes {
		fmt.Print("  This deletes every account, setting, milestone and the consent record. Type yes to continue: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
			return errors.New("reset cancelled")
		}
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.eng.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("  State reset. Consent must be accepted again before changes.")
	return nil
}

func runAdminQuota(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	q, err := s.eng.QuotaInfo(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderKV("Database", s.path, 12))
	fmt.Println(cli.RenderKV("In use", cli.FormatBytes(q.BytesInUse), 12))
	fmt.Println(cli.RenderKV("Keys", cli.FormatNumber(int64(q.Keys)), 12))
	fmt.Println(cli.RenderKV("Milestones", cli.FormatNumber(int64(q.Milestones)), 12))
	return nil
}

func runAdminSave(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.eng.ManualSave(cmd.Context())
	if err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("save: %w", res.Err)
	}
	fmt.Printf("  Wrote %s at %s\n", cli.FormatBytes(int64(res.Bytes)), res.At.Local().Format("15:04:05"))
	return nil
}
