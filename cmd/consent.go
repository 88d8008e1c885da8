package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/consent"

	"github.com/spf13/cobra"
)

var consentCmd = &cobra.Command{
	Use:   "consent",
	Short: "Review, accept or decline the local data terms",
	RunE:  runConsentShow,
}

var consentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the terms and whether they were accepted",
	RunE:  runConsentShow,
}

var consentAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept the terms and enable changes",
	RunE:  runConsentAccept,
}

var consentRejectCmd = &cobra.Command{
	Use:     "reject",
	Aliases: []string{"decline"},
	Short:   "Decline the terms; fitrack stays read-only",
	RunE:    runConsentReject,
}

func init() {
	consentCmd.AddCommand(consentShowCmd, consentAcceptCmd, consentRejectCmd)
	rootCmd.AddCommand(consentCmd)
}

func runConsentShow(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println()
	fmt.Println(cli.RenderTitle("DATA AND PRIVACY"))
	fmt.Println()
	fmt.Println(consent.Disclosure)
	fmt.Println()

	c := s.eng.Snapshot().Portfolio.Consent
	switch {
	case s.eng.ConsentGiven():
		status := "accepted"
		if c.At != nil {
			status += " " + c.At.Local().Format("2006-01-02 15:04")
		}
		fmt.Println(cli.RenderKV("Status", status, 12))
	case c.Given:
		fmt.Println(cli.RenderWarning("The terms changed since you accepted them. Run `fitrack consent accept`."))
	default:
		fmt.Println(cli.RenderKV("Status", "not accepted (read-only)", 12))
	}
	fmt.Println(cli.RenderDim("  fingerprint " + consent.Fingerprint()))
	fmt.Println()
	return nil
}

func runConsentAccept(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.eng.AcceptConsent(cmd.Context())
	if err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("save: %w", res.Err)
	}
	fmt.Println("  Terms accepted. Changes are enabled.")
	return nil
}

func runConsentReject(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.eng.RejectConsent(cmd.Context()); err != nil {
		return err
	}
	// The engine throttles this write; a one-shot command cannot wait for the window.
	if res, err := s.eng.ManualSave(cmd.Context()); err != nil || res.Err != nil {
		return fmt.Errorf("save: %w", errors.Join(err, res.Err))
	}
	fmt.Println("  Terms declined. fitrack stays read-only.")
	return nil
}
