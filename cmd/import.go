package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/model"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagImportFormat string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the portfolio with an exported file",
	Long: "Reads a JSON or YAML portfolio, or a CSV list of accounts, validates it and\n" +
		"saves it immediately. A CSV import keeps the goal, inflation and contribution.\n" +
		"Consent must already be accepted and is never taken from the file.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&flagImportFormat, "format", "f", "", "Input format: json, yaml or csv (default from extension)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	format := flagImportFormat
	if format == "" {
		format = formatFromExt(args[0])
	}

	var repaired []string
	s, err := mutate(cmd.Context(), func(eng *engine.Engine) error {
		snap := eng.Snapshot()
		p, fixes, err := decodeImport(data, format, snap.Portfolio, snap.Portfolio.DayStart)
		if err != nil {
			return err
		}
		repaired = fixes
		_, err = eng.Replace(cmd.Context(), p)
		return err
	})
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.eng.Snapshot()
	fmt.Printf("  Imported %d account(s) from %s\n", len(snap.Portfolio.Accounts), args[0])
	for _, f := range repaired {
		fmt.Printf("  filled missing field %q with its default\n", f)
	}
	return nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	default:
		return "json"
	}
}

// decodeImport turns an exported file into a portfolio. JSON and YAML go
// through the same tolerant decoder as the stored record, so missing fields
// take their defaults. CSV replaces only the accounts of base.
func decodeImport(data []byte, format string, base model.Portfolio, dayStart time.Time) (model.Portfolio, []string, error) {
	switch strings.ToLower(format) {
	case "json":
	case "yaml", "yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return model.Portfolio{}, nil, fmt.Errorf("parse yaml: %w", err)
		}
		js, err := json.Marshal(raw)
		if err != nil {
			return model.Portfolio{}, nil, fmt.Errorf("convert yaml: %w", err)
		}
		data = js
	case "csv":
		var accounts []model.Account
		if err := gocsv.Unmarshal(bytes.NewReader(data), &accounts); err != nil {
			return model.Portfolio{}, nil, fmt.Errorf("parse csv: %w", err)
		}
		for i := range accounts {
			a := &accounts[i]
			if a.ID == uuid.Nil {
				a.ID = uuid.New()
			}
			if a.Balance <= 0 {
				a.Balance = a.Principal
			}
		}
		p := base.Clone()
		p.Accounts = accounts
		p.RecomputePrincipal()
		return p, nil, nil
	default:
		return model.Portfolio{}, nil, fmt.Errorf("unknown format %q (want json, yaml or csv)", format)
	}

	p, rep, err := model.Decode(data, dayStart)
	if err != nil {
		return model.Portfolio{}, nil, err
	}
	return p, rep.SortedRepairs(), nil
}
