package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/fitrack/internal/store"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagExportFormat     string
	flagExportOutput     string
	flagExportMilestones bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the portfolio or milestone history",
	Example: "  fitrack export -f yaml -o portfolio.yaml\n" +
		"  fitrack export -f csv > accounts.csv\n" +
		"  fitrack export --milestones -f csv",
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "json", "Output format: json, yaml or csv")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&flagExportMilestones, "milestones", false, "Export the reached milestone history")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	var out io.Writer = os.Stdout
	if flagExportOutput != "" {
		f, err := os.Create(flagExportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", flagExportOutput, err)
		}
		defer f.Close()
		out = f
	}

	format := strings.ToLower(flagExportFormat)
	if flagExportMilestones {
		ms, err := s.store.Milestones(cmd.Context())
		if err != nil {
			return err
		}
		if ms == nil {
			ms = []store.Milestone{}
		}
		if format == "csv" {
			return gocsv.Marshal(ms, out)
		}
		return writeFormatted(out, format, ms)
	}

	p := s.eng.Snapshot().Portfolio
	if format == "csv" {
		return gocsv.Marshal(p.Accounts, out)
	}
	return writeFormatted(out, format, p)
}

// writeFormatted encodes v as indented JSON or YAML.
func writeFormatted(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
