package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stevemurr/whiskers-api/health"
)

func newStatusCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe the configured database and print the status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unknown output format %q (supported: json, yaml)", output)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg)

			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			report := health.Probe(cmd.Context(), st, health.Options{
				DatabaseURLSet: cfg.HasDatabaseURL(),
				Timeout:        cfg.ProbeTimeout,
			})
			return writeReport(cmd.OutOrStdout(), report, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func writeReport(w io.Writer, report health.Report, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
