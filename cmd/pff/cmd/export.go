/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/pff/pkg/config"
	"github.com/ssargent/pff/pkg/export"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Copy decoded events into a pebble store",
	Long: `Decode every event of a run and store its payloads, decompressed,
in a pebble database. Each export gets its own batch id.

Example:
  pff export /data/run_0042_ --out ./pff-export`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := cmd.Context().Value(configKey).(*config.Config)
		logger, _ := cmd.Context().Value(loggerKey).(*zap.Logger)

		out, _ := cmd.Flags().GetString("out")
		if out == "" && cfg != nil {
			out = cfg.Export.Dir
		}

		r, err := openReader(cmd, args)
		if err != nil {
			return err
		}
		defer r.Close()

		e, err := export.Open(out, logger)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.Export(cmd.Context(), r)
		if s != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "batch %s: %d files, %d events, %d items, %d bytes -> %s\n",
				s.Batch, s.Files, s.Events, s.Items, s.Bytes, out)
		}
		return err
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Export database directory (default export.dir from config)")
	rootCmd.AddCommand(exportCmd)
}
