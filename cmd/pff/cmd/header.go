/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/pff/pkg/codec"
)

// headerCmd represents the header command
var headerCmd = &cobra.Command{
	Use:   "header [path]",
	Short: "Print the run header of the first file",
	Long: `Print the run header stored at the start of the first file.

Examples:
  pff header /data/run_0042_
  pff header /data/run_0042_000003.pff`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReader(cmd, args)
		if err != nil {
			return err
		}
		defer r.Close()

		h, err := r.Header()
		if err != nil {
			return err
		}
		printHeader(cmd.OutOrStdout(), r.FilePath(), h)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(headerCmd)
}

func printHeader(w io.Writer, path string, h codec.Header) {
	fmt.Fprintf(w, "File:          %s\n", path)
	fmt.Fprintf(w, "Run:           %s\n", h.RunIdentifier)
	fmt.Fprintf(w, "File number:   %d\n", h.FileNumber)
	fmt.Fprintf(w, "Started:       %s\n", h.StartTime().Format(time.RFC3339))
	fmt.Fprintf(w, "Created:       %s\n", h.CreationTime().Format(time.RFC3339))
	fmt.Fprintf(w, "Compressed:    %t\n", h.Zipped)
	if h.RunMode != "" {
		fmt.Fprintf(w, "Run mode:      %s\n", h.RunMode)
	}
	if h.StartedBy != "" {
		fmt.Fprintf(w, "Started by:    %s\n", h.StartedBy)
	}
	if h.Notes != "" {
		fmt.Fprintf(w, "Notes:         %s\n", h.Notes)
	}
}
