/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/pff/pkg/config"
	"github.com/ssargent/pff/pkg/logging"
	"github.com/ssargent/pff/pkg/reader"
)

type contextKey string

const (
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pff",
	Short: "Inspect framed event log (.pff) files",
	Long: `pff reads framed event log files: a header record followed by
length-prefixed event records, optionally spread over numbered files
(stub000000.pff, stub000001.pff, ...).

Pass either an explicit .pff file or a stub to any command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger, ok := cmd.Context().Value(loggerKey).(*zap.Logger); ok {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default "+config.GetDefaultConfigPath()+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int("max-record-size", 0, "Largest record accepted, in bytes")
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path, _ := cmd.Flags().GetString("config")
	if path == "" && config.ConfigExists(config.GetDefaultConfigPath()) {
		path = config.GetDefaultConfigPath()
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if size, _ := cmd.Flags().GetInt("max-record-size"); size > 0 {
		cfg.Input.MaxRecordSize = size
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openReader opens the path given on the command line, falling back to
// input.path from the config file
func openReader(cmd *cobra.Command, args []string) (*reader.Reader, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("config not found in context")
	}
	logger, ok := cmd.Context().Value(loggerKey).(*zap.Logger)
	if !ok {
		logger = zap.NewNop()
	}

	path := cfg.Input.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, fmt.Errorf("no input path given")
	}

	return reader.NewReader(reader.ReaderConfig{
		BasePath:       path,
		MaxRecordSize:  cfg.Input.MaxRecordSize,
		MaxPayloadSize: cfg.Input.MaxPayloadSize,
		BufferSize:     cfg.Input.BufferSize,
		Logger:         logger,
	})
}
