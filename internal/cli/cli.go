// SPDX-License-Identifier: Apache-2.0

// Package cli implements the edi-mcp command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edidecode/edi-mcp/internal/config"
)

// Version is stamped at build time.
var Version = "dev"

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, cancel := setupContext()
	defer cancel()

	if err := NewRootCmd(cfg).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree on top of cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "edi-mcp",
		Short:        "Decode X12 and EDIFACT interchanges into documents, parts and releases",
		Long:         "Classifies EDI segments by role and extracts forecast and shipping schedules, reporting every field that could not be extracted.",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(parseCmd(cfg))
	rootCmd.AddCommand(dialectsCmd())
	rootCmd.AddCommand(runsCmd(cfg))
	rootCmd.AddCommand(historyCmd(cfg))
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// writeOutput encodes v as yaml or json.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unsupported output format %q (want yaml or json)", format)
}
