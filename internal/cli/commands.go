// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edidecode/edi-mcp/internal/config"
	"github.com/edidecode/edi-mcp/internal/edi"
	"github.com/edidecode/edi-mcp/internal/store"
	"github.com/edidecode/edi-mcp/internal/tool"
)

var errNoDB = errors.New("no database: pass --db or set EDI_DB_PATH")

func dialectsCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List supported dialects and their segment tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := tool.Summarize(edi.DefaultRegistry())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, summaries)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

func runsCmd(cfg *config.Config) *cobra.Command {
	var dbPath, output string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List parse runs stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.Runs(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, runs)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", cfg.DBPath, "SQLite database")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

func historyCmd(cfg *config.Config) *cobra.Command {
	var dbPath, output string
	cmd := &cobra.Command{
		Use:   "history <part-number>",
		Short: "Show every stored release of a part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			releases, err := s.PartReleases(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, releases)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", cfg.DBPath, "SQLite database")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, errNoDB
	}
	return store.Open(path, log.Logger)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the EDI tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcp.NewServer(&mcp.Implementation{Name: "edi-mcp", Version: Version}, nil)
			tool.Register(srv)
			log.Info().Str("version", Version).Msg("Serving MCP on stdio")
			return srv.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
