// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edidecode/edi-mcp/internal/config"
	"github.com/edidecode/edi-mcp/internal/edi"
	"github.com/edidecode/edi-mcp/internal/edi/dialects"
	"github.com/edidecode/edi-mcp/internal/store"
	"github.com/edidecode/edi-mcp/internal/tool"
	"github.com/edidecode/edi-mcp/internal/worker"
)

// stdinSource names standard input on the command line.
const stdinSource = "-"

// fileResult is the parse outcome of one input file.
type fileResult struct {
	Source string      `json:"source" yaml:"source"`
	RunID  string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Result *edi.Result `json:"result" yaml:"result"`
	Errors []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type parseOptions struct {
	dialect       string
	elementSep    string
	segmentSep    string
	subelementSep string
	dateFormat    string
	output        string
	dbPath        string
	workers       int
}

func parseCmd(cfg *config.Config) *cobra.Command {
	opts := parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse EDI files and print the extracted documents",
		Long: `Parses each file concurrently and prints one result per file.
Use "-" to read standard input. The dialect is detected from the ISA, UNA or UNB
header unless --dialect is given; separators declared in the header are honoured
unless overridden.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dialect, "dialect", cfg.Dialect, "EDI dialect: X12 or EDIFACT (default: detect)")
	cmd.Flags().StringVar(&opts.elementSep, "element-separator", cfg.ElementSeparator, "Element separator override")
	cmd.Flags().StringVar(&opts.segmentSep, "segment-separator", cfg.SegmentSeparator, "Segment separator override")
	cmd.Flags().StringVar(&opts.subelementSep, "subelement-separator", cfg.SubelementSeparator, "Subelement separator override")
	cmd.Flags().StringVar(&opts.dateFormat, "date-format", cfg.DateFormatOut, "strftime format for extracted dates")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVar(&opts.dbPath, "db", cfg.DBPath, "SQLite database to store results in")
	cmd.Flags().IntVar(&opts.workers, "workers", cfg.Workers, "Number of files parsed concurrently")

	return cmd
}

func runParse(ctx context.Context, stdin io.Reader, stdout io.Writer, sources []string, opts parseOptions) error {
	parserOpts := append(
		tool.ParserOptions(opts.elementSep, opts.segmentSep, opts.subelementSep, opts.dateFormat),
		edi.WithLogger(log.Logger),
	)

	var db *store.Store
	if opts.dbPath != "" {
		s, err := store.Open(opts.dbPath, log.Logger)
		if err != nil {
			return err
		}
		defer s.Close()
		db = s
	}

	pool := worker.New(opts.workers, func(ctx context.Context, source string) (*fileResult, error) {
		raw, err := readSource(stdin, source)
		if err != nil {
			return nil, err
		}
		parser, err := dialects.ForText(raw, edi.Dialect(opts.dialect), parserOpts...)
		if err != nil {
			return nil, err
		}
		res, parseErr := parser.ParseText(raw)
		out := &fileResult{Source: source, Result: res}
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("source", source).Msg("Documents skipped")
			out.Errors = []string{parseErr.Error()}
		}
		if db != nil {
			runID, err := db.Save(ctx, source, res)
			if err != nil {
				return nil, fmt.Errorf("store %s: %w", source, err)
			}
			out.RunID = runID
		}
		log.Info().
			Str("source", source).
			Str("dialect", string(res.Dialect)).
			Int("documents", len(res.Documents)).
			Int("failures", len(res.Failures)).
			Msg("Parsed")
		return out, nil
	}, log.Logger)

	jobs := pool.Run(ctx, sources)
	results := make([]*fileResult, 0, len(jobs))
	var failed int
	for _, job := range jobs {
		if job.Err != nil {
			failed++
			continue
		}
		results = append(results, job.Output)
	}

	if err := writeOutput(stdout, opts.output, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be parsed", failed, len(sources))
	}
	return nil
}

func readSource(stdin io.Reader, source string) (string, error) {
	if source == stdinSource {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	return string(b), nil
}
