package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/LambdaTest/coverage-extractor/config"
	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/history"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
	"github.com/LambdaTest/coverage-extractor/pkg/service/coverage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func historyCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect coverage results recorded with --record",
	}

	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "Print recorded results, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, cfg *config.ExtractorConfig, store core.HistoryStore, logger lumber.Logger) error {
				entries, err := store.List(ctx, cfg.Limit)
				if err != nil {
					return err
				}
				return writeEntries(cmd.OutOrStdout(), cfg.Output, entries)
			})
		},
	}
	listCmd.Flags().IntP("limit", "n", global.DefaultHistoryLimit, "Maximum number of results to print")

	pruneCmd := &cobra.Command{
		Use:          "prune",
		Short:        "Delete all but the newest recorded results",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, cfg *config.ExtractorConfig, store core.HistoryStore, logger lumber.Logger) error {
				deleted, err := store.Prune(ctx, cfg.Keep)
				if err != nil {
					return err
				}
				logger.Infof("deleted %d recorded results", deleted)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", deleted)
				return nil
			})
		},
	}
	pruneCmd.Flags().Int("keep", 0, "Number of newest results to keep")

	historyCmd.AddCommand(listCmd, pruneCmd)
	return historyCmd
}

type storeFunc func(ctx context.Context, cfg *config.ExtractorConfig, store core.HistoryStore, logger lumber.Logger) error

func withStore(cmd *cobra.Command, fn storeFunc) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, logger := setup(cmd)
	store, err := history.Open(cfg.DB, cfg.DBDebug, logger)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()
	return fn(ctx, cfg, store, logger)
}

type entryView struct {
	ID        string            `json:"id" yaml:"id"`
	CreatedAt string            `json:"created_at" yaml:"created_at"`
	Line      float64           `json:"line_coverage" yaml:"line_coverage"`
	Branch    float64           `json:"branch_coverage" yaml:"branch_coverage"`
	Format    core.ReportFormat `json:"format" yaml:"format"`
	Source    string            `json:"source,omitempty" yaml:"source,omitempty"`
	Strategy  string            `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Commit    string            `json:"commit,omitempty" yaml:"commit,omitempty"`
	Ref       string            `json:"ref,omitempty" yaml:"ref,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func writeEntries(w io.Writer, output string, entries []core.HistoryEntry) error {
	views := make([]entryView, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		views = append(views, entryView{
			ID:        e.ID,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
			Line:      e.Line,
			Branch:    e.Branch,
			Format:    e.Format,
			Source:    e.Source,
			Strategy:  e.Strategy,
			Commit:    e.Commit,
			Ref:       e.Ref,
			Metadata:  e.Metadata,
		})
	}

	switch output {
	case global.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case global.OutputYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tLINE\tBRANCH\tFORMAT\tCOMMIT\tREF\tID")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.CreatedAt,
			coverage.FormatValue(v.Format, v.Line),
			coverage.FormatValue(v.Format, v.Branch),
			v.Format,
			dash(v.Commit),
			dash(v.Ref),
			v.ID)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
