package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/LambdaTest/coverage-extractor/config"
	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/history"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
	"github.com/LambdaTest/coverage-extractor/pkg/service/coverage"
	"github.com/spf13/cobra"
)

// ciMetadata lists the CI variables stored with a recorded result
var ciMetadata = map[string]string{
	"workflow":   "GITHUB_WORKFLOW",
	"run_id":     "GITHUB_RUN_ID",
	"repository": "GITHUB_REPOSITORY",
	"job":        "GITHUB_JOB",
}

// RootCommand will setup and return the root command
func RootCommand() *cobra.Command {
	rootCmd := cobra.Command{
		Use:     "covextract",
		Long:    `covextract prints the line and branch coverage found in a coverage report for CI steps to consume`,
		Version: global.BinaryVersion,
		Run:     run,
	}

	// define flags used for this command
	if err := AttachCLIFlags(&rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, "Error in attaching cli flags")
	}

	rootCmd.AddCommand(historyCommand(), versionCommand())
	return &rootCmd
}

func run(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, logger := setup(cmd)

	result := extract(ctx, cfg, logger)

	w, err := coverage.NewResultWriter(cfg.Output)
	if err != nil {
		logger.Warnf("%v, using plain output", err)
		w, _ = coverage.NewResultWriter(global.OutputPlain)
	}
	if err := w.Write(cmd.OutOrStdout(), result); err != nil {
		logger.Errorf("failed to write coverage result: %v", err)
	}

	if path := cfg.GitHubOutputPath(); path != "" {
		if err := coverage.WriteGitHubOutput(path, result); err != nil {
			logger.Errorf("failed to write GitHub output to %s: %v", path, err)
		} else {
			logger.Debugf("appended coverage outputs to %s", path)
		}
	}

	if cfg.Record {
		store, err := history.Open(cfg.DB, cfg.DBDebug, logger)
		if err != nil {
			logger.Errorf("failed to open history database: %v", err)
			return
		}
		defer store.Close()
		if err := recordResult(ctx, store, cfg, result); err != nil {
			logger.Errorf("failed to record coverage result: %v", err)
		}
	}
}

// setup loads the configuration and builds the logger. It never fails:
// problems are reported and defaults are used instead.
func setup(cmd *cobra.Command) (*config.ExtractorConfig, lumber.Logger) {
	stderr := cmd.ErrOrStderr()
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "Warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.LoadExtractorConfig(cmd)
	if err != nil {
		fmt.Fprintf(stderr, "[Error] Failed to load config: %v\n", err)
		cfg = config.Default()
	}
	sanitizeErr := config.Sanitize(cfg)

	// patch logconfig file location with root level log file location
	if cfg.LogFile != "" {
		cfg.LogConfig.FileLocation = cfg.LogFile
		cfg.LogConfig.EnableFile = true
	}

	logger, err := lumber.NewLogger(cfg.LogConfig, cfg.Verbose, lumber.InstanceFor(cfg.LogConfig.Backend))
	if err != nil {
		fmt.Fprintf(stderr, "Warning: could not instantiate %s logger: %v\n", cfg.LogConfig.Backend, err)
		logger = fallbackLogger(cfg.Verbose)
	}
	if sanitizeErr != nil {
		logger.Warnf("%v", sanitizeErr)
	}
	logger.Debugf("covextract version: %s", global.BinaryVersion)
	return cfg, logger
}

func fallbackLogger(verbose bool) lumber.Logger {
	logger, _ := lumber.NewLogger(lumber.LoggingConfig{
		EnableConsole: true,
		ConsoleLevel:  lumber.Info,
	}, verbose, lumber.InstanceZapLogger)
	return logger
}

func extract(ctx context.Context, cfg *config.ExtractorConfig, logger lumber.Logger) core.CoverageResult {
	svc, err := coverage.New(cfg, logger)
	if err != nil {
		logger.Errorf("failed to initialize coverage service: %v", err)
		return core.ZeroResult(core.JSONReport)
	}
	return svc.Extract(ctx)
}

func recordResult(ctx context.Context, store core.HistoryStore, cfg *config.ExtractorConfig, result core.CoverageResult) error {
	entry := &core.HistoryEntry{
		Line:     result.Line,
		Branch:   result.Branch,
		Format:   result.Format,
		Source:   result.Source,
		Strategy: result.Strategy,
		Commit:   firstNonEmpty(cfg.Commit, os.Getenv("GITHUB_SHA")),
		Ref:      firstNonEmpty(cfg.Ref, os.Getenv("GITHUB_REF_NAME")),
		Metadata: map[string]string{"version": global.BinaryVersion},
	}
	for key, env := range ciMetadata {
		if v := os.Getenv(env); v != "" {
			entry.Metadata[key] = v
		}
	}
	return store.Record(ctx, entry)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "covextract %s\n", global.BinaryVersion)
	if global.GitCommit != "" {
		fmt.Fprintf(w, "commit: %s\n", global.GitCommit)
	}
	if global.BuildDate != "" {
		fmt.Fprintf(w, "built: %s\n", global.BuildDate)
	}
}
