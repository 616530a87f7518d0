package main

import (
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/spf13/cobra"
)

// AttachCLIFlags attaches command line flags to command
func AttachCLIFlags(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().StringP("config", "c", "", "the config file to use")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Run in verbose mode")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().StringP("output", "o", global.OutputPlain, "Output format: plain, json or yaml")
	rootCmd.PersistentFlags().String("db", "", "History database path or libsql URL")
	rootCmd.PersistentFlags().Bool("db-debug", false, "Log SQL statements at debug level")

	rootCmd.Flags().StringP("dir", "d", ".", "Directory holding the coverage report")
	rootCmd.Flags().StringP("format", "f", global.FormatJSON, "Report format: json or text")
	rootCmd.Flags().String("file", "", "Report file name, defaults to coverage.json or coverage.txt")
	rootCmd.Flags().String("search", "", "Glob used to find the report when it is not in the directory, e.g. **/coverage.json")
	rootCmd.Flags().Bool("github", false, "Append step outputs to the file named by GITHUB_OUTPUT")
	rootCmd.Flags().String("github-output", "", "Append step outputs to this file")
	rootCmd.Flags().Bool("record", false, "Record the result in the history database")
	rootCmd.Flags().String("commit", "", "Commit recorded with the result, defaults to GITHUB_SHA")
	rootCmd.Flags().String("ref", "", "Ref recorded with the result, defaults to GITHUB_REF_NAME")

	return nil
}
