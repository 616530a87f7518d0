package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// warnings is where loader warnings go before a logger exists.
var warnings io.Writer = os.Stderr

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	present := make([]string, 0, len(filenames))
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// LoadExtractorConfig loads config from command instance to predefined config variables
func LoadExtractorConfig(cmd *cobra.Command) (*ExtractorConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	// default viper configs
	v.SetEnvPrefix(global.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// set default configs
	setExtractorDefaultConfig(v)

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(global.ConfigName)
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/" + global.ConfigName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				fmt.Fprintf(warnings, "Warning: ignoring unreadable configuration file: %v\n", err)
			}
		}
	}

	return populateExtractorConfig(v, new(ExtractorConfig))
}

// Sanitize validates cfg and restores the default for every invalid field.
// The returned error lists what was replaced and is meant to be logged.
func Sanitize(cfg *ExtractorConfig) error {
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	cfg.LogConfig.Backend = strings.ToLower(strings.TrimSpace(cfg.LogConfig.Backend))

	err := utils.ValidateStruct(cfg, "configuration")
	if err == nil {
		return nil
	}
	var confErr *errs.ErrInvalidConf
	if !errors.As(err, &confErr) {
		return err
	}
	def := defaults()
	for _, field := range confErr.Fields {
		switch field {
		case "format":
			cfg.Format = def.Format
		case "output":
			cfg.Output = def.Output
		case "limit":
			cfg.Limit = def.Limit
		case "Backend":
			cfg.LogConfig.Backend = def.LogConfig.Backend
		}
	}
	return err
}

// ReportFile returns the report file name configured for cfg.Format.
func (cfg *ExtractorConfig) ReportFile() string {
	if cfg.File != "" {
		return cfg.File
	}
	if name, ok := global.ReportFileNames[cfg.Format]; ok {
		return name
	}
	return global.CoverageJSONFileName
}

// GitHubOutputPath returns where GitHub Actions outputs should be appended,
// or "" when that is disabled.
func (cfg *ExtractorConfig) GitHubOutputPath() string {
	if cfg.GitHubOutput != "" {
		return cfg.GitHubOutput
	}
	if cfg.GitHub {
		return os.Getenv(global.GitHubOutputEnv)
	}
	return ""
}
