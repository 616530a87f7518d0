package config

import "github.com/LambdaTest/coverage-extractor/pkg/lumber"

// Model definition for configuration

// ExtractorConfig is the application's configuration
type ExtractorConfig struct {
	Config       string
	Dir          string `json:"dir"`
	File         string `json:"file"`
	Format       string `json:"format" validate:"oneof=json text"`
	Search       string `json:"search"`
	Output       string `json:"output" validate:"oneof=plain json yaml"`
	GitHub       bool   `json:"github"`
	GitHubOutput string `json:"github-output"`
	Record       bool   `json:"record"`
	DB           string `json:"db"`
	DBDebug      bool   `json:"db-debug"`
	Limit        int    `json:"limit" validate:"min=1"`
	Keep         int    `json:"keep"`
	Commit       string `json:"commit"`
	Ref          string `json:"ref"`
	Verbose      bool
	LogFile      string `json:"log-file"`
	LogConfig    lumber.LoggingConfig
}
