package config

import (
	"path/filepath"

	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
	"github.com/spf13/viper"
)

func setExtractorDefaultConfig(v *viper.Viper) {
	v.SetDefault("LogConfig.Backend", "zap")
	v.SetDefault("LogConfig.EnableConsole", true)
	v.SetDefault("LogConfig.ConsoleJSONFormat", false)
	v.SetDefault("LogConfig.ConsoleLevel", "info")
	v.SetDefault("LogConfig.EnableFile", false)
	v.SetDefault("LogConfig.FileJSONFormat", true)
	v.SetDefault("LogConfig.FileLevel", "debug")
	v.SetDefault("LogConfig.FileLocation", "./covextract.log")
	v.SetDefault("dir", ".")
	v.SetDefault("format", global.FormatJSON)
	v.SetDefault("output", global.OutputPlain)
	v.SetDefault("db", filepath.Join(global.HistoryDir, global.HistoryDBName))
	v.SetDefault("limit", global.DefaultHistoryLimit)
	v.SetDefault("keep", 0)
	v.SetDefault("Verbose", false)
}

// defaults returns the values restored when a configured value fails validation.
func defaults() ExtractorConfig {
	return ExtractorConfig{
		Format: global.FormatJSON,
		Output: global.OutputPlain,
		Limit:  global.DefaultHistoryLimit,
		LogConfig: lumber.LoggingConfig{
			Backend: "zap",
		},
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *ExtractorConfig {
	v := viper.New()
	setExtractorDefaultConfig(v)
	cfg, err := populateExtractorConfig(v, new(ExtractorConfig))
	if err != nil {
		d := defaults()
		return &d
	}
	return cfg
}
