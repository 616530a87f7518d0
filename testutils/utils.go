package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/LambdaTest/coverage-extractor/config"
	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
)

// getCurrentWorkingDir give the file path of this file
func getCurrentWorkingDir() (string, error) {
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		return "", errs.New("runtime.Calller(1) was unable to recover information")
	}
	filepath := path.Join(path.Dir(filename), "../")
	return filepath, nil
}

// GetConfig returns a dummy ExtractorConfig using the json file pointed by ApplicationConfigPath
func GetConfig() (*config.ExtractorConfig, error) {
	cwd, err := getCurrentWorkingDir()
	if err != nil {
		return nil, err
	}
	configJSON, err := os.ReadFile(cwd + ApplicationConfigPath)
	if err != nil {
		return nil, err
	}
	var cfg *config.ExtractorConfig
	err = json.Unmarshal(configJSON, &cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetLogger returns a dummy lumber.Logger.
func GetLogger() (lumber.Logger, error) {
	logger, err := lumber.NewLogger(lumber.LoggingConfig{ConsoleLevel: lumber.Debug}, true, lumber.InstanceLogrusLogger)
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// LoadFile reads a file relative to the repository root.
func LoadFile(relativePath string) ([]byte, error) {
	cwd, err := getCurrentWorkingDir()
	if err != nil {
		return nil, err
	}
	absPath := fmt.Sprintf("%s/%s", cwd, relativePath)
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	return data, err
}

// CopyFixture copies the named coverage fixture into dir under the name dest.
func CopyFixture(name, dir, dest string) error {
	cwd, err := getCurrentWorkingDir()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(cwd, CoverageFixtureDir, name))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, dest), data, global.FilePermissions)
}
