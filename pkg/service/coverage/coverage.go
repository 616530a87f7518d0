package coverage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/LambdaTest/coverage-extractor/config"
	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/LambdaTest/coverage-extractor/pkg/fileutils"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
)

type codeCoverageService struct {
	logger lumber.Logger
	parser core.ReportParser
	dir    string
	file   string
	search string
}

// New returns a new instance of CoverageService
func New(cfg *config.ExtractorConfig, logger lumber.Logger) (core.CoverageService, error) {
	parser, err := NewParser(core.ReportFormat(cfg.Format), logger)
	if err != nil {
		return nil, err
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return &codeCoverageService{
		logger: logger,
		parser: parser,
		dir:    dir,
		file:   cfg.ReportFile(),
		search: cfg.Search,
	}, nil
}

// Extract reads the configured report. Every failure is logged and replaced
// by a zero result for the parser's format.
func (c *codeCoverageService) Extract(ctx context.Context) core.CoverageResult {
	format := c.parser.Format()
	reportPath, err := c.locate()
	if err != nil {
		c.logger.Debugf("Using default coverage values: %v", err)
		return core.ZeroResult(format)
	}
	result, err := c.read(ctx, reportPath)
	if err != nil {
		c.logger.Errorf("Could not read coverage data: %v", err)
		return core.ZeroResult(format)
	}
	return result
}

// locate returns the path of the report, falling back to the search
// pattern when the report is not at its fixed location.
func (c *codeCoverageService) locate() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		c.logger.Debugf("Current working directory: %s", cwd)
	}
	reportPath := c.file
	if !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(c.dir, reportPath)
	}
	c.logger.Debugf("Looking for: %s", reportPath)

	exists, err := fileutils.CheckIfExists(reportPath)
	if err != nil {
		return "", err
	}
	c.logger.Debugf("File exists: %t", exists)
	if exists {
		if size, err := fileutils.FileSize(reportPath); err == nil {
			c.logger.Debugf("File size: %d bytes", size)
		}
		return reportPath, nil
	}

	c.logger.Errorf("%s not found in %s", c.file, c.absDir())
	if entries, err := fileutils.ListDir(c.dir); err == nil {
		c.logger.Debugf("Files in %s: %s", c.dir, strings.Join(entries, ", "))
	}

	if c.search != "" {
		match, found, err := fileutils.FindFirst(c.dir, c.search)
		switch {
		case err != nil:
			c.logger.Warnf("search for %s failed: %v", c.search, err)
		case found:
			c.logger.Infof("Using %s matched by %s", match, c.search)
			return match, nil
		default:
			c.logger.Debugf("No file under %s matches %s", c.dir, c.search)
		}
	}
	return "", fmt.Errorf("%s: %w", reportPath, errs.ErrReportNotFound)
}

func (c *codeCoverageService) read(ctx context.Context, reportPath string) (core.CoverageResult, error) {
	if err := ctx.Err(); err != nil {
		return core.CoverageResult{}, err
	}
	f, err := os.Open(reportPath)
	if err != nil {
		return core.CoverageResult{}, err
	}
	defer f.Close()

	result, err := c.parser.Parse(ctx, io.LimitReader(f, global.MaxReportSize))
	if err != nil {
		return core.CoverageResult{}, err
	}
	result.Source = reportPath
	return result, nil
}

func (c *codeCoverageService) absDir() string {
	abs, err := filepath.Abs(c.dir)
	if err != nil {
		return c.dir
	}
	return abs
}
