package coverage

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/LambdaTest/coverage-extractor/pkg/fileutils"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/utils"
	"gopkg.in/yaml.v3"
)

// FormatValue renders one percentage the way the report format prints it:
// text reports use integers, JSON reports use decimals.
func FormatValue(format core.ReportFormat, v float64) string {
	if format == core.TextReport {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return utils.FormatDecimal(v)
}

// FormatPlain renders "<line> <branch>".
func FormatPlain(result core.CoverageResult) string {
	return FormatValue(result.Format, result.Line) + " " + FormatValue(result.Format, result.Branch)
}

// NewResultWriter returns the writer for the given output kind.
func NewResultWriter(output string) (core.ResultWriter, error) {
	switch output {
	case "", global.OutputPlain:
		return plainWriter{}, nil
	case global.OutputJSON:
		return jsonWriter{}, nil
	case global.OutputYAML:
		return yamlWriter{}, nil
	default:
		return nil, fmt.Errorf("output %q: %w", output, errs.ErrUnknownFormat)
	}
}

type plainWriter struct{}

func (plainWriter) Write(w io.Writer, result core.CoverageResult) error {
	_, err := fmt.Fprintln(w, FormatPlain(result))
	return err
}

type jsonWriter struct{}

func (jsonWriter) Write(w io.Writer, result core.CoverageResult) error {
	return json.NewEncoder(w).Encode(result)
}

type yamlWriter struct{}

func (yamlWriter) Write(w io.Writer, result core.CoverageResult) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}

// WriteGitHubOutput appends the result as GitHub Actions step outputs.
func WriteGitHubOutput(path string, result core.CoverageResult) error {
	return fileutils.AppendLines(path,
		"line_coverage="+FormatValue(result.Format, result.Line),
		"branch_coverage="+FormatValue(result.Format, result.Branch),
	)
}
