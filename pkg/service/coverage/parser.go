package coverage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
	"github.com/LambdaTest/coverage-extractor/pkg/utils"
)

const maxLineSize = 1 << 20

var totalPercentRegex = regexp.MustCompile(global.TotalPercentRegex)

// NewParser returns the parser for the given report format.
func NewParser(format core.ReportFormat, logger lumber.Logger) (core.ReportParser, error) {
	switch format {
	case core.JSONReport:
		return &jsonParser{logger: logger}, nil
	case core.TextReport:
		return &textParser{logger: logger}, nil
	default:
		return nil, fmt.Errorf("%q: %w", format, errs.ErrUnknownFormat)
	}
}

type jsonParser struct {
	logger lumber.Logger
}

func (p *jsonParser) Format() core.ReportFormat {
	return core.JSONReport
}

// Parse decodes a JSON report and applies the first matching strategy.
func (p *jsonParser) Parse(ctx context.Context, r io.Reader) (core.CoverageResult, error) {
	var doc interface{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return core.CoverageResult{}, fmt.Errorf("%w: %v", errs.ErrMalformedReport, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return core.CoverageResult{}, fmt.Errorf("%w: unexpected data after top-level value", errs.ErrMalformedReport)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return core.CoverageResult{}, fmt.Errorf("%w: top-level value is not an object", errs.ErrMalformedReport)
	}
	p.logger.Debugf("JSON keys: %v", sortedKeys(obj))

	for _, s := range strategies {
		fields, ok := s.match(obj)
		if !ok {
			continue
		}
		p.logger.Debugf("Using %s coverage fields", s.name)
		for _, field := range s.fields() {
			p.logger.Debugf("Raw %s: %v", s.qualify(field), fields[field])
		}
		line, branch, err := s.evaluate(fields)
		if err != nil {
			return core.CoverageResult{}, err
		}
		return core.CoverageResult{
			Line:     utils.Round(line, global.PercentPrecision),
			Branch:   utils.Round(branch, global.PercentPrecision),
			Format:   core.JSONReport,
			Strategy: s.name,
		}, nil
	}
	return core.CoverageResult{}, errs.ErrNoCoverageFields
}

// match returns the object holding the strategy's fields when at least one
// of them is present. null counts as absent.
func (s strategy) match(doc map[string]interface{}) (map[string]interface{}, bool) {
	obj := doc
	if s.scope != "" {
		nested, ok := doc[s.scope].(map[string]interface{})
		if !ok {
			return nil, false
		}
		obj = nested
	}
	for _, field := range s.fields() {
		if v, ok := obj[field]; ok && v != nil {
			return obj, true
		}
	}
	return nil, false
}

func (s strategy) evaluate(obj map[string]interface{}) (line, branch float64, err error) {
	values := make(map[string]float64, 4)
	for _, field := range s.fields() {
		v, err := s.number(obj, field)
		if err != nil {
			return 0, 0, err
		}
		values[field] = v
	}
	if s.layout == ratioFields {
		return utils.Percent(values[lineCovered], values[lineTotal]),
			utils.Percent(values[branchCovered], values[branchTotal]), nil
	}
	return values[linePercent], values[branchPercent], nil
}

func (s strategy) number(obj map[string]interface{}, field string) (float64, error) {
	switch v := obj[field].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	default:
		return 0, errs.ErrUnusableField(s.qualify(field), v)
	}
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type textParser struct {
	logger lumber.Logger
}

func (p *textParser) Format() core.ReportFormat {
	return core.TextReport
}

// Parse reads the percentage from the first TOTAL row of a tabular report.
func (p *textParser) Parse(ctx context.Context, r io.Reader) (core.CoverageResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, global.TotalLinePrefix) {
			continue
		}
		p.logger.Debugf("TOTAL line: %s", line)
		match := totalPercentRegex.FindStringSubmatch(line)
		if match == nil {
			return core.CoverageResult{}, fmt.Errorf("%w: no percentage in %q", errs.ErrTotalLineNotFound, line)
		}
		percent, err := strconv.Atoi(match[1])
		if err != nil {
			return core.CoverageResult{}, errs.ErrUnusableField(global.TotalLinePrefix, match[1])
		}
		return core.CoverageResult{
			Line:     float64(percent),
			Format:   core.TextReport,
			Strategy: strings.ToLower(global.TotalLinePrefix),
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return core.CoverageResult{}, err
	}
	return core.CoverageResult{}, errs.ErrTotalLineNotFound
}
