package global

import "time"

// All constants related to coverage extraction
const (
	CoverageJSONFileName = "coverage.json"
	CoverageTextFileName = "coverage.txt"
	TotalLinePrefix      = "TOTAL"
	TotalPercentRegex    = `(\d+)%`
	PercentPrecision     = 2
	MaxReportSize        = 64 << 20
	DirectoryPermissions = 0755
	FilePermissions      = 0644
	HistoryDir           = ".covextract"
	HistoryDBName        = "history.db"
	DefaultHistoryLimit  = 20
	DBLockedRetryWindow  = 5 * time.Second
	GitHubOutputEnv      = "GITHUB_OUTPUT"
	EnvPrefix            = "COVX"
	ConfigName           = ".covextract"
	LibsqlAuthTokenEnv   = "COVX_LIBSQL_AUTH_TOKEN"
)

// Report formats understood by the extractor
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Result renderings written to stdout
const (
	OutputPlain = "plain"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// ReportFileNames maps a report format to the file read from the working directory
var ReportFileNames = map[string]string{
	FormatJSON: CoverageJSONFileName,
	FormatText: CoverageTextFileName,
}
