package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LambdaTest/coverage-extractor/config"
	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/testutils/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// workspace moves the test into an empty directory with no config or env overrides.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	for _, env := range []string{global.GitHubOutputEnv, "GITHUB_SHA", "GITHUB_REF_NAME", "GITHUB_WORKFLOW", "GITHUB_RUN_ID", "GITHUB_REPOSITORY", "GITHUB_JOB"} {
		t.Setenv(env, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := RootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	// a nil slice would make cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		env   map[string]string
		args  []string
		want  string
	}{
		{
			name: "no report",
			want: "0.0 0.0\n",
		},
		{
			name:  "json report",
			files: map[string]string{"coverage.json": `{"line_percent": 85.456, "branch_percent": 72.1}`},
			want:  "85.46 72.1\n",
		},
		{
			name:  "malformed json report",
			files: map[string]string{"coverage.json": `{"line_percent":`},
			want:  "0.0 0.0\n",
		},
		{
			name:  "text report",
			files: map[string]string{"coverage.txt": "Name Stmts Miss Cover\nTOTAL 893 442 49%\n"},
			args:  []string{"--format", "text"},
			want:  "49 0\n",
		},
		{
			name: "missing text report",
			args: []string{"--format", "text"},
			want: "0 0\n",
		},
		{
			name:  "format from environment",
			files: map[string]string{"coverage.txt": "TOTAL 10 1 90%\n"},
			env:   map[string]string{"COVX_FORMAT": "text"},
			want:  "90 0\n",
		},
		{
			name:  "format from config file",
			files: map[string]string{"coverage.txt": "TOTAL 10 1 90%\n", ".covextract.yaml": "format: text\n"},
			want:  "90 0\n",
		},
		{
			name:  "format from dotenv",
			files: map[string]string{"coverage.txt": "TOTAL 10 3 70%\n", ".env": "COVX_FORMAT=text\n"},
			want:  "70 0\n",
		},
		{
			name:  "invalid format falls back to json",
			files: map[string]string{"coverage.json": `{"line_percent": 12}`},
			args:  []string{"--format", "lcov"},
			want:  "12.0 0.0\n",
		},
		{
			name:  "unreadable config file",
			files: map[string]string{"coverage.json": `{"line_percent": 12}`},
			args:  []string{"--config", "missing.yaml"},
			want:  "12.0 0.0\n",
		},
		{
			name:  "report in another directory",
			files: map[string]string{"build/coverage.json": `{"summary": {"line_percent": 40}}`},
			args:  []string{"--dir", "build"},
			want:  "40.0 0.0\n",
		},
		{
			name:  "report found by search",
			files: map[string]string{"build/reports/coverage.json": `{"root": {"line_covered": 1, "line_total": 4}}`},
			args:  []string{"--search", "**/coverage.json"},
			want:  "25.0 0.0\n",
		},
		{
			name:  "yaml output",
			files: map[string]string{"coverage.txt": "TOTAL 893 442 49%\n"},
			args:  []string{"--format", "text", "--output", "yaml"},
			want:  "line_coverage: 49\nbranch_coverage: 0\nformat: text\nsource: coverage.txt\nstrategy: total\n",
		},
		{
			name:  "logrus backend with verbose logging",
			files: map[string]string{"coverage.json": `{"line_percent": 1.5}`},
			env:   map[string]string{"COVX_LOGCONFIG_BACKEND": "logrus"},
			args:  []string{"--verbose"},
			want:  "1.5 0.0\n",
		},
		{
			name:  "unknown backend falls back to zap",
			files: map[string]string{"coverage.json": `{"line_percent": 1.5}`},
			env:   map[string]string{"COVX_LOGCONFIG_BACKEND": "glog"},
			want:  "1.5 0.0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := workspace(t)
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, name), content)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, ok := tt.files[".env"]; ok {
				t.Setenv("COVX_FORMAT", "")
				require.NoError(t, os.Unsetenv("COVX_FORMAT"))
			}
			assert.Equal(t, tt.want, execute(t, tt.args...))
		})
	}
}

func TestRootCommand_IsIdempotent(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "coverage.json"), `{"line_percent": 2.675, "branch_percent": 1.005}`)

	first := execute(t)
	second := execute(t)
	assert.Equal(t, first, second)
	assert.Equal(t, "2.67 1.0\n", first)
}

func TestRootCommand_JSONOutput(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "coverage.json"), `{"line_percent": 78.26, "branch_percent": 49.386}`)

	var got core.CoverageResult
	require.NoError(t, json.Unmarshal([]byte(execute(t, "-o", "json")), &got))
	assert.Equal(t, core.CoverageResult{
		Line:     78.26,
		Branch:   49.39,
		Format:   core.JSONReport,
		Source:   "coverage.json",
		Strategy: "direct",
	}, got)
}

func TestRootCommand_GitHubOutput(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "coverage.json"), `{"line_percent": 78.26, "branch_percent": 49.39}`)

	explicit := filepath.Join(dir, "explicit_output")
	assert.Equal(t, "78.26 49.39\n", execute(t, "--github-output", explicit))
	data, err := os.ReadFile(explicit)
	require.NoError(t, err)
	assert.Equal(t, "line_coverage=78.26\nbranch_coverage=49.39\n", string(data))

	fromEnv := filepath.Join(dir, "env_output")
	t.Setenv(global.GitHubOutputEnv, fromEnv)
	execute(t)
	assert.NoFileExists(t, fromEnv)
	execute(t, "--github")
	data, err = os.ReadFile(fromEnv)
	require.NoError(t, err)
	assert.Equal(t, "line_coverage=78.26\nbranch_coverage=49.39\n", string(data))

	// a write failure does not change the printed result
	assert.Equal(t, "78.26 49.39\n", execute(t, "--github-output", filepath.Join(dir, "missing", "out")))
}

func TestRootCommand_RecordAndHistory(t *testing.T) {
	dir := workspace(t)
	db := filepath.Join(dir, "state", "history.db")
	t.Setenv("GITHUB_SHA", "4f2a9c1")
	t.Setenv("GITHUB_REF_NAME", "main")
	t.Setenv("GITHUB_RUN_ID", "42")

	writeFile(t, filepath.Join(dir, "coverage.json"), `{"line_percent": 70}`)
	assert.Equal(t, "70.0 0.0\n", execute(t, "--record", "--db", db))
	writeFile(t, filepath.Join(dir, "coverage.json"), `{"line_percent": 75}`)
	assert.Equal(t, "75.0 0.0\n", execute(t, "--record", "--db", db, "--commit", "9b1d3e7"))

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(execute(t, "history", "list", "--db", db, "-o", "json")), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 75.0, entries[0]["line_coverage"])
	assert.Equal(t, "9b1d3e7", entries[0]["commit"])
	assert.Equal(t, 70.0, entries[1]["line_coverage"])
	assert.Equal(t, "4f2a9c1", entries[1]["commit"])
	assert.Equal(t, "main", entries[1]["ref"])
	assert.Equal(t, map[string]interface{}{"version": global.BinaryVersion, "run_id": "42"}, entries[1]["metadata"])

	table := execute(t, "history", "list", "--db", db, "--limit", "1")
	lines := strings.Split(strings.TrimSpace(table), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "CREATED"))
	assert.Contains(t, lines[1], "75.0")
	assert.Contains(t, lines[1], "9b1d3e7")

	assert.Equal(t, "1\n", execute(t, "history", "prune", "--db", db, "--keep", "1"))
	require.NoError(t, json.Unmarshal([]byte(execute(t, "history", "list", "--db", db, "-o", "json")), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "9b1d3e7", entries[0]["commit"])
}

func TestRootCommand_RecordFailureKeepsResult(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "coverage.json"), `{"line_percent": 70}`)
	// a directory where the database file should be
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "history.db"), 0755))

	assert.Equal(t, "70.0 0.0\n", execute(t, "--record", "--db", filepath.Join(dir, "history.db")))
}

func TestVersionCommand(t *testing.T) {
	workspace(t)
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, "covextract "+global.BinaryVersion+"\n"))
}

func Test_recordResult(t *testing.T) {
	t.Setenv("GITHUB_SHA", "env-sha")
	t.Setenv("GITHUB_REF_NAME", "env-ref")
	t.Setenv("GITHUB_WORKFLOW", "ci")
	t.Setenv("GITHUB_RUN_ID", "")
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_JOB", "")

	result := core.CoverageResult{Line: 49, Format: core.TextReport, Source: "coverage.txt", Strategy: "total"}
	tests := []struct {
		name       string
		cfg        *config.ExtractorConfig
		storeErr   error
		wantCommit string
		wantRef    string
		wantErr    bool
	}{
		{"flags win", &config.ExtractorConfig{Commit: "abc", Ref: "feature"}, nil, "abc", "feature", false},
		{"environment fallback", &config.ExtractorConfig{}, nil, "env-sha", "env-ref", false},
		{"store error returned", &config.ExtractorConfig{}, errors.New("database is locked"), "env-sha", "env-ref", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.HistoryStore)
			var recorded *core.HistoryEntry
			store.On("Record", mock.Anything, mock.AnythingOfType("*core.HistoryEntry")).Return(
				func(ctx context.Context, entry *core.HistoryEntry) error {
					recorded = entry
					return tt.storeErr
				})

			err := recordResult(context.TODO(), store, tt.cfg, result)
			if (err != nil) != tt.wantErr {
				t.Errorf("recordResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			store.AssertExpectations(t)
			require.NotNil(t, recorded)
			assert.Equal(t, 49.0, recorded.Line)
			assert.Equal(t, core.TextReport, recorded.Format)
			assert.Equal(t, "total", recorded.Strategy)
			assert.Equal(t, tt.wantCommit, recorded.Commit)
			assert.Equal(t, tt.wantRef, recorded.Ref)
			assert.Equal(t, map[string]string{"version": global.BinaryVersion, "workflow": "ci"}, recorded.Metadata)
		})
	}
}
