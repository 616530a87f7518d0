package lumber

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapConsole(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	old := console
	console = buf
	t.Cleanup(func() { console = old })
	return buf
}

func TestInstanceFor(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    int
	}{
		{"empty defaults to zap", "", InstanceZapLogger},
		{"zap", "zap", InstanceZapLogger},
		{"logrus mixed case", " Logrus ", InstanceLogrusLogger},
		{"unknown", "glog", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstanceFor(tt.backend))
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		config   LoggingConfig
		instance int
		wantErr  error
	}{
		{"zap", LoggingConfig{EnableConsole: true, ConsoleLevel: Info}, InstanceZapLogger, nil},
		{"logrus", LoggingConfig{EnableConsole: true, ConsoleLevel: Info}, InstanceLogrusLogger, nil},
		{"invalid instance", LoggingConfig{}, 7, errs.ErrInvalidLoggerInstance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config, false, tt.instance)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewLogger_LogrusInvalidLevel(t *testing.T) {
	_, err := NewLogger(LoggingConfig{EnableConsole: true, ConsoleLevel: "loud"}, false, InstanceLogrusLogger)
	assert.Error(t, err)
}

func TestZapLogger_WritesToConsole(t *testing.T) {
	buf := swapConsole(t)

	logger, err := NewLogger(LoggingConfig{EnableConsole: true, ConsoleLevel: Info}, false, InstanceZapLogger)
	require.NoError(t, err)

	logger.Debugf("hidden %d", 1)
	logger.WithFields(Fields{"file": "coverage.json"}).Infof("found report")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "found report")
	assert.Contains(t, out, "coverage.json")
}

func TestLogrusLogger_VerboseEnablesDebug(t *testing.T) {
	buf := swapConsole(t)

	logger, err := NewLogger(LoggingConfig{EnableConsole: true, ConsoleLevel: Error}, true, InstanceLogrusLogger)
	require.NoError(t, err)

	logger.Debugf("looking for %s", "coverage.txt")
	assert.Contains(t, buf.String(), "looking for coverage.txt")
}

func TestLogrusLogger_ConsoleDisabled(t *testing.T) {
	buf := swapConsole(t)

	logger, err := NewLogger(LoggingConfig{ConsoleLevel: Debug}, true, InstanceLogrusLogger)
	require.NoError(t, err)

	logger.Errorf("nobody hears this")
	assert.Empty(t, buf.String())
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+":"+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Debugf(format string, args ...interface{}) { r.record(Debug, format, args...) }
func (r *recordingLogger) Infof(format string, args ...interface{})  { r.record(Info, format, args...) }
func (r *recordingLogger) Warnf(format string, args ...interface{})  { r.record(Warn, format, args...) }
func (r *recordingLogger) Errorf(format string, args ...interface{}) { r.record(Error, format, args...) }
func (r *recordingLogger) Fatalf(format string, args ...interface{}) { r.record(Fatal, format, args...) }
func (r *recordingLogger) Panicf(format string, args ...interface{}) { r.record(Fatal, format, args...) }
func (r *recordingLogger) WithFields(Fields) Logger                  { return r }

func TestWriter(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		writes []string
		want   []string
	}{
		{"single line", Info, []string{"hello\n"}, []string{"info:hello"}},
		{"split lines", Debug, []string{"a\nb\n"}, []string{"debug:a", "debug:b"}},
		{"partial then newline", Warn, []string{"par", "tial\n"}, []string{"warn:partial"}},
		{"empty line in the middle", Error, []string{"foo\n", "\n", "bar\n"}, []string{"error:foo", "error:", "error:bar"}},
		{"trailing data flushed on close", "", []string{"tail"}, []string{"debug:tail"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingLogger{}
			w := NewWriter(rec, tt.level)
			for _, s := range tt.writes {
				n, err := w.Write([]byte(s))
				require.NoError(t, err)
				assert.Equal(t, len(s), n)
			}
			require.NoError(t, w.Close())
			assert.Equal(t, tt.want, rec.lines)
		})
	}
}
