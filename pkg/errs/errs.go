package errs

import (
	"fmt"
	"strings"
)

// Err represents structure of a custom error
type Err struct {
	Code    string
	Message string
}

func (e Err) Error() string {
	return fmt.Sprintf("%s : %s ", e.Code, e.Message)
}

// Error represents a json-encoded error.
type Error struct {
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New returns a new error message.
func New(text string) error {
	return &Error{Message: text}
}

// ErrUnusableField returns an error when a coverage field holds a value that is not a number.
func ErrUnusableField(field string, value interface{}) error {
	return Err{
		Code:    "ERR::COV::FIELD",
		Message: fmt.Sprintf("field %s has unusable value %v", field, value),
	}
}

// ErrInvalidConf is returned when configuration values fail validation.
type ErrInvalidConf struct {
	Message string
	Fields  []string
	Values  []interface{}
}

func (e *ErrInvalidConf) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i, field := range e.Fields {
		fmt.Fprintf(&b, "%s: %v\n", field, e.Values[i])
	}
	return b.String()
}

var (
	// ErrReportNotFound is returned when the coverage report does not exist.
	ErrReportNotFound = New("coverage report not found")
	// ErrMalformedReport is returned when the coverage report cannot be decoded.
	ErrMalformedReport = New("malformed coverage report")
	// ErrNoCoverageFields is returned when no known field layout matches the report.
	ErrNoCoverageFields = New("no coverage fields found in report")
	// ErrTotalLineNotFound is returned when a text report has no usable TOTAL row.
	ErrTotalLineNotFound = New("TOTAL line not found")
	// ErrUnknownFormat is returned for a report format the extractor cannot read.
	ErrUnknownFormat = New("unknown report format")
	// ErrInvalidLoggerInstance is returned when logger instance is not supported.
	ErrInvalidLoggerInstance = New("Invalid logger instance")
	// ErrHistoryDisabled is returned when history is requested without a database.
	ErrHistoryDisabled = New("history database not configured")
)
