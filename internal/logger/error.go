package logger

import "errors"

// Sentinel errors a FileLogger or MultiLogger operation can wrap. Callers
// match against these with errors.Is rather than inspecting LoggerError
// directly.
var (
	ErrLogCreate = errors.New("logger: create error")
	ErrLogOpen   = errors.New("logger: open error")
	ErrLogClose  = errors.New("logger: close error")
)

// LoggerError carries the failing operation and, when relevant, the log
// file path alongside the underlying error.
type LoggerError struct {
	Op    string // operation being performed, e.g., "create", "close"
	Err   error  // sentinel identifying the failure class
	Cause error  // underlying error returned by go-utils/logger or the filesystem
	Path  string // log file or directory path, when applicable
}

func (e *LoggerError) Error() string {
	if e.Path != "" {
		return e.Op + " error on " + e.Path + ": " + e.Err.Error()
	}
	return e.Op + " error: " + e.Err.Error()
}

func (e *LoggerError) Unwrap() error {
	return e.Err
}

// wrapLoggerErr builds a LoggerError, pairing a sentinel (err) with the
// underlying cause so callers can both errors.Is against the sentinel and
// inspect what actually went wrong.
func wrapLoggerErr(op string, err, cause error, path string) error {
	return &LoggerError{
		Op:    op,
		Err:   err,
		Cause: cause,
		Path:  path,
	}
}
