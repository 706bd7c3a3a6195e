package errors

import "fmt"

// ConfigError indicates invalid configuration or an invalid scan root. It is
// the only error class that prevents a scan from starting.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError instance.
func NewConfigError(reason string, err error) error {
	return &ConfigError{Reason: reason, Err: err}
}

// FileAccessError indicates a per-file read failure. It is recorded on the
// file record and never aborts a scan.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot read %q: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// NewFileAccessError creates a new FileAccessError instance.
func NewFileAccessError(path string, err error) error {
	return &FileAccessError{Path: path, Err: err}
}

// AIUnavailableError indicates that the AI endpoint was unreachable, timed
// out after retries, or returned an unparseable response. The scan degrades
// to pattern-only results for the affected file.
type AIUnavailableError struct {
	Model string
	Err   error
}

func (e *AIUnavailableError) Error() string {
	return fmt.Sprintf("ai analysis unavailable for model %q: %v", e.Model, e.Err)
}

func (e *AIUnavailableError) Unwrap() error { return e.Err }

// NewAIUnavailableError creates a new AIUnavailableError instance.
func NewAIUnavailableError(model string, err error) error {
	return &AIUnavailableError{Model: model, Err: err}
}

// PersistenceError indicates a report store failure. The in-memory report
// remains valid; the caller may retry Save independently.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("report store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError creates a new PersistenceError instance.
func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// CancellationError indicates an aborted scan. The caller receives the
// partial report alongside this error.
type CancellationError struct {
	Err error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("scan canceled: %v", e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }

// NewCancellationError creates a new CancellationError instance.
func NewCancellationError(err error) error {
	return &CancellationError{Err: err}
}
