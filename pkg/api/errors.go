package api

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGraph is returned when a component graph has no endpoints.
	ErrEmptyGraph = errors.New("component graph has no endpoints")

	// ErrNoExtractor is returned by ConvertDocument when the converter was
	// built without an extractor.
	ErrNoExtractor = errors.New("no extractor configured")
)

// ExtractionError reports that the extraction oracle never produced a valid
// component graph within its retry budget. No synthetic fallback content is
// substituted; the failure is surfaced as-is so data-quality problems stay
// visible.
type ExtractionError struct {
	Attempts int
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsExtractionError returns the typed error if err originated in the
// extraction stage.
func IsExtractionError(err error) (*ExtractionError, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// CompileError identifies a failure in the compilation stage, tagged with
// the endpoint that could not be compiled.
type CompileError struct {
	Endpoint string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile endpoint %q: %v", e.Endpoint, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// PackagingError identifies a failure while assembling or archiving the
// deployable package. Re-invoking the whole conversion from the same input
// is safe; packaging is not retried internally.
type PackagingError struct {
	Path string
	Err  error
}

func (e *PackagingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("packaging: %v", e.Err)
	}
	return fmt.Sprintf("packaging %s: %v", e.Path, e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }
