package pbitdoc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds of the pipeline.
var (
	ErrSchemaNotFound   = errors.New("pbitdoc: DataModelSchema not found in archive")
	ErrMalformedArchive = errors.New("pbitdoc: not a valid archive")
	ErrMalformedSchema  = errors.New("pbitdoc: DataModelSchema is not valid JSON")
	ErrProcessing       = errors.New("pbitdoc: processing failed")
)

// Pipeline stages reported in ProcessError.Op.
const (
	OpRead     = "read"
	OpParse    = "parse"
	OpSimplify = "simplify"
	OpRender   = "render"
)

// ProcessError represents a failure during a specific pipeline stage.
// errors.Is matches both the failure kind and the underlying cause.
type ProcessError struct {
	Op   string // stage, e.g. "read", "render"
	Kind error  // one of the sentinel errors above
	Err  error  // underlying error, may be nil
}

func (e *ProcessError) Error() string {
	msg := strings.TrimPrefix(e.Kind.Error(), "pbitdoc: ")
	if e.Err != nil {
		return fmt.Sprintf("pbitdoc.%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("pbitdoc.%s: %s", e.Op, msg)
}

func (e *ProcessError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newProcessError creates a ProcessError for the given stage and kind.
func newProcessError(op string, kind, err error) *ProcessError {
	return &ProcessError{Op: op, Kind: kind, Err: err}
}

// Message returns the human-readable message shown at the HTTP, CLI and MCP
// boundaries, where all failure kinds collapse into one.
func Message(err error) string {
	var pe *ProcessError
	if errors.As(err, &pe) {
		msg := strings.TrimPrefix(pe.Kind.Error(), "pbitdoc: ")
		if pe.Err != nil {
			return msg + ": " + pe.Err.Error()
		}
		return msg
	}
	return err.Error()
}
