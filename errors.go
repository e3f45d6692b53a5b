package apireview

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes reported by document validation.
const (
	CodeParseError       = "parse_error"
	CodeMissingField     = "missing_field"
	CodeInvalidType      = "invalid_type"
	CodeInvalidValue     = "invalid_value"
	CodeUnsupported      = "unsupported_version"
	CodeDuplicateOpID    = "duplicate_operation_id"
	CodeUnresolvedRef    = "unresolved_ref"
	CodeInvalidParameter = "invalid_parameter"
)

// Issue is a single validation finding.
type Issue struct {
	Path    string // JSON Pointer into the source document.
	Code    string
	Message string
}

// Issues is a collection of validation findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, " (%s)", it.Message)
		}
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error chain.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// LoadStage names the step of document loading that failed.
type LoadStage string

const (
	StageRead        LoadStage = "read"
	StageParse       LoadStage = "parse"
	StageValidate    LoadStage = "validate"
	StageDereference LoadStage = "dereference"
)

// LoadError reports a failed document load. No partial spec accompanies it.
type LoadError struct {
	Side  Side
	Stage LoadStage
	Err   error
}

func (e *LoadError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("apireview: load %s: %s failed: %v", e.Side, e.Stage, e.Err)
	}
	return fmt.Sprintf("apireview: %s failed: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
