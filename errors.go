package veld

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes.
const (
	CodeMissingField     = "missing_field"
	CodeTypeMismatch     = "type_mismatch"
	CodeOutOfRange       = "out_of_range"
	CodeTooLong          = "too_long"
	CodeBadFormat        = "bad_format"
	CodeHookViolation    = "hook_violation"
	CodeComputationError = "computation_error"
	CodeFilterConflict   = "filter_conflict"
	CodeUnknownKey       = "unknown_key"
	// Definition-time programmer errors (malformed descriptors, bad hook targets).
	CodeInvalidSchema = "invalid_schema"
	// Input decoding failures (ParseJSON/ParseYAML) before validation starts.
	CodeParseError = "parse_error"
)

// Violation represents a single validation entry.
type Violation struct {
	Path    string // JSON Pointer (for example: /address/state).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"max":120, "got":130})
	// for i18n and observability.
	Params map[string]any
}

// Report is a collection of violations that implements error. A validation
// attempt yields either a Record or a non-empty Report, never both.
type Report []Violation

// Error summarizes the first few violations.
func (r Report) Error() string {
	if len(r) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(r)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		v := r[i]
		// e.g. out_of_range at /age
		fmt.Fprintf(b, "%s at %s", v.Code, v.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Has reports whether any violation carries the given code.
func (r Report) Has(code string) bool {
	for _, v := range r {
		if v.Code == code {
			return true
		}
	}
	return false
}

// At returns the violations recorded at the given path.
func (r Report) At(path string) Report {
	var out Report
	for _, v := range r {
		if v.Path == path {
			out = append(out, v)
		}
	}
	return out
}

// AppendViolations appends violations to the destination, initializing the
// slice when needed.
func AppendViolations(dst Report, more ...Violation) Report {
	if dst == nil {
		dst = Report{}
	}
	dst = append(dst, more...)
	return dst
}

// AsReport extracts a Report from an error using errors.As internally.
func AsReport(err error) (Report, bool) {
	if err == nil {
		return nil, false
	}
	var r Report
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// rebase prefixes child violation paths with the parent field path so nested
// failures read as /field/child rather than /child.
func rebase(base string, child Report) Report {
	out := make(Report, 0, len(child))
	for _, v := range child {
		p := v.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		out = append(out, Violation{Path: p, Code: v.Code, Message: v.Message, Hint: v.Hint, Cause: v.Cause, Params: v.Params})
	}
	return out
}

// reportFromErr converts an arbitrary error into a Report rooted at path,
// wrapping non-Report errors with the given fallback code.
func reportFromErr(path, code string, err error) Report {
	if err == nil {
		return nil
	}
	if r, ok := AsReport(err); ok {
		return rebase(path, r)
	}
	return Report{{Path: path, Code: code, Message: err.Error(), Cause: err}}
}
