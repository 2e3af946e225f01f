package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"typereflect/internal/match"
)

// Diagnostic codes.
const (
	CodeUnknownDirective = "unknown-directive"
	CodeBadDirective     = "bad-directive"
	CodeUnknownType      = "unknown-type"
	CodeBadParent        = "bad-parent"
	CodeDetachedParent   = "detached-parent"
	CodeCyclicParents    = "cyclic-parents"
	CodeGenericType      = "generic-type"
	CodeUnrepresentable  = "unrepresentable"
	CodeBadMetadata      = "bad-metadata"
	CodeNoMembers        = "no-members"
)

// maxSuggestions caps the "did you mean" list of a diagnostic.
const maxSuggestions = 3

// Diagnostics holds all diagnostic information from a scan.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this kind of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Type is the reflected type this relates to (if any).
	Type string
	// Member is the attribute or method this relates to (if any).
	Member string
	// Pos is the source position, "file:line:col".
	Pos string
	// Suggestions are close names for an unresolved one.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return "unknown"
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, member string) *Diagnostic {
	return d.add(&d.Errors, DiagnosticError, code, message, typeName, member)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, member string) *Diagnostic {
	return d.add(&d.Warnings, DiagnosticWarning, code, message, typeName, member)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typeName, member string) *Diagnostic {
	return d.add(&d.Infos, DiagnosticInfo, code, message, typeName, member)
}

func (d *Diagnostics) add(list *[]Diagnostic, sev DiagnosticSeverity, code, message, typeName, member string) *Diagnostic {
	*list = append(*list, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Member:   member,
	})

	return &(*list)[len(*list)-1]
}

// At sets the source position.
func (d *Diagnostic) At(pos string) *Diagnostic {
	d.Pos = pos
	return d
}

// Suggest fills Suggestions with the names of known closest to name.
func (d *Diagnostic) Suggest(name string, known []string) *Diagnostic {
	d.Suggestions = match.Suggest(name, known, maxSuggestions)
	return d
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Pos != "" {
		prefix = append(prefix, d.Pos+":")
	}

	if d.Type != "" {
		prefix = append(prefix, "["+d.Type+"]")
	}

	if d.Member != "" {
		prefix = append(prefix, d.Member)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
