package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // rejected changes, failed namespaces, invalid files
	ExitCommandError = 2 // bad flags, missing stores, unusable data roots
)

// ExitError carries a process exit code alongside the error message so
// main can map command failures to the right status.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// failf builds an ExitError from a format string.
func failf(code int, format string, args ...interface{}) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// wrapExit attaches an exit code to an underlying error.
func wrapExit(code int, op string, err error) *ExitError {
	return &ExitError{Code: code, Message: op, Err: err}
}

// ExitCode maps an error to the process exit code. Anything that is
// not an ExitError counts as a pipeline failure.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Printer renders command results as human-readable text or as JSON
// envelopes, depending on the global --format flag.
type Printer struct {
	Format  string
	Out     io.Writer
	Diag    io.Writer // diagnostic output; defaults to Out when nil
	Verbose bool
}

// Envelope is the JSON shape every command emits in json mode.
type Envelope struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   interface{}    `json:"data,omitempty"`
	Error  *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError is the error half of a JSON envelope.
type EnvelopeError struct {
	Code    string      `json:"code"` // "E001" style
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// JSON writes data wrapped in an ok envelope, indented for review.
func (p *Printer) JSON(data interface{}) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(Envelope{Status: "ok", Data: data})
}

// Error reports a failure in the configured format.
func (p *Printer) Error(code, message string, details interface{}) error {
	if p.Format == "json" {
		return json.NewEncoder(p.Out).Encode(Envelope{
			Status: "error",
			Error:  &EnvelopeError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(p.Out, "Error [%s]: %s\n", code, message)
	if p.Verbose && details != nil {
		fmt.Fprintf(p.Out, "Details: %v\n", details)
	}
	return nil
}

// Debugf prints only in verbose mode. It writes to the diagnostic
// writer so json output on Out stays parseable.
func (p *Printer) Debugf(format string, args ...interface{}) {
	if !p.Verbose {
		return
	}
	w := p.Diag
	if w == nil {
		w = p.Out
	}
	fmt.Fprintf(w, format+"\n", args...)
}
