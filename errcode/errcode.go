package errcode

import "strings"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK              Code = "ok"
	InvalidPosition Code = "invalid_position" // wire error for out-of-range SETPOS
	InvalidPayload  Code = "invalid_payload"
	NotReady        Code = "not_ready"

	NoCard    Code = "no_card"
	Timeout   Code = "timeout"
	Collision Code = "collision"
	Checksum  Code = "checksum"
	Protocol  Code = "protocol"
	IOError   Code = "io_error"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code by message
// heuristics, so the error taxonomy stays decoupled from driver
// packages. Driver sentinels follow the "pkg: reason" convention.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no card"):
		return NoCard
	case strings.Contains(msg, "timeout"):
		return Timeout
	case strings.Contains(msg, "collision"):
		return Collision
	case strings.Contains(msg, "checksum"):
		return Checksum
	case strings.Contains(msg, "protocol"):
		return Protocol
	}
	return IOError
}
