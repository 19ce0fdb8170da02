// Package errs defines pedis's structured error type. It lives below
// internal/keyspace, internal/command, internal/snapshot, and the
// top-level pedis package so all of them can construct and inspect these
// errors without an import cycle; the top-level package re-exports the
// same type as pedis.Error for the public API surface (spec.md §7).
package errs

import (
	"errors"
	"fmt"
	"syscall"
)

// Error is a structured pedis error with operation context and errno
// mapping, modeled on the teacher's device-error type but scoped to a
// key/value server: no DevID/Queue, since there is no device or queue
// concept here.
type Error struct {
	Op    string // operation that failed, e.g. "SET", "BGSAVE"
	Code  Code   // high-level error category
	Errno syscall.Errno
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("pedis: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("pedis: %s", msg)
}

// Unwrap supports errors.Is/As over Inner.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is lets errors.Is match two *Error values by Code alone, so callers can
// write errors.Is(err, errs.New("", errs.WrongType, "", nil)).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// Code is a high-level error category, stable across Op values so callers
// can branch on it (e.g. to pick a RESP error prefix).
type Code string

const (
	WrongType        Code = "WRONGTYPE"
	UnknownCommand   Code = "unknown command"
	WrongArity       Code = "wrong number of arguments"
	InvalidDBIndex   Code = "invalid DB index"
	BgsaveInProgress Code = "background save already in progress"
	SnapshotIO       Code = "snapshot I/O error"
	NotAnInteger     Code = "value is not an integer or out of range"
	NoSuchKey        Code = "no such key"
)

// New builds a structured Error.
func New(op string, code Code, msg string, inner error) *Error {
	return &Error{Op: op, Code: code, Msg: msg, Inner: inner}
}

// WrapSyscall wraps a syscall error encountered during a snapshot or
// socket operation, mapping its errno onto a Code.
func WrapSyscall(op string, errno syscall.Errno) *Error {
	return &Error{Op: op, Code: mapErrnoToCode(errno), Errno: errno, Msg: errno.Error(), Inner: errno}
}

func mapErrnoToCode(errno syscall.Errno) Code {
	switch errno {
	case syscall.ENOSPC, syscall.ENOMEM:
		return SnapshotIO
	case syscall.EACCES, syscall.EPERM:
		return SnapshotIO
	default:
		return SnapshotIO
	}
}

// IsCode reports whether err is (or wraps) an *Error with the given Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
