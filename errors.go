package pedis

import (
	"github.com/ehrlich-b/pedis/internal/errs"
)

// Error is pedis's structured error type, re-exported from internal/errs
// so the public API and every internal package share one representation
// without a cycle (internal/keyspace and internal/command construct
// internal/errs.Error directly; this package only aliases it).
type Error = errs.Error

// ErrorCode names a high-level error category, stable across operations.
type ErrorCode = errs.Code

// Named error codes from spec.md §7's reply taxonomy.
const (
	ErrWrongType        = errs.WrongType
	ErrUnknownCommand   = errs.UnknownCommand
	ErrWrongArity       = errs.WrongArity
	ErrInvalidDBIndex   = errs.InvalidDBIndex
	ErrBgsaveInProgress = errs.BgsaveInProgress
	ErrSnapshotIO       = errs.SnapshotIO
	ErrNotAnInteger     = errs.NotAnInteger
	ErrNoSuchKey        = errs.NoSuchKey
)

// NewError builds a structured Error, mirroring internal/errs.New.
func NewError(op string, code ErrorCode, msg string) *Error {
	return errs.New(op, code, msg, nil)
}

// WrapError wraps inner with op, preserving its Code if inner is already
// a pedis Error, else categorising it as generic snapshot I/O.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if e, ok := inner.(*Error); ok {
		return errs.New(op, e.Code, e.Msg, e.Inner)
	}
	return errs.New(op, errs.SnapshotIO, inner.Error(), inner)
}

// IsCode reports whether err is (or wraps) a pedis Error with the given
// ErrorCode.
func IsCode(err error, code ErrorCode) bool {
	return errs.IsCode(err, code)
}
