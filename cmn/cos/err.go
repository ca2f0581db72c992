// Package cos provides common low-level types and utilities shared by all
// over-there packages: ids, checksums, ttl bookkeeping, and the error
// sentinels the rest of the tree wraps with github.com/pkg/errors.
package cos

import "fmt"

type (
	// ErrNotFound is returned by table lookups (file handle, process handle)
	// that found nothing under the given key.
	ErrNotFound struct {
		what string
	}

	// ErrSigMismatch is returned when a mutating file operation presents a
	// sig that no longer matches the handle's current sig.
	ErrSigMismatch struct {
		ID         uint32
		CurrentSig uint32
	}

	// ErrPermission is returned when an open file lacks the permission the
	// requested operation needs.
	ErrPermission struct {
		Path string
		Op   string
	}

	// ErrInvalidData covers structurally-rejected operations: renaming or
	// removing a directory that has an open file somewhere under it,
	// negative/overflowing indices, and similar "arguments into this
	// operation don't make sense together" cases.
	ErrInvalidData struct {
		Reason string
	}
)

// IOError is implemented by every error in this package that corresponds
// to one of the io_error_kind values dispatch reports in an IoErrorReply.
type IOError interface {
	error
	IOKind() string
}

func NewErrNotFound(format string, a ...any) *ErrNotFound {
	return &ErrNotFound{what: fmt.Sprintf(format, a...)}
}

func (e *ErrNotFound) Error() string { return e.what + " does not exist" }
func (e *ErrNotFound) IOKind() string { return "NotFound" }

func IsErrNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

func NewErrSigMismatch(id, currentSig uint32) *ErrSigMismatch {
	return &ErrSigMismatch{ID: id, CurrentSig: currentSig}
}

func (e *ErrSigMismatch) Error() string {
	return fmt.Sprintf("file %d: sig mismatch (current=%d)", e.ID, e.CurrentSig)
}

func IsErrSigMismatch(err error) bool {
	_, ok := err.(*ErrSigMismatch)
	return ok
}

func NewErrPermission(path, op string) *ErrPermission {
	return &ErrPermission{Path: path, Op: op}
}

func (e *ErrPermission) Error() string {
	return fmt.Sprintf("%s: permission denied for %s", e.Path, e.Op)
}
func (e *ErrPermission) IOKind() string { return "PermissionDenied" }

func NewErrInvalidData(format string, a ...any) *ErrInvalidData {
	return &ErrInvalidData{Reason: fmt.Sprintf(format, a...)}
}

func (e *ErrInvalidData) Error() string  { return e.Reason }
func (e *ErrInvalidData) IOKind() string { return "InvalidData" }
