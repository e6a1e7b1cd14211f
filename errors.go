package vfs

import "fmt"

// NotFoundError is reported, not fatal, whenever a path, overlay name, or AST type tag required to complete
// an operation does not exist. Reporting it resets any in-flight output redirection (see §7 of the design spec).
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return "NotFoundError: " + e.Path
}

// Unwrap returns nil or the cause.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// ConflictError is returned when a path resolves to more than one overlay and the active conflict policy
// cannot disambiguate between them. Candidates lists the overlay names involved, in overlay-id order.
type ConflictError struct {
	Path       string
	Candidates []string
	Cause      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ConflictError: %s is ambiguous across overlays %v", e.Path, e.Candidates)
}

// Unwrap returns nil or the cause.
func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// FormatError is fatal for the operation that raised it: a container header is unreadable, a record is
// truncated, trailing bytes follow a payload, a record tag is unknown, or a fixup target is missing. The
// overlay being loaded is left unmounted; writers never partially overwrite their destination because the
// backup is created before any byte of the new content is written.
type FormatError struct {
	// Offset is the byte offset in the source stream at which the problem was detected, or -1 if not
	// applicable (e.g. a missing fixup target, which is reported by referring/target path instead).
	Offset int64
	Detail string
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("FormatError: %s (at byte offset %d)", e.Detail, e.Offset)
	}
	return "FormatError: " + e.Detail
}

// Unwrap returns nil or the cause.
func (e *FormatError) Unwrap() error {
	return e.Cause
}

// ExternalError wraps a failure from outside the VFS tree itself: host mount I/O, a remote mount's socket,
// the AI provider adapter, or external-command capture. It always converts to a command failure; the REPL
// keeps running.
type ExternalError struct {
	Source string
	Cause  error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("ExternalError: %s: %v", e.Source, e.Cause)
}

// Unwrap returns nil or the cause.
func (e *ExternalError) Unwrap() error {
	return e.Cause
}

// UsageError is reported for malformed command-line arguments, flag parsing failures, or an invalid
// placement of a chain/pipeline operator. Message should be a short, human-readable help string.
type UsageError struct {
	Message string
	Cause   error
}

func (e *UsageError) Error() string {
	return "UsageError: " + e.Message
}

// Unwrap returns nil or the cause.
func (e *UsageError) Unwrap() error {
	return e.Cause
}

// UnsupportedOperationError is returned when a Node variant does not support an operation at all, e.g.
// writing to a Dir or reading a host directory Mount through its own Write.
type UnsupportedOperationError struct {
	Message string
	Cause   error
}

func (e *UnsupportedOperationError) Error() string {
	return "UnsupportedOperationError: " + e.Message
}

// Unwrap returns nil or the cause.
func (e *UnsupportedOperationError) Unwrap() error {
	return e.Cause
}

// PermissionDeniedError is returned if something is not allowed, either by session policy (e.g. a mount
// command issued while mount_allowed is false) or by the backend it delegates to.
type PermissionDeniedError struct {
	Message string
	Cause   error
}

func (e *PermissionDeniedError) Error() string {
	return "PermissionDeniedError: " + e.Message
}

// Unwrap returns nil or the cause.
func (e *PermissionDeniedError) Unwrap() error {
	return e.Cause
}
