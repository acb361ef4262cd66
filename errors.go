package xbase

// ColumnAddError, RowAddError, and ReadError are the three error kinds
// surfaced at the library boundary. Each wraps an underlying cause built
// with github.com/pkg/errors, which records a stack trace. The wrapper types
// do not implement fmt.Formatter, so %+v on them prints only the message;
// the trace is printed by formatting the unwrapped cause with %+v.

type ColumnAddError struct {
	cause error
}

func (e *ColumnAddError) Error() string { return "xbase: add column: " + e.cause.Error() }
func (e *ColumnAddError) Unwrap() error { return e.cause }

type RowAddError struct {
	cause error
}

func (e *RowAddError) Error() string { return "xbase: add row: " + e.cause.Error() }
func (e *RowAddError) Unwrap() error { return e.cause }

type ReadError struct {
	cause error
}

func (e *ReadError) Error() string { return "xbase: read: " + e.cause.Error() }
func (e *ReadError) Unwrap() error { return e.cause }
