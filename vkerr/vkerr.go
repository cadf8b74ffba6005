// Package vkerr defines the five error kinds shared across the shader
// translation core (spec §7): invalid argument, out of memory, adapter
// not found, driver-version mismatch, and invalid shader. Every package
// in this module (dxbc, rootsig, tpf, pipeline, dxil, the root façade)
// returns errors of this shape so a caller can branch on kind with
// errors.Is regardless of which package produced the error.
package vkerr

import "fmt"

// Kind is one of the five error kinds named in spec.md §7.
type Kind int

const (
	// InvalidArgument covers malformed binary input: wrong magic,
	// truncated chunk, impossible offset, unknown version, descriptor-
	// table heterogeneity, compat-record mismatches.
	InvalidArgument Kind = iota
	// OutOfMemory covers allocation failure during parse/serialise/compile.
	OutOfMemory
	// AdapterNotFound covers a persisted blob whose vendor/device id
	// disagrees with the current device.
	AdapterNotFound
	// DriverVersionMismatch covers a persisted blob whose build tag,
	// shader-interface key, UUID, or checksum disagrees.
	DriverVersionMismatch
	// InvalidShader covers a shader body that failed to parse; only
	// surfaced by the DXIL delegation path.
	InvalidShader
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case OutOfMemory:
		return "out of memory"
	case AdapterNotFound:
		return "adapter not found"
	case DriverVersionMismatch:
		return "driver version mismatch"
	case InvalidShader:
		return "invalid shader"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type every package in this module returns.
// Op names the failing operation (e.g. "dxbc.Parse", "rootsig.Convert")
// for diagnostics; Err, when non-nil, is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same Kind, so
// errors.Is(err, vkerr.New(vkerr.InvalidArgument, "", "")) works without
// callers needing to match Op or Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errString(msg)}
}

// Wrap constructs an *Error wrapping an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

type errString string

func (e errString) Error() string { return string(e) }

// Sentinel values for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, vkerr.ErrInvalidArgument).
var (
	ErrInvalidArgument       = &Error{Kind: InvalidArgument}
	ErrOutOfMemory           = &Error{Kind: OutOfMemory}
	ErrAdapterNotFound       = &Error{Kind: AdapterNotFound}
	ErrDriverVersionMismatch = &Error{Kind: DriverVersionMismatch}
	ErrInvalidShader         = &Error{Kind: InvalidShader}
)
