// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import "fmt"

// ErrorKind categorizes shader build errors.
//
// ErrorKind implements error so it can be used as an errors.Is target:
//
//	if errors.Is(err, shader.ErrCompileFailed) { ... }
type ErrorKind uint8

const (
	// ErrToolchainUnavailable indicates the compiler toolchain could not be
	// created. Shader compilation cannot proceed at all.
	ErrToolchainUnavailable ErrorKind = iota

	// ErrCompileFailed indicates the toolchain rejected the source or produced
	// no bytecode. Diagnostics carry the toolchain output.
	ErrCompileFailed

	// ErrUnsupportedFormat indicates a vertex attribute or storage format that
	// has no engine pixel format.
	ErrUnsupportedFormat

	// ErrUnsupportedType indicates a resource or member type the engine cannot
	// describe, such as a cube array texture.
	ErrUnsupportedType

	// ErrValidationWarning indicates a non-fatal lint or signing issue.
	// It is logged, never returned from a successful compile.
	ErrValidationWarning

	// ErrReflectionFailed indicates the bytecode could not be reflected.
	ErrReflectionFailed

	// ErrInvalidPolicy indicates a malformed compile policy.
	ErrInvalidPolicy

	// ErrUnmappedProfile indicates a (stage, shader model) pair without a
	// target profile.
	ErrUnmappedProfile

	// ErrInvalidStream indicates a malformed serialized shader resource.
	ErrInvalidStream
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrToolchainUnavailable:
		return "ToolchainUnavailable"
	case ErrCompileFailed:
		return "CompileFailed"
	case ErrUnsupportedFormat:
		return "UnsupportedFormat"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrValidationWarning:
		return "ValidationWarning"
	case ErrReflectionFailed:
		return "ReflectionFailed"
	case ErrInvalidPolicy:
		return "InvalidPolicy"
	case ErrUnmappedProfile:
		return "UnmappedProfile"
	case ErrInvalidStream:
		return "InvalidStream"
	default:
		return "Unknown"
	}
}

// Error implements the error interface.
func (k ErrorKind) Error() string {
	return "shader: " + k.String()
}

// Error represents a shader build error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Diagnostics holds raw toolchain output, if any.
	Diagnostics string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("shader %s: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Diagnostics != "" {
		msg += "\n" + e.Diagnostics
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches an ErrorKind target against the error's kind.
func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && e.Kind == kind
}

// NewError creates a new error without a cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a new error around a cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// CompileError creates an ErrCompileFailed error carrying toolchain output.
func CompileError(message, diagnostics string) *Error {
	return &Error{Kind: ErrCompileFailed, Message: message, Diagnostics: diagnostics}
}
