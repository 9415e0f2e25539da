// Package errors provides the error kinds shared by git-lab's core packages.
// Core code never terminates the process; it returns an *Error and the
// command layer decides what a given Kind means for the exit status.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindDiscovery: no enclosing git repository.
	KindDiscovery
	// KindRemoteMissing: no "origin" remote, or it has no URL.
	KindRemoteMissing
	// KindURLFormat: a remote URL matches none of the recognized grammars.
	KindURLFormat
	// KindCredentialMissing: nothing stored for the forge hostname.
	KindCredentialMissing
	// KindAuthentication: the forge rejected the credential or could not be reached.
	KindAuthentication
	// KindProjectLookup: the forge has no matching project or the call failed.
	KindProjectLookup
	// KindBranchOperation: git refused a checkout or branch creation.
	KindBranchOperation
	KindConfig
	KindIO
	KindInvalid
	KindForge
)

func (k Kind) String() string {
	switch k {
	case KindDiscovery:
		return "discovery error"
	case KindRemoteMissing:
		return "remote missing"
	case KindURLFormat:
		return "url format error"
	case KindCredentialMissing:
		return "credential missing"
	case KindAuthentication:
		return "authentication error"
	case KindProjectLookup:
		return "project lookup error"
	case KindBranchOperation:
		return "branch operation error"
	case KindConfig:
		return "configuration error"
	case KindIO:
		return "I/O error"
	case KindInvalid:
		return "invalid"
	case KindForge:
		return "forge error"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for git-lab.
//
// Message is what the user sees. Err, when set, is the underlying cause and
// is only appended for diagnostics by Error().
type Error struct {
	Op      Op
	Kind    Kind
	Message string
	Err     error
}

// Error returns the error message.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: the user-facing message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Message = a
		case error:
			e.Err = a
		}
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the text meant for the user: the Message of the
// outermost *Error, or err.Error() for foreign errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
