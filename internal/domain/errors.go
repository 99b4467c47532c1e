package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Every kind is fatal for the whole merge.
type Kind string

const (
	KindUnsupportedVersion   Kind = "unsupported_version"
	KindIncompatibleVersions Kind = "incompatible_versions"
	KindParse                Kind = "parse"
	KindSchemaMismatch       Kind = "schema_mismatch"
	KindInvalidID            Kind = "invalid_id"
	KindImageName            Kind = "image_name"
	KindIO                   Kind = "io"
)

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a context message. A nil err stays nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
