package shared

import (
	"errors"
	"fmt"
)

type ErrorSource int

const (
	// ErrorSourceTransport covers network failures and undecodable replies.
	ErrorSourceTransport ErrorSource = iota
	// ErrorSourceApplication covers well-formed replies that report success=false.
	ErrorSourceApplication
	ErrorSourceUser
	ErrorSourceUnknown
)

func (s ErrorSource) String() string {
	switch s {
	case ErrorSourceTransport:
		return "transport"
	case ErrorSourceApplication:
		return "application"
	case ErrorSourceUser:
		return "user"
	}
	return "unknown"
}

type Error struct {
	Source  ErrorSource
	Message string
	Err     error
}

func Errorf(source ErrorSource, format string, a ...any) *Error {
	return &Error{
		Source:  source,
		Message: fmt.Sprintf(format, a...),
	}
}

func Wrap(source ErrorSource, err error, format string, a ...any) *Error {
	return &Error{
		Source:  source,
		Message: fmt.Sprintf(format, a...),
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SourceOf reports the source of the first *Error in err's chain.
func SourceOf(err error) ErrorSource {
	var e *Error
	if errors.As(err, &e) {
		return e.Source
	}
	return ErrorSourceUnknown
}
