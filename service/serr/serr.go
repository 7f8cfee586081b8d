// Package serr holds common error objects used across the BarScript run
// service.
//
// Notably, it contains the Error type, which can be created with one or more
// 'cause' errors. Calling errors.Is() on this Error type with an argument
// consisting of any of the errors it has as a cause will return true.
package serr

import "errors"

var (
	ErrBadCredentials = errors.New("the supplied username/password combination is incorrect")
	ErrPermissions    = errors.New("you don't have permission to do that")
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrAlreadyExists  = errors.New("resource with same identifying information already exists")
	ErrDB             = errors.New("an error occurred with the DB")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal  = errors.New("malformed data in request")
	ErrCompile        = errors.New("script failed to compile")
)

// Error is a typed error returned by functions in the run service as their
// error value. It carries both a message and zero or more causes, and is
// compatible with errors.Is: calling errors.Is on an Error along with any
// value it holds as a cause returns true.
type Error struct {
	msg   string
	cause []error
}

func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					return false
				}
			}
			return true
		}
		return false
	}

	for _, c := range e.cause {
		if c == target {
			return true
		}
	}
	return false
}

// WrapDB wraps err as a cause and adds ErrDB as an additional cause.
func WrapDB(msg string, err error) Error {
	return Error{msg: msg, cause: []error{err, ErrDB}}
}

// New creates an Error with the given message and optional causes.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = append(err.cause, causes...)
	}
	return err
}
