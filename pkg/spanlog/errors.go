package spanlog

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNilFormatter is returned by Logger.Log when it is asked to emit a
	// record without a formatter.
	ErrNilFormatter = errors.New("spanlog: formatter is required")
	// ErrEmptyName is returned by Provider.CreateLogger for an empty name.
	ErrEmptyName = errors.New("spanlog: logger name is required")
	// ErrInvalidLevel is returned by ParseLevel.
	ErrInvalidLevel = errors.New("spanlog: invalid level")
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// errorKind returns the bare type name of the cause of err, without package
// or pointer. github.com/pkg/errors wrappers are looked through.
func errorKind(err error) string {
	t := reflect.TypeOf(errors.Cause(err))
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// errorStack returns the stack recorded by the innermost
// github.com/pkg/errors error in the chain, or "" when there is none.
func errorStack(err error) string {
	var st stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := e.(stackTracer); ok {
			st = s
		}
	}
	if st == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", st.StackTrace()), "\n")
}
