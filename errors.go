package frogfs

import (
	"errors"
	"reflect"

	"github.com/dsoprea/go-logging"
)

// Sentinel errors for the taxonomy defined in the specification. These are
// returned directly, never through log.Wrap, so callers can compare them
// with == or errors.Is; log.Wrap/catch below is reserved for panics that
// signal an internal bug, not for these expected outcomes.
var (
	ErrNullPointer      = errors.New("null pointer")
	ErrIO               = errors.New("storage io error")
	ErrNotFormatted     = errors.New("medium not formatted")
	ErrInvalidRecord    = errors.New("invalid record index or size")
	ErrNoSpace          = errors.New("no free space available")
	ErrNotWritable      = errors.New("record not open for write")
	ErrNotReadable      = errors.New("record open for write")
	ErrInvalidOperation = errors.New("invalid operation for record state")
	ErrOutOfRange       = errors.New("malformed metadata or pointer out of range")
)

// catch is installed via defer at the top of every exported Filesystem method
// and of the storage adapter methods that can panic. It turns
// a panic(error) raised anywhere beneath it (directly, or via log.PanicIf)
// into a returned, wrapped error instead of crashing the process.
func catch(err *error) {
	if errRaw := recover(); errRaw != nil {
		if asErr, ok := errRaw.(error); ok == true {
			*err = log.Wrap(asErr)
		} else {
			*err = log.Errorf("panic value was not an error: [%s] [%v]", reflect.TypeOf(errRaw).Name(), errRaw)
		}
	}
}
