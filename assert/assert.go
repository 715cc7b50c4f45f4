// Package assert provides invariant checks for conditions that can only fail through a programming error
// in physcore itself. Expected runtime conditions are never asserted.
package assert

import "github.com/oomph-ac/physcore/oerror"

// IsTrue panics with a formatted PhysError if ok is false.
func IsTrue(ok bool, message string, args ...any) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}

// IsFalse panics with a formatted PhysError if ok is true.
func IsFalse(ok bool, message string, args ...any) {
	IsTrue(!ok, message, args...)
}
