package matchcore

import "fmt"

// FatalError marks the tier-3 failures from spec.md §7: conditions the
// engine cannot recover from within the current command, because they
// signal a programmer error rather than bad input. The caller should stop
// routing commands to this engine instance.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

func errInvariant(format string, args ...interface{}) error {
	return &FatalError{msg: fmt.Sprintf("invariant violated: "+format, args...)}
}

func errUnsupportedOrderType(t OrderType) error {
	return &FatalError{msg: fmt.Sprintf("unsupported order type: %d", t)}
}

func errBudgetFillMismatch(want, got uint64) error {
	return &FatalError{msg: fmt.Sprintf("budget check passed but fill failed: wanted %d, matched %d", want, got)}
}

// IsFatal reports whether err is one of the tier-3 failures above.
func IsFatal(err error) bool {
	_, ok := err.(*FatalError)
	return ok
}
