package runtime

import "fmt"

// FatalError is the one runtime failure mode spec.md §7 says must abort a
// run: a state-table desynchronization, detected as a type mismatch on
// slot access. It carries the bar index and a human message, following the
// dual message/cause shape of the teacher's tqerrors.interpreterError
// (internal/tqerrors/error.go) — here there is no underlying Go error to
// wrap, since the condition is detected directly rather than bubbling up
// from a lower layer.
type FatalError struct {
	BarIndex int
	Message  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: bar %d: %s", e.BarIndex, e.Message)
}

// AsFatalError recovers a FatalError from a panic raised by GetOrInitSlot,
// stamping in the bar index that was active when the slot mismatch was
// discovered (GetOrInitSlot itself does not know the current bar).
func AsFatalError(r interface{}, barIndex int) (*FatalError, bool) {
	fe, ok := r.(*FatalError)
	if !ok {
		return nil, false
	}
	fe.BarIndex = barIndex
	return fe, true
}
