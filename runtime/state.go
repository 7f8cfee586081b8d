package runtime

import "fmt"

// StateTable is the persistent per-call-site state table spec.md §4.5
// describes: a dense, ordered array of slots, addressed by a monotone
// counter that resets to zero at the start of every bar. Every indicator
// call consumes exactly one slot per bar, in the same order every bar —
// that stable ordering is the correctness contract between the runtime,
// this table, and the ta package.
type StateTable struct {
	slots   []interface{}
	counter int
}

func NewStateTable() *StateTable {
	return &StateTable{}
}

// ResetCallCounter is the "pre-step" of execute_bar (§4.4): the counter
// goes back to zero so the same call site lines up with the same slot
// index on every bar.
func (t *StateTable) ResetCallCounter() {
	t.counter = 0
}

// GetOrInitSlot reads the counter, increments it, and returns the slot at
// that index, creating it via factory on first use. The slot's
// constructor is only consulted the first time a call site is reached;
// every later bar reuses whatever the factory produced.
func GetOrInitSlot[T any](t *StateTable, factory func() T) *T {
	idx := t.counter
	t.counter++

	if idx < len(t.slots) {
		if existing, ok := t.slots[idx].(*T); ok {
			return existing
		}
		// A slot exists at this index but holds a different type than the
		// caller expected: the call-site ordering invariant (§4.4/§5) was
		// violated by user control flow reordering indicator calls between
		// bars. This is the one runtime condition spec.md §7 calls fatal.
		panic(&FatalError{
			BarIndex: -1,
			Message:  fmt.Sprintf("state slot %d type mismatch: call-site order changed between bars", idx),
		})
	}

	slot := new(T)
	*slot = factory()
	t.slots = append(t.slots, slot)
	return slot
}

// Len reports how many slots have been allocated so far, for diagnostics
// and tests asserting the state-slot stability law (spec.md §8 property 3).
func (t *StateTable) Len() int { return len(t.slots) }
