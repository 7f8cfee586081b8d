package runtime

// Scope is a lexical variable environment: the top-level script has one,
// and each function call and each if/for block body gets a child scope
// chained to its lexical parent, matching transpile's duplicate-definition
// and undefined-identifier checks (transpile/check.go) which walk the same
// nesting shape ahead of time.
type Scope struct {
	parent *Scope
	vars   map[string]Value
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]Value)}
}

// Define introduces a new binding in this scope. Callers are expected to
// have already rejected duplicate top-level/function-local definitions at
// transpile time; Define here simply (re)installs the value for a bar.
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Assign mutates the nearest enclosing binding for name. Returns false if
// no such binding exists anywhere in the chain (should not happen for a
// script that passed transpile-time checks).
func (s *Scope) Assign(name string, v Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}

func (s *Scope) Lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}
