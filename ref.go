package injected

import "strconv"

// Ref is a call-scoped mutable slot standing in for a by-reference
// parameter.  The invoked target receives the slot itself, so writes it
// performs remain observable through Resolution.Refs after the call.
// Slots are never reused across Resolve calls.
type Ref struct {
	Value any
}

// NewRef seeds a slot with an initial value.
func NewRef(value any) *Ref {
	return &Ref{Value: value}
}

// Resolution is the outcome of resolving a parameter list: the ordered
// argument values ready for invocation and the by-reference slots that
// were allocated for this call, keyed by parameter name (or "#pos" for
// anonymous parameters).
type Resolution struct {
	Args []any
	Refs map[string]*Ref
}

func (r *Resolution) addRef(p Param, ref *Ref) {
	if r.Refs == nil {
		r.Refs = make(map[string]*Ref)
	}
	r.Refs[refKey(p)] = ref
}

func refKey(p Param) string {
	if p.Name != "" {
		return p.Name
	}
	return "#" + strconv.Itoa(p.Position)
}

// Ref returns the slot allocated for the named parameter, if any.
func (r *Resolution) Ref(name string) (*Ref, bool) {
	ref, ok := r.Refs[name]
	return ref, ok
}
