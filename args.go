package injected

import (
	"github.com/imdario/mergo"
)

// Args carries explicit arguments for a resolution, keyed by parameter
// position and/or by parameter name.
type Args struct {
	positional map[int]any
	named      map[string]any
}

// NewArgs returns an empty argument map.
func NewArgs() *Args {
	return &Args{}
}

// NamedArgs wraps a name-keyed map.  The map is used as given, not
// copied.
func NamedArgs(named map[string]any) *Args {
	return &Args{named: named}
}

// PositionalArgs assigns values to successive positions starting at 0.
func PositionalArgs(values ...any) *Args {
	a := NewArgs()
	for i, v := range values {
		a.At(i, v)
	}
	return a
}

// At sets the argument for a declaration position.
func (a *Args) At(position int, value any) *Args {
	if a.positional == nil {
		a.positional = make(map[int]any)
	}
	a.positional[position] = value
	return a
}

// Named sets the argument for a parameter name.
func (a *Args) Named(name string, value any) *Args {
	if a.named == nil {
		a.named = make(map[string]any)
	}
	a.named[name] = value
	return a
}

// Position reports the argument registered for a position.
func (a *Args) Position(position int) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.positional[position]
	return v, ok
}

// Name reports the argument registered for a parameter name.
func (a *Args) Name(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.named[name]
	return v, ok
}

// mergedArgs layers overriding named values over fallback ones.  Keys
// present in override win; the inputs are left untouched.
func mergedArgs(override, fallback map[string]any) (*Args, error) {
	merged := make(map[string]any, len(override)+len(fallback))
	for k, v := range override {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, fallback); err != nil {
		return nil, err
	}
	return NamedArgs(merged), nil
}
