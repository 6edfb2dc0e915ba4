package injected

import (
	"github.com/go-logr/logr"

	"github.com/aaphp/injected/internal"
)

type (
	// Source supplies values by identifier.  A Container is a Source,
	// as is anything conforming to the generic has/get contract, so
	// containers can back each other.
	Source interface {
		Has(id string) bool
		Get(id string) (any, error)
	}

	// TypeMap indexes candidate values by type identifier.  Within a
	// single Resolve call each type's candidates are consumed
	// positionally: the first parameter of type T takes the first
	// candidate, the next parameter of T the second, and so on.
	TypeMap map[string][]any

	// Resolver decides, for each declared parameter of a target, which
	// concrete value to supply, then performs the call.  It is
	// configured with an optional backing Source and a Flags policy;
	// all per-call scratch state is local to each Resolve invocation.
	Resolver struct {
		source Source
		flags  Flags
		types  Types
		log    logr.Logger
	}
)

// NewResolver returns a Resolver with the default flag policy, no
// backing source and the standard type utility.
func NewResolver() *Resolver {
	return &Resolver{
		flags: DefaultFlags,
		types: NewStdTypes(),
		log:   logr.Discard(),
	}
}

// Container reports the backing source, if any.
func (r *Resolver) Container() Source {
	return r.source
}

// SetContainer configures the backing source consulted for container
// fallbacks.
func (r *Resolver) SetContainer(source Source) {
	r.source = source
}

// Flags reports the current resolution policy.
func (r *Resolver) Flags() Flags {
	return r.flags
}

// SetFlags replaces the resolution policy.  Bits outside the known
// mask are rejected.
func (r *Resolver) SetFlags(flags Flags) error {
	if err := validFlags(flags); err != nil {
		return err
	}
	r.flags = flags
	return nil
}

// Types reports the value/type utility in use.
func (r *Resolver) Types() Types {
	return r.types
}

// SetTypes replaces the value/type utility.
func (r *Resolver) SetTypes(types Types) {
	if types == nil {
		panic("types cannot be nil")
	}
	r.types = types
}

// SetLogger installs a logger for resolution tracing.
func (r *Resolver) SetLogger(log logr.Logger) {
	r.log = log
}

// Resolve produces the ordered argument list for target's parameters.
// Each parameter consults, in order: the type map (positionally per
// type), the backing source by type then by name (flag gated), the
// explicit arguments by position then by name (flag gated), the
// declared default, the nullable fallback.  A trailing optional
// parameter with no value ends the list.  Values taken from the type
// map, source or explicit arguments are validated and coerced against
// the declared type; defaults and nulls are used as declared.
func (r *Resolver) Resolve(
	target Target,
	typeMap TypeMap,
	args *Args,
	flags ...Flags,
) (*Resolution, error) {
	policy := r.flags
	if len(flags) > 0 {
		if err := validFlags(flags[0]); err != nil {
			return nil, err
		}
		policy = flags[0]
	}
	res := &Resolution{}
	consumed := make(map[string]int)
	for _, p := range target.Params() {
		value, found, err := r.resolveParam(target, p, typeMap, args, policy, consumed)
		if err != nil {
			return nil, err
		}
		if !found {
			if p.TrailingOptional {
				break
			}
			return nil, &UnresolvedError{
				Callable: target.Name(),
				Param:    p.Name,
				Position: p.Position,
			}
		}
		if p.ByRef {
			ref, ok := value.(*Ref)
			if !ok {
				ref = NewRef(value)
			}
			res.addRef(p, ref)
			value = ref
		}
		res.Args = append(res.Args, value)
	}
	return res, nil
}

func (r *Resolver) resolveParam(
	target Target,
	p Param,
	typeMap TypeMap,
	args *Args,
	policy Flags,
	consumed map[string]int,
) (any, bool, error) {
	// Type map candidates always win, consumed positionally per type.
	if p.Type != "" {
		if candidates := typeMap[p.Type]; consumed[p.Type] < len(candidates) {
			value := candidates[consumed[p.Type]]
			consumed[p.Type]++
			return r.validate(target, p, value)
		}
	}
	if p.Type != "" && r.source != nil {
		if policy&UseContainerByType != 0 && r.source.Has(p.Type) {
			value, err := r.source.Get(p.Type)
			if err != nil {
				return nil, false, err
			}
			if !internal.IsNil(value) {
				return r.validate(target, p, value)
			}
		}
		if policy&UseContainerByName != 0 && p.Name != "" && r.source.Has(p.Name) {
			value, err := r.source.Get(p.Name)
			if err != nil {
				return nil, false, err
			}
			if !internal.IsNil(value) {
				return r.validate(target, p, value)
			}
		}
	}
	if policy&UseArgsByPosition != 0 {
		if value, ok := args.Position(p.Position); ok {
			return r.validate(target, p, value)
		}
	}
	if policy&UseArgsByName != 0 && p.Name != "" {
		if value, ok := args.Name(p.Name); ok {
			return r.validate(target, p, value)
		}
	}
	// Defaults and nullable fallbacks bypass type validation.
	if p.HasDefault {
		return p.Default, true, nil
	}
	if p.Nullable {
		return nil, true, nil
	}
	return nil, false, nil
}

// validate checks a sourced value against the declared type, coercing
// when it does not already match.
func (r *Resolver) validate(target Target, p Param, value any) (any, bool, error) {
	if p.Type == "" {
		return value, true, nil
	}
	check := value
	ref, isRef := value.(*Ref)
	if isRef && p.ByRef {
		check = ref.Value
	}
	if r.types.Matches(check, p.Type) {
		return value, true, nil
	}
	if coerced, ok := r.types.Coerce(check, p.Type); ok {
		if isRef && p.ByRef {
			ref.Value = coerced
			return ref, true, nil
		}
		return coerced, true, nil
	}
	return nil, false, &TypeMismatchError{
		Callable: target.Name(),
		Position: p.Position,
		Expected: p.Type,
		Actual:   r.types.NameOf(check),
	}
}

// Invoke validates that fn is callable, resolves its parameters and
// performs the call, returning the result unchanged.  Targets with no
// declared parameters are called directly.
func (r *Resolver) Invoke(
	fn any,
	typeMap TypeMap,
	args *Args,
	flags ...Flags,
) (any, error) {
	target, err := AsCallable(fn)
	if err != nil {
		return nil, err
	}
	params := target.Params()
	if len(params) == 0 {
		return target.Call(nil)
	}
	res, err := r.Resolve(target, typeMap, args, flags...)
	if err != nil {
		r.log.V(1).Info("resolution failed",
			"callable", target.Name(), "error", err.Error())
		return nil, err
	}
	return target.Call(res.Args)
}
