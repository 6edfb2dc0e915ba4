package injected

import (
	"reflect"

	"github.com/spf13/cast"
)

type (
	// Types is the value/type utility consumed by the resolution
	// pipeline.  Matches answers whether a value already satisfies a
	// type identifier, Coerce attempts a conversion (ok reports
	// success), and NameOf produces the canonical identifier of a
	// value's type.
	Types interface {
		Matches(value any, typeName string) bool
		Coerce(value any, typeName string) (any, bool)
		NameOf(value any) string
	}

	// StdTypes is the default Types implementation.  Identifiers are
	// canonical reflect strings (e.g. "int", "*pkg.Conn").  Interface
	// and named types participate in assignability checks once
	// registered; scalars coerce through spf13/cast.
	StdTypes struct {
		named map[string]reflect.Type
	}
)

// NewStdTypes returns an empty type registry.
func NewStdTypes() *StdTypes {
	return &StdTypes{named: make(map[string]reflect.Type)}
}

// Register associates a type identifier with a prototype so values
// assignable to it (including interface implementations) match.  A
// pointer-to-interface prototype registers the interface itself.
func (t *StdTypes) Register(name string, proto any) *StdTypes {
	typ := reflect.TypeOf(proto)
	if typ != nil && typ.Kind() == reflect.Ptr &&
		typ.Elem().Kind() == reflect.Interface {
		typ = typ.Elem()
	}
	t.named[name] = typ
	return t
}

func (t *StdTypes) Matches(value any, typeName string) bool {
	if value == nil {
		return false
	}
	rt := reflect.TypeOf(value)
	if nameOf(rt) == typeName {
		return true
	}
	if want, ok := t.named[typeName]; ok && want != nil {
		if rt.AssignableTo(want) {
			return true
		}
		if want.Kind() == reflect.Interface && rt.Implements(want) {
			return true
		}
	}
	return false
}

func (t *StdTypes) Coerce(value any, typeName string) (any, bool) {
	if t.Matches(value, typeName) {
		return value, true
	}
	if value == nil {
		return nil, false
	}
	var (
		coerced any
		err     error
	)
	switch typeName {
	case "string":
		coerced, err = cast.ToStringE(value)
	case "bool":
		coerced, err = cast.ToBoolE(value)
	case "int":
		coerced, err = cast.ToIntE(value)
	case "int8":
		coerced, err = cast.ToInt8E(value)
	case "int16":
		coerced, err = cast.ToInt16E(value)
	case "int32":
		coerced, err = cast.ToInt32E(value)
	case "int64":
		coerced, err = cast.ToInt64E(value)
	case "uint":
		coerced, err = cast.ToUintE(value)
	case "uint64":
		coerced, err = cast.ToUint64E(value)
	case "float32":
		coerced, err = cast.ToFloat32E(value)
	case "float64":
		coerced, err = cast.ToFloat64E(value)
	case "time.Time":
		coerced, err = cast.ToTimeE(value)
	case "time.Duration":
		coerced, err = cast.ToDurationE(value)
	case "[]string":
		coerced, err = cast.ToStringSliceE(value)
	case "map[string]interface {}":
		coerced, err = cast.ToStringMapE(value)
	default:
		if want, ok := t.named[typeName]; ok && want != nil {
			rv := reflect.ValueOf(value)
			if rv.Type().ConvertibleTo(want) {
				return rv.Convert(want).Interface(), true
			}
		}
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return coerced, true
}

func (t *StdTypes) NameOf(value any) string {
	if value == nil {
		return "null"
	}
	return nameOf(reflect.TypeOf(value))
}

// nameOf produces the canonical identifier for a reflect type.
func nameOf(t reflect.Type) string {
	if t == nil {
		return "null"
	}
	return t.String()
}
