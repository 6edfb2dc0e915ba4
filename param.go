package injected

import (
	"reflect"
)

// Param describes a single declared parameter of a callable or
// constructor.  Instances are read-only inputs to Resolve.
type Param struct {
	Position         int
	Name             string
	Type             string
	HasDefault       bool
	Default          any
	Nullable         bool
	Required         bool
	TrailingOptional bool
	ByRef            bool
}

// P starts a parameter descriptor.  Position is assigned when the
// descriptor is merged into a callable's parameter list.
func P(name string) Param {
	return Param{Position: -1, Name: name}
}

// Typed declares the parameter type by canonical name.
func (p Param) Typed(typeName string) Param {
	p.Type = typeName
	return p
}

// TypedAs declares the parameter type from a prototype value.
func (p Param) TypedAs(proto any) Param {
	p.Type = nameOf(reflect.TypeOf(proto))
	return p
}

// WithDefault declares a default used when no source supplies a value.
func (p Param) WithDefault(value any) Param {
	p.HasDefault = true
	p.Default = value
	return p
}

// AsNullable permits nil when no source supplies a value.
func (p Param) AsNullable() Param {
	p.Nullable = true
	return p
}

// AsRequired clears the nullability inferred from a nilable kind, so an
// unsatisfied parameter fails resolution instead of receiving nil.
func (p Param) AsRequired() Param {
	p.Required = true
	p.Nullable = false
	return p
}

// AsOptional marks a trailing parameter that ends resolution when
// nothing is supplied for it.
func (p Param) AsOptional() Param {
	p.TrailingOptional = true
	return p
}

// AsRef marks a parameter mutated by reference.  The resolved value is
// delivered through a call-scoped *Ref slot.
func (p Param) AsRef() Param {
	p.ByRef = true
	return p
}

// inferParams derives descriptors from a function type.  Names are not
// recoverable from reflection, so inferred parameters are anonymous
// until overlaid with explicit descriptors.
func inferParams(fn reflect.Type) []Param {
	numIn := fn.NumIn()
	params := make([]Param, numIn)
	for i := 0; i < numIn; i++ {
		in := fn.In(i)
		p := Param{
			Position: i,
			Type:     nameOf(in),
			Nullable: nilable(in.Kind()),
		}
		if in == refType {
			// The slot stands in for the declared type; descriptors
			// supply the real one when it matters.
			p.ByRef = true
			p.Type = ""
		}
		if fn.IsVariadic() && i == numIn-1 {
			p.Type = nameOf(in.Elem())
			p.TrailingOptional = true
			p.Nullable = false
		}
		params[i] = p
	}
	return params
}

// overlayParams merges explicit descriptors onto inferred ones, by
// position when declared, otherwise in declaration order.
func overlayParams(inferred, explicit []Param) []Param {
	params := make([]Param, len(inferred))
	copy(params, inferred)
	next := 0
	for _, e := range explicit {
		pos := e.Position
		if pos < 0 {
			pos = next
		}
		next = pos + 1
		if pos >= len(params) {
			e.Position = pos
			params = append(params, e)
			continue
		}
		p := params[pos]
		if e.Name != "" {
			p.Name = e.Name
		}
		if e.Type != "" {
			p.Type = e.Type
		}
		if e.HasDefault {
			p.HasDefault = true
			p.Default = e.Default
		}
		if e.Required {
			p.Required = true
			p.Nullable = false
		} else {
			p.Nullable = p.Nullable || e.Nullable
		}
		p.TrailingOptional = p.TrailingOptional || e.TrailingOptional
		p.ByRef = p.ByRef || e.ByRef
		params[pos] = p
	}
	return params
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	}
	return false
}

var refType = reflect.TypeOf((*Ref)(nil))
