package injected

import (
	"github.com/go-playground/validator/v10"
)

// OptionBool distinguishes an unset flag from an explicit false, so a
// redefinition can tell which fields the new specification omitted.
type OptionBool byte

const (
	OptionNone OptionBool = iota
	OptionFalse
	OptionTrue
)

// Bool converts an explicit OptionBool.  Panics on OptionNone.
func (b OptionBool) Bool() bool {
	switch b {
	case OptionFalse:
		return false
	case OptionTrue:
		return true
	default:
		panic("only OptionFalse and OptionTrue can convert to a bool")
	}
}

func option(b bool) OptionBool {
	if b {
		return OptionTrue
	}
	return OptionFalse
}

// Def specifies a container entry.  Exactly one of Class or Factory is
// required.  Args only applies to class entries and binds constructor
// parameters by name.  Type declares the expected type of the produced
// value and aliases it to the entry's identifier.  Shared and Locked
// default to shared, unlocked when unset.
type Def struct {
	Class   string `validate:"required_without=Factory,excluded_with=Factory"`
	Factory any
	Args    map[string]any
	Type    string
	Shared  OptionBool
	Locked  OptionBool
}

var defValidate = validator.New()

// validateDef performs the structural check on a specification before
// the semantic callable check runs.
func validateDef(d Def) error {
	if err := defValidate.Struct(d); err != nil {
		return &ConfigError{
			Reason: "entry specification requires exactly one of class or factory",
			Cause:  err,
		}
	}
	if d.Factory != nil {
		if _, err := AsCallable(d.Factory); err != nil {
			return &ConfigError{Reason: "factory is not callable", Cause: err}
		}
	}
	return nil
}

// entry is the container's record for one identifier.  An entry is in
// exactly one of two states: not yet created (class or factory fields
// populated) or created (value populated, construction fields
// discarded).  Only shared entries ever reach the created state.
type entry struct {
	shared  bool
	locked  bool
	created bool
	value   any
	class   string
	args    map[string]any
	factory any
	typ     string
}

func entryFromDef(d Def) *entry {
	return &entry{
		shared:  d.Shared != OptionFalse,
		locked:  d.Locked == OptionTrue,
		class:   d.Class,
		args:    d.Args,
		factory: d.Factory,
		typ:     d.Type,
	}
}

// freeze finalizes a shared entry after first creation, discarding the
// construction fields.
func (e *entry) freeze(value any) {
	e.created = true
	e.value = value
	e.class = ""
	e.args = nil
	e.factory = nil
}

// inherit fills fields the redefinition omitted from the previous
// entry.  Creation state is never inherited.
func (d *Def) inherit(old *entry) {
	if d.Args == nil {
		d.Args = old.args
	}
	if d.Type == "" {
		d.Type = old.typ
	}
	if d.Shared == OptionNone {
		d.Shared = option(old.shared)
	}
	if d.Locked == OptionNone {
		d.Locked = option(old.locked)
	}
}
