package injected

import (
	"fmt"
	"path"
	"reflect"
	"runtime"
	"unicode"
)

type (
	// Target exposes the introspected parameter list of an invocable.
	Target interface {
		Name() string
		Params() []Param
	}

	// Callable is a Target that can be invoked with resolved arguments.
	Callable interface {
		Target
		Call(args []any) (any, error)
	}

	// Class describes a constructible type registered by name.  New
	// performs direct construction; Deferred allocates the instance
	// first so construction can run after argument binding.
	Class interface {
		Target
		New(args []any) (any, error)
		Deferred() (Deferred, error)
	}

	// Deferred is an allocated, not yet constructed instance.
	Deferred interface {
		Instance() any
		Construct(args []any) error
	}
)

// funcCallable adapts a reflected function or bound method.
type funcCallable struct {
	name   string
	fn     reflect.Value
	params []Param
}

func (f *funcCallable) Name() string {
	return f.name
}

func (f *funcCallable) Params() []Param {
	return f.params
}

func (f *funcCallable) Call(args []any) (any, error) {
	t := f.fn.Type()
	numIn := t.NumIn()
	fixed := numIn
	if t.IsVariadic() {
		fixed = numIn - 1
	}
	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var inType reflect.Type
		if i < fixed {
			inType = t.In(i)
		} else if t.IsVariadic() {
			inType = t.In(numIn - 1).Elem()
		} else {
			return nil, fmt.Errorf(
				"invoke: %v accepts %v arguments, got %v",
				f.name, numIn, len(args))
		}
		v, err := conform(arg, inType)
		if err != nil {
			return nil, fmt.Errorf("invoke: argument %v of %v: %w",
				i, f.name, err)
		}
		in = append(in, v)
	}
	// Trailing parameters dropped by an optional stop are filled with
	// their zero values so the call site stays well formed.
	for i := len(in); i < fixed; i++ {
		in = append(in, reflect.Zero(t.In(i)))
	}
	return splitResults(f.fn.Call(in))
}

func conform(arg any, inType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(inType), nil
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(inType) {
		return v, nil
	}
	if v.Type().ConvertibleTo(inType) {
		return v.Convert(inType), nil
	}
	return reflect.Value{}, fmt.Errorf(
		"%v is not assignable to %v", v.Type(), inType)
}

func splitResults(out []reflect.Value) (any, error) {
	var (
		results []any
		err     error
	)
	for _, o := range out {
		if o.Type() == errorType {
			if e, ok := o.Interface().(error); ok {
				err = e
			}
			continue
		}
		results = append(results, o.Interface())
	}
	switch len(results) {
	case 0:
		return nil, err
	case 1:
		return results[0], err
	default:
		return results, err
	}
}

// Func adapts a function for resolution.  Explicit descriptors overlay
// the reflected parameter list, supplying names, defaults and by-ref
// markers reflection cannot recover.  Panics if fn is not a function.
func Func(fn any, params ...Param) Callable {
	target, err := newFunc(fn, params)
	if err != nil {
		panic(err)
	}
	return target
}

func newFunc(fn any, params []Param) (*funcCallable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, &NotCallableError{Value: fn}
	}
	name := "func"
	if pc := runtime.FuncForPC(v.Pointer()); pc != nil {
		name = path.Base(pc.Name())
	}
	return &funcCallable{
		name:   name,
		fn:     v,
		params: overlayParams(inferParams(v.Type()), params),
	}, nil
}

// Method binds a named method of recv for resolution.  A known but
// unexported method reports the qualified Owner::method name instead of
// a bare not-callable failure.
func Method(recv any, name string, params ...Param) (Callable, error) {
	v := reflect.ValueOf(recv)
	if !v.IsValid() {
		return nil, &NotCallableError{Value: recv}
	}
	qualified := nameOf(v.Type()) + "::" + name
	m := v.MethodByName(name)
	if !m.IsValid() {
		if name != "" && unicode.IsLower(rune(name[0])) {
			return nil, &NotCallableError{Value: recv, Qualified: qualified}
		}
		return nil, &NotCallableError{Value: recv}
	}
	return &funcCallable{
		name:   qualified,
		fn:     m,
		params: overlayParams(inferParams(m.Type()), params),
	}, nil
}

// AsCallable normalizes a value into a Callable, distinguishing values
// that are not callable at all from pre-bound callables.
func AsCallable(fn any) (Callable, error) {
	switch c := fn.(type) {
	case nil:
		return nil, &NotCallableError{Value: fn}
	case Callable:
		return c, nil
	default:
		return newFunc(fn, nil)
	}
}

// classType registers a struct type under a class name.  Construction
// runs the optional Construct method on the pointer receiver; classes
// without one construct directly with no parameter resolution.
type classType struct {
	name   string
	typ    reflect.Type
	ctor   bool
	params []Param
}

// NewClass registers proto's struct type under name.  proto is a value
// or pointer prototype, e.g. NewClass("Connection", (*Connection)(nil)).
func NewClass(name string, proto any, params ...Param) Class {
	typ := reflect.TypeOf(proto)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("class %q requires a struct prototype", name))
	}
	cls := &classType{name: name, typ: typ}
	if ctor, ok := reflect.PtrTo(typ).MethodByName(ctorName); ok {
		cls.ctor = true
		inferred := inferParams(ctor.Func.Type())[1:]
		for i := range inferred {
			inferred[i].Position = i
		}
		cls.params = overlayParams(inferred, params)
	}
	return cls
}

const ctorName = "Construct"

func (c *classType) Name() string {
	return c.name
}

func (c *classType) Params() []Param {
	return c.params
}

func (c *classType) New(args []any) (any, error) {
	d, err := c.Deferred()
	if err != nil {
		return nil, err
	}
	if err := d.Construct(args); err != nil {
		return nil, err
	}
	return d.Instance(), nil
}

func (c *classType) Deferred() (Deferred, error) {
	instance := reflect.New(c.typ)
	d := &deferred{instance: instance}
	if c.ctor {
		d.ctor = &funcCallable{
			name:   c.name + "::" + ctorName,
			fn:     instance.MethodByName(ctorName),
			params: c.params,
		}
	}
	return d, nil
}

// deferred holds an allocated instance awaiting construction.
type deferred struct {
	instance reflect.Value
	ctor     *funcCallable
}

func (d *deferred) Instance() any {
	return d.instance.Interface()
}

func (d *deferred) Construct(args []any) error {
	if d.ctor == nil {
		return nil
	}
	_, err := d.ctor.Call(args)
	return err
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
