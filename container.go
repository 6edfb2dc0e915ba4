package injected

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"

	"github.com/aaphp/injected/internal"
)

type (
	// ContainerOption configures a Container during construction.
	ContainerOption func(*Container)

	// Container is a registry of named entries resolved on demand.  It
	// holds a Resolver configured with itself as the backing source, so
	// container fallbacks during parameter resolution consult its own
	// entries, and it publishes realized shared values into the type
	// and shared-args maps the Resolver consumes.
	Container struct {
		resolver   *Resolver
		types      *StdTypes
		entries    map[string]*entry
		aliases    map[string]string
		instances  map[string][]any
		sharedArgs map[string]any
		classes    map[string]Class
		settings   *Settings
		log        logr.Logger
	}
)

// WithLogger installs a logger for entry lifecycle tracing.
func WithLogger(log logr.Logger) ContainerOption {
	return func(c *Container) {
		c.log = log
	}
}

// WithTypes supplies a pre-populated type registry.
func WithTypes(types *StdTypes) ContainerOption {
	return func(c *Container) {
		c.types = types
	}
}

// WithSettings supplies a pre-loaded settings bag.
func WithSettings(settings *Settings) ContainerOption {
	return func(c *Container) {
		c.settings = settings
	}
}

// SelfID is the identifier under which every container binds itself.
const SelfID = "container"

// NewContainer returns an empty container seeded with a locked
// self-referential binding, so requests for the container type (or the
// "container" identifier) resolve to the container itself.
func NewContainer(opts ...ContainerOption) *Container {
	c := &Container{
		entries:    make(map[string]*entry),
		aliases:    make(map[string]string),
		instances:  make(map[string][]any),
		sharedArgs: make(map[string]any),
		classes:    make(map[string]Class),
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.types == nil {
		c.types = NewStdTypes()
	}
	c.resolver = NewResolver()
	c.resolver.SetTypes(c.types)
	c.resolver.SetContainer(c)
	c.resolver.SetLogger(c.log)
	if c.settings == nil {
		c.settings = NewSettings()
	}

	selfType := nameOf(reflect.TypeOf(c))
	c.types.Register(selfType, c)
	c.entries[SelfID] = &entry{
		shared: true, locked: true, created: true,
		value: c, typ: selfType,
	}
	c.aliases[selfType] = SelfID
	c.instances[selfType] = []any{c}
	c.sharedArgs[SelfID] = c
	return c
}

// Resolver exposes the container's resolver for direct invocation.
func (c *Container) Resolver() *Resolver {
	return c.resolver
}

// Types exposes the container's type registry.
func (c *Container) Types() *StdTypes {
	return c.types
}

// Settings exposes the container's settings bag.
func (c *Container) Settings() *Settings {
	return c.settings
}

// RegisterClass makes classes available to class entries by name and
// registers their runtime types for matching.
func (c *Container) RegisterClass(classes ...Class) *Container {
	for _, cls := range classes {
		c.classes[cls.Name()] = cls
		if ct, ok := cls.(*classType); ok {
			c.types.Register(ct.name, reflect.New(ct.typ).Interface())
		}
	}
	return c
}

// lookup alias-resolves an identifier to its canonical key and entry.
func (c *Container) lookup(id string) (string, *entry) {
	if e, ok := c.entries[id]; ok {
		return id, e
	}
	if target, ok := c.aliases[id]; ok {
		if e, ok := c.entries[target]; ok {
			return target, e
		}
	}
	return id, nil
}

// Has reports whether an entry or alias exists for id.  It never
// triggers creation.
func (c *Container) Has(id string) bool {
	_, e := c.lookup(id)
	return e != nil
}

// Get returns the value for id, creating it on first use.  Shared
// entries cache their value; non-shared entries recompute on every
// call.  A failed creation leaves the entry untouched, safe to retry.
func (c *Container) Get(id string) (any, error) {
	key, e := c.lookup(id)
	if e == nil {
		return nil, &NotFoundError{ID: id}
	}
	if e.created {
		return e.value, nil
	}
	value, err := c.create(key, e)
	if err != nil {
		return nil, err
	}
	if e.typ != "" && !c.types.Matches(value, e.typ) {
		return nil, &TypeMismatchError{
			ID:       key,
			Position: -1,
			Expected: e.typ,
			Actual:   c.types.NameOf(value),
		}
	}
	if e.shared {
		e.freeze(value)
		if e.typ != "" {
			c.instances[e.typ] = append(c.instances[e.typ], value)
		}
		c.sharedArgs[key] = value
		c.log.V(1).Info("created shared entry", "id", key)
	}
	return value, nil
}

func (c *Container) create(key string, e *entry) (any, error) {
	if e.factory != nil {
		value, err := c.resolver.Invoke(
			e.factory, TypeMap(c.instances), NamedArgs(c.sharedArgs))
		if err != nil {
			return nil, c.wrap(key, err)
		}
		return value, nil
	}
	cls, ok := c.classes[e.class]
	if !ok {
		return nil, &ContainerError{
			ID:     key,
			Reason: fmt.Errorf("unknown class %q", e.class),
		}
	}
	if len(cls.Params()) == 0 {
		// Nothing to resolve; construct directly.
		value, err := cls.New(nil)
		if err != nil {
			return nil, c.wrap(key, err)
		}
		return value, nil
	}
	args, err := mergedArgs(e.args, c.sharedArgs)
	if err != nil {
		return nil, c.wrap(key, err)
	}
	d, err := cls.Deferred()
	if err != nil {
		return nil, c.wrap(key, err)
	}
	res, err := c.resolver.Resolve(cls, TypeMap(c.instances), args)
	if err != nil {
		return nil, c.wrap(key, err)
	}
	if err := d.Construct(res.Args); err != nil {
		return nil, c.wrap(key, err)
	}
	return d.Instance(), nil
}

// wrap converts unexpected introspection failures into container
// errors carrying the entry id.  Failures already belonging to the
// resolution taxonomy pass through unchanged.
func (c *Container) wrap(key string, err error) error {
	var (
		notFound   *NotFoundError
		mismatch   *TypeMismatchError
		unresolved *UnresolvedError
		container  *ContainerError
	)
	if errors.As(err, &notFound) || errors.As(err, &mismatch) ||
		errors.As(err, &unresolved) || errors.As(err, &container) {
		return err
	}
	return &ContainerError{ID: key, Reason: err}
}

// Set registers a finished value as a shared, already-created entry.
// An existing entry is removed first (failing if locked) and its type
// is inherited when no explicit type is given.  Typed values must
// match their type, which is aliased to id.
func (c *Container) Set(id string, value any, typeName ...string) error {
	var typ string
	if len(typeName) > 0 {
		typ = typeName[0]
	}
	if old, ok := c.entries[id]; ok {
		if typ == "" {
			typ = old.typ
		}
		if err := c.Remove(id); err != nil {
			return err
		}
	}
	if typ != "" {
		if !c.types.Matches(value, typ) {
			return &TypeMismatchError{
				ID:       id,
				Position: -1,
				Expected: typ,
				Actual:   c.types.NameOf(value),
			}
		}
		c.aliases[typ] = id
		c.instances[typ] = append(c.instances[typ], value)
	}
	c.entries[id] = &entry{shared: true, created: true, value: value, typ: typ}
	c.sharedArgs[id] = value
	c.log.V(1).Info("set entry", "id", id)
	return nil
}

// SetMany registers several values; failures are collected and the
// remaining values still apply.
func (c *Container) SetMany(values map[string]any) error {
	var result error
	for id, value := range values {
		if err := c.Set(id, value); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Define registers a lazy entry.  spec is either a bare callable
// (shorthand for a shared, locked factory) or a Def.  Redefinition
// removes the previous entry first (failing if locked) and inherits
// fields the new specification omitted, never its creation state.
func (c *Container) Define(id string, spec any) error {
	d, err := asDef(spec)
	if err != nil {
		return err
	}
	if err := validateDef(d); err != nil {
		return err
	}
	if old, ok := c.entries[id]; ok {
		if old.locked {
			return &ContainerError{ID: id, Reason: ErrLocked}
		}
		d.inherit(old)
		if err := c.Remove(id); err != nil {
			return err
		}
	}
	e := entryFromDef(d)
	c.entries[id] = e
	if e.typ != "" {
		c.aliases[e.typ] = id
	}
	c.log.V(1).Info("defined entry", "id", id,
		"shared", e.shared, "locked", e.locked)
	return nil
}

func asDef(spec any) (Def, error) {
	switch s := spec.(type) {
	case Def:
		return s, nil
	case *Def:
		return *s, nil
	default:
		if _, err := AsCallable(spec); err != nil {
			return Def{}, &ConfigError{
				Reason: "entry specification must be a Def or a callable",
				Cause:  err,
			}
		}
		return Def{
			Factory: spec,
			Shared:  OptionTrue,
			Locked:  OptionTrue,
		}, nil
	}
}

// DefineMany registers several entries; failures are collected and the
// remaining entries still apply.
func (c *Container) DefineMany(specs map[string]any) error {
	var result error
	for id, spec := range specs {
		if err := c.Define(id, spec); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Remove deletes an entry and prunes its footprint from the alias,
// type instance and shared-args maps.  Locked entries fail and remain
// intact.  Removing an absent entry is a no-op.
func (c *Container) Remove(id string) error {
	key, e := c.lookup(id)
	if e == nil {
		return nil
	}
	if e.locked {
		return &ContainerError{ID: key, Reason: ErrLocked}
	}
	delete(c.entries, key)
	if e.typ != "" && c.aliases[e.typ] == key {
		delete(c.aliases, e.typ)
	}
	if e.created && e.typ != "" {
		// Single identity-match removal; duplicate registrations of
		// the same value each need their own removal.
		list := c.instances[e.typ]
		for i, v := range list {
			if internal.Identical(v, e.value) {
				c.instances[e.typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(c.instances[e.typ]) == 0 {
			delete(c.instances, e.typ)
		}
	}
	delete(c.sharedArgs, key)
	c.log.V(1).Info("removed entry", "id", key)
	return nil
}

// RemoveMany deletes several entries; failures are collected and the
// remaining entries are still removed.
func (c *Container) RemoveMany(ids []string) error {
	var result error
	for _, id := range ids {
		if err := c.Remove(id); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
