package injected

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/suite"
)

type Connection struct {
	host string
	log  *Logger
}

func (c *Connection) Construct(host string, log *Logger) {
	c.host = host
	c.log = log
}

type Clock struct {
	ticks int
}

type Flaky struct {
	fail *bool
}

func (f *Flaky) Construct(fail *bool) error {
	if fail != nil && *fail {
		return errors.New("flaky construction")
	}
	f.fail = fail
	return nil
}

type ContainerTestSuite struct {
	suite.Suite
	container *Container
}

func (suite *ContainerTestSuite) SetupTest() {
	suite.container = NewContainer()
	suite.container.RegisterClass(
		NewClass("Connection", (*Connection)(nil), P("host"), P("log")),
		NewClass("Clock", (*Clock)(nil)),
		NewClass("Flaky", (*Flaky)(nil), P("fail")),
	)
}

func (suite *ContainerTestSuite) TestSelfBinding() {
	value, err := suite.container.Get(SelfID)
	suite.Nil(err)
	suite.Same(suite.container, value)

	result, err := suite.container.Resolver().Invoke(
		func(c *Container) *Container { return c }, nil, nil)
	suite.Nil(err)
	suite.Same(suite.container, result)
}

func (suite *ContainerTestSuite) TestSelfBindingIsLocked() {
	err := suite.container.Remove(SelfID)
	suite.ErrorIs(err, ErrLocked)
}

func (suite *ContainerTestSuite) TestGetNotFound() {
	_, err := suite.container.Get("missing")
	var notFound *NotFoundError
	suite.ErrorAs(err, &notFound)
	suite.Equal("missing", notFound.ID)
}

func (suite *ContainerTestSuite) TestSetAndGet() {
	logger := &Logger{id: 1}
	suite.Nil(suite.container.Set("logger", logger))
	suite.True(suite.container.Has("logger"))
	value, err := suite.container.Get("logger")
	suite.Nil(err)
	suite.Same(logger, value)
}

func (suite *ContainerTestSuite) TestTypeAliasLookup() {
	logger := &Logger{id: 1}
	suite.Nil(suite.container.Set("logger", logger, typeName(logger)))
	suite.True(suite.container.Has(typeName(logger)))
	value, err := suite.container.Get(typeName(logger))
	suite.Nil(err)
	suite.Same(logger, value)
}

func (suite *ContainerTestSuite) TestSetTypeMismatch() {
	err := suite.container.Set("logger", "not a logger", "*injected.Logger")
	var mismatch *TypeMismatchError
	suite.ErrorAs(err, &mismatch)
	suite.Equal("logger", mismatch.ID)
	suite.Equal("*injected.Logger", mismatch.Expected)
	suite.Equal("string", mismatch.Actual)
}

func (suite *ContainerTestSuite) TestSetInheritsType() {
	first := &Logger{id: 1}
	second := &Logger{id: 2}
	suite.Nil(suite.container.Set("logger", first, typeName(first)))
	suite.Nil(suite.container.Set("logger", second))

	result, err := suite.container.Resolver().Invoke(
		func(log *Logger) *Logger { return log }, nil, nil)
	suite.Nil(err)
	suite.Same(second, result)
}

func (suite *ContainerTestSuite) TestDefineClassScenario() {
	suite.Nil(suite.container.Define("conn", Def{
		Class: "Connection",
		Args:  map[string]any{"host": "localhost"},
	}))
	suite.False(suite.container.entries["conn"].created)

	value, err := suite.container.Get("conn")
	suite.Nil(err)
	conn := value.(*Connection)
	suite.Equal("localhost", conn.host)

	again, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.Same(conn, again, "shared by default")
	suite.True(suite.container.entries["conn"].created)
	suite.Nil(suite.container.entries["conn"].args, "construction fields discarded")
}

func (suite *ContainerTestSuite) TestClassArgsOverrideSharedArgs() {
	suite.Nil(suite.container.Set("host", "from-shared"))
	suite.Nil(suite.container.Define("conn", Def{
		Class: "Connection",
		Args:  map[string]any{"host": "from-args"},
	}))
	value, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.Equal("from-args", value.(*Connection).host)
}

func (suite *ContainerTestSuite) TestSharedArgsAcrossEntries() {
	suite.Nil(suite.container.Set("host", "db.internal"))
	suite.Nil(suite.container.Define("conn", Def{Class: "Connection"}))
	value, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.Equal("db.internal", value.(*Connection).host)
}

func (suite *ContainerTestSuite) TestEntryDependsOnEntryByType() {
	logger := &Logger{id: 8}
	suite.Nil(suite.container.Set("logger", logger, typeName(logger)))
	suite.Nil(suite.container.Define("conn", Def{
		Class: "Connection",
		Args:  map[string]any{"host": "localhost"},
	}))
	value, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.Same(logger, value.(*Connection).log)
}

func (suite *ContainerTestSuite) TestZeroParamClassConstructsDirectly() {
	suite.Nil(suite.container.Define("clock", Def{Class: "Clock"}))
	value, err := suite.container.Get("clock")
	suite.Nil(err)
	suite.IsType(&Clock{}, value)
}

func (suite *ContainerTestSuite) TestFactoryEntry() {
	count := 0
	suite.Nil(suite.container.Define("counter", Def{
		Factory: func() int { count++; return count },
		Shared:  OptionFalse,
	}))
	first, err := suite.container.Get("counter")
	suite.Nil(err)
	second, err := suite.container.Get("counter")
	suite.Nil(err)
	suite.Equal(1, first)
	suite.Equal(2, second, "non-shared entries recompute")
}

func (suite *ContainerTestSuite) TestSharedFactoryCaches() {
	suite.Nil(suite.container.Define("logger", Def{
		Factory: func() *Logger { return &Logger{id: 1} },
	}))
	first, err := suite.container.Get("logger")
	suite.Nil(err)
	second, err := suite.container.Get("logger")
	suite.Nil(err)
	suite.Same(first, second)
}

func (suite *ContainerTestSuite) TestBareCallableShorthand() {
	suite.Nil(suite.container.Define("log", func() *Logger {
		return &Logger{id: 1}
	}))
	first, err := suite.container.Get("log")
	suite.Nil(err)
	second, err := suite.container.Get("log")
	suite.Nil(err)
	suite.Same(first, second, "shorthand entries are shared")

	err = suite.container.Remove("log")
	suite.ErrorIs(err, ErrLocked, "shorthand entries are locked")
	err = suite.container.Define("log", func() *Logger { return nil })
	suite.ErrorIs(err, ErrLocked)

	still, err := suite.container.Get("log")
	suite.Nil(err)
	suite.Same(first, still, "locked entry remains fetchable")
}

func (suite *ContainerTestSuite) TestDefineRequiresClassOrFactory() {
	err := suite.container.Define("bad", Def{})
	var config *ConfigError
	suite.ErrorAs(err, &config)

	err = suite.container.Define("bad", Def{
		Class:   "Connection",
		Factory: func() any { return nil },
	})
	suite.ErrorAs(err, &config)
}

func (suite *ContainerTestSuite) TestDefineRejectsNonCallableFactory() {
	err := suite.container.Define("bad", Def{Factory: 42})
	var config *ConfigError
	suite.ErrorAs(err, &config)
}

func (suite *ContainerTestSuite) TestDefineRejectsArbitrarySpec() {
	err := suite.container.Define("bad", 42)
	var config *ConfigError
	suite.ErrorAs(err, &config)
}

func (suite *ContainerTestSuite) TestRedefinitionInheritsFields() {
	suite.Nil(suite.container.Define("conn", Def{
		Class: "Connection",
		Args:  map[string]any{"host": "localhost"},
		Type:  "*injected.Connection",
	}))
	suite.Nil(suite.container.Define("conn", Def{Class: "Connection"}))
	e := suite.container.entries["conn"]
	suite.Equal(map[string]any{"host": "localhost"}, e.args)
	suite.Equal("*injected.Connection", e.typ)

	value, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.Equal("localhost", value.(*Connection).host)

	// Creation state is never inherited; the frozen entry's cached
	// value (and discarded construction fields) do not carry over.
	suite.Nil(suite.container.Define("conn", Def{
		Class: "Connection",
		Args:  map[string]any{"host": "elsewhere"},
	}))
	suite.False(suite.container.entries["conn"].created)
	fresh, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.NotSame(value, fresh)
	suite.Equal("elsewhere", fresh.(*Connection).host)
}

func (suite *ContainerTestSuite) TestEntryTypeValidation() {
	suite.Nil(suite.container.Define("logger", Def{
		Factory: func() any { return "nope" },
		Type:    "*injected.Logger",
	}))
	_, err := suite.container.Get("logger")
	var mismatch *TypeMismatchError
	suite.ErrorAs(err, &mismatch)
	suite.Equal("logger", mismatch.ID)
	suite.Equal("*injected.Logger", mismatch.Expected)
	suite.Equal("string", mismatch.Actual)
}

func (suite *ContainerTestSuite) TestConstructionFailureWrapped() {
	fail := true
	suite.Nil(suite.container.Set("fail", &fail))
	suite.Nil(suite.container.Define("flaky", Def{Class: "Flaky"}))

	_, err := suite.container.Get("flaky")
	var wrapped *ContainerError
	suite.ErrorAs(err, &wrapped)
	suite.Equal("flaky", wrapped.ID)

	suite.False(suite.container.entries["flaky"].created,
		"failed creation leaves the entry in its prior state")

	fail = false
	value, err := suite.container.Get("flaky")
	suite.Nil(err)
	suite.IsType(&Flaky{}, value)
}

func (suite *ContainerTestSuite) TestUnknownClassWrapped() {
	suite.Nil(suite.container.Define("ghost", Def{Class: "Ghost"}))
	_, err := suite.container.Get("ghost")
	var wrapped *ContainerError
	suite.ErrorAs(err, &wrapped)
	suite.Equal("ghost", wrapped.ID)
}

func (suite *ContainerTestSuite) TestTypeRemovalBookkeeping() {
	logger := &Logger{id: 1}
	suite.Nil(suite.container.Set("a", logger, typeName(logger)))
	suite.Nil(suite.container.Remove("a"))

	result, err := suite.container.Resolver().Invoke(
		func(log *Logger) *Logger { return log }, nil, nil)
	suite.Nil(err)
	suite.Nil(result, "no residual instance for the removed type")
}

func (suite *ContainerTestSuite) TestRemoveReleasesTypeAlias() {
	logger := &Logger{id: 1}
	suite.Nil(suite.container.Set("a", logger, typeName(logger)))
	suite.Nil(suite.container.Remove("a"))
	suite.False(suite.container.Has(typeName(logger)))

	// Reusing the identifier for an unrelated value must not revive
	// the old type binding.
	suite.Nil(suite.container.Set("a", "not a logger"))
	suite.False(suite.container.Has(typeName(logger)))

	result, err := suite.container.Resolver().Invoke(
		func(log *Logger) *Logger { return log }, nil, nil)
	suite.Nil(err)
	suite.Nil(result, "unrelated value never serves the removed type")
}

func (suite *ContainerTestSuite) TestSetRetypesAlias() {
	logger := &Logger{id: 1}
	conn := &Conn{host: "localhost"}
	suite.Nil(suite.container.Set("a", logger, typeName(logger)))
	suite.Nil(suite.container.Set("a", conn, typeName(conn)))

	suite.False(suite.container.Has(typeName(logger)))
	got, err := suite.container.Get(typeName(conn))
	suite.Nil(err)
	suite.Same(conn, got)
}

func (suite *ContainerTestSuite) TestRemoveDuplicateTypeInstance() {
	logger := &Logger{id: 1}
	suite.Nil(suite.container.Set("a", logger, typeName(logger)))
	suite.Nil(suite.container.Set("b", logger, typeName(logger)))
	suite.Len(suite.container.instances[typeName(logger)], 2)

	// The instance list is a multiset removed by single identity
	// match: one registration survives each removal.
	suite.Nil(suite.container.Remove("a"))
	suite.Len(suite.container.instances[typeName(logger)], 1)
	suite.Nil(suite.container.Remove("b"))
	suite.Empty(suite.container.instances[typeName(logger)])
}

func (suite *ContainerTestSuite) TestRemoveAbsentEntry() {
	suite.Nil(suite.container.Remove("missing"))
}

func (suite *ContainerTestSuite) TestManyOperations() {
	suite.Nil(suite.container.SetMany(map[string]any{
		"host": "localhost",
		"port": 8080,
	}))
	suite.Nil(suite.container.DefineMany(map[string]any{
		"conn":  Def{Class: "Connection"},
		"clock": Def{Class: "Clock"},
	}))
	value, err := suite.container.Get("conn")
	suite.Nil(err)
	suite.Equal("localhost", value.(*Connection).host)

	err = suite.container.RemoveMany([]string{"conn", SelfID, "clock"})
	var merged *multierror.Error
	suite.ErrorAs(err, &merged)
	suite.Len(merged.Errors, 1, "locked failure collected, others removed")
	suite.False(suite.container.Has("conn"))
	suite.False(suite.container.Has("clock"))
}

func (suite *ContainerTestSuite) TestBacksAnotherResolver() {
	logger := &Logger{id: 1}
	suite.Nil(suite.container.Set("logger", logger, typeName(logger)))

	r := NewResolver()
	r.SetContainer(suite.container)
	result, err := r.Invoke(func(log *Logger) *Logger { return log }, nil, nil)
	suite.Nil(err)
	suite.Same(logger, result)
}

func TestContainerTestSuite(t *testing.T) {
	suite.Run(t, new(ContainerTestSuite))
}
