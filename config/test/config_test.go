package test

import (
	"testing"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/stretchr/testify/suite"

	"github.com/aaphp/injected"
	"github.com/aaphp/injected/config"
)

type ConfigTestSuite struct {
	suite.Suite
	k *koanf.Koanf
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.k = koanf.New(".")
	suite.Nil(suite.k.Load(confmap.Provider(map[string]any{
		"app": map[string]any{
			"name":  "injected",
			"debug": true,
		},
		"db": map[string]any{
			"host": "localhost",
			"port": 5432,
		},
	}, "."), nil))
}

func (suite *ConfigTestSuite) TestLoadMergesSettings() {
	c := injected.NewContainer()
	suite.Nil(config.Load(c, suite.k))
	suite.Equal("injected", c.Settings().Get("app.name"))
	suite.Equal(true, c.Settings().Get("app.debug"))
}

func (suite *ConfigTestSuite) TestValuesRegistersEntries() {
	c := injected.NewContainer()
	suite.Nil(config.Values(c, suite.k, "db"))
	suite.True(c.Has("host"))
	host, err := c.Get("host")
	suite.Nil(err)
	suite.Equal("localhost", host)

	port, err := c.Get("port")
	suite.Nil(err)
	suite.Equal(5432, port)
}

func (suite *ConfigTestSuite) TestValuesFeedResolution() {
	c := injected.NewContainer()
	suite.Nil(config.Values(c, suite.k, "db"))
	result, err := c.Resolver().Invoke(
		injected.Func(func(host string, port int) string { return host },
			injected.P("host"), injected.P("port")),
		nil, nil, injected.DefaultFlags|injected.UseContainerByName)
	suite.Nil(err)
	suite.Equal("localhost", result)
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
