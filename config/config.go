// Package config seeds containers from koanf configuration sources.
// https://github.com/knadh/koanf
package config

import (
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf"

	"github.com/aaphp/injected"
)

// Load merges a koanf tree into the container's settings bag.
func Load(c *injected.Container, k *koanf.Koanf) error {
	if k == nil {
		panic("k cannot be nil")
	}
	return c.Settings().Merge(k)
}

// Values registers the immediate children of path as value entries,
// one per child key.  Failures are collected; the remaining children
// still register.
func Values(c *injected.Container, k *koanf.Koanf, path string) error {
	if k == nil {
		panic("k cannot be nil")
	}
	prefix := ""
	if path != "" {
		prefix = path + "."
	}
	var result error
	for _, key := range k.MapKeys(path) {
		if err := c.Set(key, k.Get(prefix+key)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
