package injected

import (
	"github.com/knadh/koanf"
)

// Settings is the container's settings bag, a thin facade over a koanf
// instance using dotted paths.  It carries plain configuration values
// with none of the entry lifecycle semantics; every method delegates.
type Settings struct {
	k *koanf.Koanf
}

// NewSettings returns an empty settings bag.
func NewSettings() *Settings {
	return &Settings{k: koanf.New(".")}
}

// NewSettingsFrom wraps an existing koanf instance, typically one
// already loaded from file or env providers.
func NewSettingsFrom(k *koanf.Koanf) *Settings {
	if k == nil {
		panic("k cannot be nil")
	}
	return &Settings{k: k}
}

// Get returns the value at path, or nil.
func (s *Settings) Get(path string) any {
	return s.k.Get(path)
}

// Set stores a value at path.
func (s *Settings) Set(path string, value any) error {
	return s.k.Set(path, value)
}

// Has reports whether path holds a value.
func (s *Settings) Has(path string) bool {
	return s.k.Exists(path)
}

// Remove deletes the value at path.
func (s *Settings) Remove(path string) {
	s.k.Delete(path)
}

// All returns the flattened path map of every setting.
func (s *Settings) All() map[string]any {
	return s.k.All()
}

// Len counts the stored settings paths.
func (s *Settings) Len() int {
	return len(s.k.Keys())
}

// Each visits every settings path in flattened form.
func (s *Settings) Each(visit func(path string, value any)) {
	for path, value := range s.k.All() {
		visit(path, value)
	}
}

// Merge folds another koanf tree into the bag.
func (s *Settings) Merge(k *koanf.Koanf) error {
	return s.k.Merge(k)
}
