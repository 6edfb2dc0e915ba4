package injected

import "fmt"

// Flags control which fallback sources a Resolver consults when a
// parameter cannot be satisfied from the type map.
type Flags uint8

const (
	// UseContainerByType resolves a typed parameter from the backing
	// source when the type name is a known identifier.
	UseContainerByType Flags = 1 << iota

	// UseContainerByName resolves a parameter from the backing source
	// when the parameter name is a known identifier.
	UseContainerByName

	// UseArgsByPosition resolves a parameter from the explicit argument
	// map keyed by declaration position.
	UseArgsByPosition

	// UseArgsByName resolves a parameter from the explicit argument map
	// keyed by parameter name.
	UseArgsByName
)

// DefaultFlags is the standard policy: container lookups by type,
// explicit arguments by position and by name.  Container lookups by
// parameter name are opt-in.
const DefaultFlags = UseContainerByType | UseArgsByPosition | UseArgsByName

const flagsMask = UseContainerByType | UseContainerByName |
	UseArgsByPosition | UseArgsByName

func validFlags(flags Flags) error {
	if flags&^flagsMask != 0 {
		return &ConfigError{Reason: fmt.Sprintf(
			"unrecognized resolution flags %#08b", flags)}
	}
	return nil
}
