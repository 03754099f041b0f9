package config

import (
	"github.com/tauraamui/mapinterp/pkg/configdef"
)

func DefaultResolver() configdef.Resolver {
	return defaultResolver{}
}

func DefaultCreateResolver() configdef.CreateResolver {
	return defaultResolver{}
}

type defaultResolver struct{}

func (d defaultResolver) Resolve() (configdef.Values, error) {
	return load()
}

func (d defaultResolver) Create() error {
	return create()
}

// Defaults returns values holding only the built in defaults.
func Defaults() configdef.Values {
	values := configdef.Values{}
	loadDefaults(&values)
	return values
}
