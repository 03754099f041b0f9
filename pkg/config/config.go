package config

import (
	"github.com/tauraamui/mapinterp/internal/config"
	"github.com/tauraamui/mapinterp/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}

func Defaults() configdef.Values {
	return config.Defaults()
}
