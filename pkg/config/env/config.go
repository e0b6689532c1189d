// Package env provides configuration sourced from environment variables.
// Keys are upper cased before lookup.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/soltips-server/pkg/config"
	"github.com/code-payments/soltips-server/pkg/config/wrapper"
)

type source struct {
	key string
}

// NewConfig returns a config.Config that reads key from the environment on
// every Get. Unset and empty variables yield config.ErrNoValue.
func NewConfig(key string) config.Config {
	return &source{key: strings.ToUpper(key)}
}

func (s *source) Get(_ context.Context) (interface{}, error) {
	val := os.Getenv(s.key)
	if len(val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

func (s *source) Shutdown() {}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewFloat64Config(key string, defaultValue float64) config.Float64 {
	return wrapper.NewFloat64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
