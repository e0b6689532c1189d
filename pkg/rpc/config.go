package rpc

import (
	"time"

	"github.com/code-payments/soltips-server/pkg/config"
	"github.com/code-payments/soltips-server/pkg/config/env"
	"github.com/code-payments/soltips-server/pkg/config/memory"
	"github.com/code-payments/soltips-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "RPC_"

	// Writes per second per client address. Zero disables the limit.
	WriteRateLimitConfigEnvName = envConfigPrefix + "WRITE_RATE_LIMIT"
	defaultWriteRateLimit       = 10.0

	MaxRequestBytesConfigEnvName = envConfigPrefix + "MAX_REQUEST_BYTES"
	defaultMaxRequestBytes       = 1 << 20

	MaxMultipleAccountsConfigEnvName = envConfigPrefix + "MAX_MULTIPLE_ACCOUNTS"
	defaultMaxMultipleAccounts       = 100

	RequestTimeoutConfigEnvName = envConfigPrefix + "REQUEST_TIMEOUT"
	defaultRequestTimeout       = 30 * time.Second
)

type conf struct {
	writeRateLimit      config.Float64
	maxRequestBytes     config.Uint64
	maxMultipleAccounts config.Uint64
	requestTimeout      config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			writeRateLimit:      env.NewFloat64Config(WriteRateLimitConfigEnvName, defaultWriteRateLimit),
			maxRequestBytes:     env.NewUint64Config(MaxRequestBytesConfigEnvName, defaultMaxRequestBytes),
			maxMultipleAccounts: env.NewUint64Config(MaxMultipleAccountsConfigEnvName, defaultMaxMultipleAccounts),
			requestTimeout:      env.NewDurationConfig(RequestTimeoutConfigEnvName, defaultRequestTimeout),
		}
	}
}

type TestOverrides struct {
	WriteRateLimit float64
	RequestTimeout time.Duration
}

func WithTestOverrides(overrides *TestOverrides) ConfigProvider {
	return func() *conf {
		var requestTimeout interface{}
		if overrides.RequestTimeout > 0 {
			requestTimeout = overrides.RequestTimeout
		}

		return &conf{
			writeRateLimit:      wrapper.NewFloat64Config(memory.NewConfig(overrides.WriteRateLimit), defaultWriteRateLimit),
			maxRequestBytes:     wrapper.NewUint64Config(memory.NewConfig(uint64(defaultMaxRequestBytes)), defaultMaxRequestBytes),
			maxMultipleAccounts: wrapper.NewUint64Config(memory.NewConfig(uint64(defaultMaxMultipleAccounts)), defaultMaxMultipleAccounts),
			requestTimeout:      wrapper.NewDurationConfig(memory.NewConfig(requestTimeout), defaultRequestTimeout),
		}
	}
}
