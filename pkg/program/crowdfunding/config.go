package crowdfunding

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/config"
	"github.com/code-payments/soltips-server/pkg/config/env"
	"github.com/code-payments/soltips-server/pkg/config/memory"
	"github.com/code-payments/soltips-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "CROWDFUNDING_PROGRAM_"

	FeeCollectorConfigEnvName = envConfigPrefix + "FEE_COLLECTOR"
	defaultFeeCollector       = ""
)

type conf struct {
	feeCollector config.String
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			feeCollector: env.NewStringConfig(FeeCollectorConfigEnvName, defaultFeeCollector),
		}
	}
}

type TestOverrides struct {
	FeeCollector ed25519.PublicKey
}

func WithTestOverrides(overrides *TestOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			feeCollector: wrapper.NewStringConfig(memory.NewConfig(base58.Encode(overrides.FeeCollector)), defaultFeeCollector),
		}
	}
}

// getFeeCollector returns the only account permitted to receive donation fees.
func (c *conf) getFeeCollector(ctx context.Context) (ed25519.PublicKey, error) {
	value := c.feeCollector.Get(ctx)
	if len(value) == 0 {
		return nil, errors.New("fee collector is not configured")
	}

	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid fee collector")
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid fee collector length: %d", len(decoded))
	}
	return decoded, nil
}
