package ledger

import (
	"github.com/code-payments/soltips-server/pkg/config"
	"github.com/code-payments/soltips-server/pkg/config/env"
	"github.com/code-payments/soltips-server/pkg/config/memory"
	"github.com/code-payments/soltips-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "LEDGER_"

	LamportsPerByteYearConfigEnvName = envConfigPrefix + "RENT_LAMPORTS_PER_BYTE_YEAR"
	defaultLamportsPerByteYear       = DefaultLamportsPerByteYear

	ExemptionThresholdConfigEnvName = envConfigPrefix + "RENT_EXEMPTION_THRESHOLD"
	defaultExemptionThreshold       = DefaultExemptionThreshold

	EnableAirdropsConfigEnvName = envConfigPrefix + "ENABLE_AIRDROPS"
	defaultEnableAirdrops       = false

	MaxAirdropLamportsConfigEnvName = envConfigPrefix + "MAX_AIRDROP_LAMPORTS"
	defaultMaxAirdropLamports       = 2_000_000_000

	StripedLockParallelizationConfigEnvName = envConfigPrefix + "STRIPED_LOCK_PARALLELIZATION"
	defaultStripedLockParallelization       = 1024

	SignatureCacheSizeConfigEnvName = envConfigPrefix + "SIGNATURE_CACHE_SIZE"
	defaultSignatureCacheSize       = 100_000
)

type conf struct {
	lamportsPerByteYear        config.Uint64
	exemptionThreshold         config.Uint64
	enableAirdrops             config.Bool
	maxAirdropLamports         config.Uint64
	stripedLockParallelization config.Uint64
	signatureCacheSize         config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lamportsPerByteYear:        env.NewUint64Config(LamportsPerByteYearConfigEnvName, defaultLamportsPerByteYear),
			exemptionThreshold:         env.NewUint64Config(ExemptionThresholdConfigEnvName, defaultExemptionThreshold),
			enableAirdrops:             env.NewBoolConfig(EnableAirdropsConfigEnvName, defaultEnableAirdrops),
			maxAirdropLamports:         env.NewUint64Config(MaxAirdropLamportsConfigEnvName, defaultMaxAirdropLamports),
			stripedLockParallelization: env.NewUint64Config(StripedLockParallelizationConfigEnvName, defaultStripedLockParallelization),
			signatureCacheSize:         env.NewUint64Config(SignatureCacheSizeConfigEnvName, defaultSignatureCacheSize),
		}
	}
}

type TestOverrides struct {
	EnableAirdrops     bool
	MaxAirdropLamports uint64
}

// WithTestOverrides returns an in memory configuration with airdrops
// controlled by overrides. Rent uses the default parameters.
func WithTestOverrides(overrides *TestOverrides) ConfigProvider {
	return func() *conf {
		maxAirdropLamports := overrides.MaxAirdropLamports
		if maxAirdropLamports == 0 {
			maxAirdropLamports = defaultMaxAirdropLamports
		}

		return &conf{
			lamportsPerByteYear:        wrapper.NewUint64Config(memory.NewConfig(uint64(defaultLamportsPerByteYear)), defaultLamportsPerByteYear),
			exemptionThreshold:         wrapper.NewUint64Config(memory.NewConfig(uint64(defaultExemptionThreshold)), defaultExemptionThreshold),
			enableAirdrops:             wrapper.NewBoolConfig(memory.NewConfig(overrides.EnableAirdrops), defaultEnableAirdrops),
			maxAirdropLamports:         wrapper.NewUint64Config(memory.NewConfig(maxAirdropLamports), defaultMaxAirdropLamports),
			stripedLockParallelization: wrapper.NewUint64Config(memory.NewConfig(uint64(64)), 64),
			signatureCacheSize:         wrapper.NewUint64Config(memory.NewConfig(uint64(1024)), 1024),
		}
	}
}
