package app

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the application section of the config file, passed to App.Init.
// Decode it with mapstructure.
type Config map[string]interface{}

// BaseConfig is the process level configuration shared by every App. Values
// come from the config file and are overridden by the upper cased environment
// variable of the same name.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`
	AppName  string `mapstructure:"app_name"`

	GRPCListenAddress  string `mapstructure:"grpc_listen_address"`
	HTTPListenAddress  string `mapstructure:"http_listen_address"`
	DebugListenAddress string `mapstructure:"debug_listen_address"`

	// TLSCertificate and TLSKey are file URLs resolved with LoadFile. When set,
	// both the gRPC and HTTP servers use TLS.
	TLSCertificate string `mapstructure:"tls_certificate"`
	TLSKey         string `mapstructure:"tls_private_key"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	EnablePprof  bool `mapstructure:"enable_pprof"`
	EnableExpvar bool `mapstructure:"enable_expvar"`

	// BallastCapacity is a fraction of total memory, capped at maxBallastCapacity.
	EnableBallast   bool    `mapstructure:"enable_ballast"`
	BallastCapacity float32 `mapstructure:"ballast_capacity"`

	// Scheduled process restart, for leaks that outpace a fix.
	EnableMemoryLeakCron   bool   `mapstructure:"enable_memory_leak_cron"`
	MemoryLeakCronSchedule string `mapstructure:"memory_leak_cron_schedule"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	AppConfig Config `mapstructure:"app"`
}

var configKeys = []string{
	"log_level",
	"app_name",
	"grpc_listen_address",
	"http_listen_address",
	"debug_listen_address",
	"tls_certificate",
	"tls_private_key",
	"shutdown_grace_period",
	"enable_pprof",
	"enable_expvar",
	"enable_ballast",
	"ballast_capacity",
	"enable_memory_leak_cron",
	"memory_leak_cron_schedule",
	"new_relic_license_key",
}

func defaultBaseConfig() BaseConfig {
	return BaseConfig{
		LogLevel: "info",

		GRPCListenAddress:  "localhost:8086",
		HTTPListenAddress:  ":8899",
		DebugListenAddress: ":8123",

		ShutdownGracePeriod: 30 * time.Second,

		EnablePprof:  true,
		EnableExpvar: true,

		EnableBallast:   true,
		BallastCapacity: 0.333,

		MemoryLeakCronSchedule: "0 5 * * *",
	}
}

// loadConfig reads the config file at path, if it exists, on top of the
// defaults and applies environment overrides.
func loadConfig(path string) (BaseConfig, error) {
	v := viper.New()
	for _, key := range configKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return BaseConfig{}, errors.Wrapf(err, "failed to bind %s", key)
		}
	}

	// An explicitly set file that is missing is not reported by viper, so
	// only set it when present.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return BaseConfig{}, errors.Wrap(err, "failed to read config")
		}
	} else if !os.IsNotExist(err) {
		return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
	}

	config := defaultBaseConfig()
	if err := v.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}

func (c BaseConfig) validate() error {
	if len(c.AppName) == 0 {
		return errors.New("must specify an application name")
	}
	if (c.TLSCertificate == "") != (c.TLSKey == "") {
		return errors.New("tls certificate and key must be provided together")
	}
	if c.ShutdownGracePeriod <= 0 {
		return errors.New("shutdown grace period must be positive")
	}
	return nil
}
