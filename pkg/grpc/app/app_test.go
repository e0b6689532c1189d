package app

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultBaseConfig(), config)
	assert.Error(t, config.validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
app_name: soltips-server
http_listen_address: ":9000"
shutdown_grace_period: 5s
enable_ballast: false
app:
  store: postgres
`), 0600))

	t.Setenv("HTTP_LISTEN_ADDRESS", ":9100")
	t.Setenv("BALLAST_CAPACITY", "0.25")

	config, err := loadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.validate())

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "soltips-server", config.AppName)
	assert.Equal(t, ":9100", config.HTTPListenAddress)
	assert.Equal(t, "localhost:8086", config.GRPCListenAddress)
	assert.Equal(t, 5*time.Second, config.ShutdownGracePeriod)
	assert.False(t, config.EnableBallast)
	assert.EqualValues(t, 0.25, config.BallastCapacity)
	assert.Equal(t, "postgres", config.AppConfig["store"])
}

func TestBaseConfig_Validate(t *testing.T) {
	config := defaultBaseConfig()
	config.AppName = "soltips-server"
	assert.NoError(t, config.validate())

	config.TLSCertificate = "file:///etc/tls/cert.pem"
	assert.Error(t, config.validate())

	config.TLSKey = "file:///etc/tls/key.pem"
	assert.NoError(t, config.validate())

	config.ShutdownGracePeriod = 0
	assert.Error(t, config.validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, []byte("certificate"), 0600))

	for _, fileURL := range []string{path, "file://" + path} {
		data, err := LoadFile(fileURL)
		require.NoError(t, err)
		assert.Equal(t, []byte("certificate"), data)
	}

	_, err := LoadFile("s3://bucket/cert.pem")
	assert.Error(t, err)

	t.Cleanup(func() {
		loadersMu.Lock()
		delete(loaders, "memory")
		loadersMu.Unlock()
	})
	RegisterFileLoader("memory", func(u *url.URL) ([]byte, error) {
		if u.Host != "cert" {
			return nil, errors.New("not found")
		}
		return []byte("in memory"), nil
	})
	data, err := LoadFile("memory://cert")
	require.NoError(t, err)
	assert.Equal(t, []byte("in memory"), data)

	assert.Panics(t, func() {
		RegisterFileLoader("memory", loadLocalFile)
	})
}

func TestLogDecider(t *testing.T) {
	assert.False(t, logDecider(healthgrpc.Health_Check_FullMethodName, nil))
	assert.False(t, logDecider(healthgrpc.Health_Watch_FullMethodName, nil))
	assert.True(t, logDecider(healthgrpc.Health_Check_FullMethodName, errors.New("unavailable")))
	assert.True(t, logDecider("/soltips.v1.Tips/Get", nil))
}

func TestBallastSize(t *testing.T) {
	assert.Zero(t, ballastSize(1<<30, 0))
	assert.EqualValues(t, 1<<28, ballastSize(1<<30, 0.25))
	assert.EqualValues(t, 1<<29, ballastSize(1<<30, 0.9))
}

func TestScheduleRestart(t *testing.T) {
	_, err := scheduleRestart("not a schedule", make(chan struct{}))
	assert.Error(t, err)

	restartCh := make(chan struct{})
	stop, err := scheduleRestart("@every 1s", restartCh)
	require.NoError(t, err)
	defer stop()

	select {
	case <-restartCh:
	case <-time.After(5 * time.Second):
		t.Fatal("restart was not scheduled")
	}
}

func TestNewGRPCServer_RegistersHealth(t *testing.T) {
	server := newGRPCServer(runOptions{}, nil)
	defer server.Stop()

	_, ok := server.GetServiceInfo()[healthgrpc.Health_ServiceDesc.ServiceName]
	assert.True(t, ok)
}
