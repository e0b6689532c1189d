package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/soltips-server/pkg/config"
)

func TestConfig_ReadsOnEveryGet(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	t.Setenv(env, "default")

	c := NewConfig("env_config_test_var")

	v, err := c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("default"), v)

	t.Setenv(env, "")

	v, err = c.Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)

	t.Setenv(env, "updated")

	v, err = c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("updated"), v)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	t.Setenv("ENV_CONFIG_TEST_TIMEOUT", "5s")
	t.Setenv("ENV_CONFIG_TEST_LIMIT", "12.5")
	t.Setenv("ENV_CONFIG_TEST_ENABLED", "true")

	assert.Equal(t, 5*time.Second, NewDurationConfig("env_config_test_timeout", time.Second).Get(ctx))
	assert.Equal(t, 12.5, NewFloat64Config("ENV_CONFIG_TEST_LIMIT", 0).Get(ctx))
	assert.True(t, NewBoolConfig("ENV_CONFIG_TEST_ENABLED", false).Get(ctx))
	assert.EqualValues(t, 99, NewUint64Config("ENV_CONFIG_TEST_MISSING", 99).Get(ctx))
	assert.Equal(t, "memory", NewStringConfig("ENV_CONFIG_TEST_MISSING", "memory").Get(ctx))
}
