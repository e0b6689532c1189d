package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/config"
)

func TestConfig_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewConfig(nil)

	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue(uint64(1_000))
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), val)

	sourceErr := errors.New("source unavailable")
	c.SetError(sourceErr)
	_, err = c.Get(ctx)
	assert.Equal(t, sourceErr, err)

	c.SetError(nil)
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), val)

	c.SetValue(nil)
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue("value")
	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}
