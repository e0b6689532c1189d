package wrapper

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/config"
	"github.com/code-payments/soltips-server/pkg/config/memory"
)

type wrapperTestCase[T any] struct {
	defaultValue T
	override     T
	raw          []byte
	rawValue     T
}

func runWrapperTest[T any](t *testing.T, ctor func(config.Config, T) config.Value[T], tc wrapperTestCase[T]) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := ctor(mock, tc.defaultValue)

	// Default when nothing is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.defaultValue, val)
	assert.Equal(t, tc.defaultValue, wrapper.Get(ctx))

	mock.SetValue(tc.override)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.override, val)
	assert.Equal(t, tc.override, wrapper.Get(ctx))

	// Last observed value on error
	mock.SetError(errors.New("source unavailable"))
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, tc.override, val)
	assert.Equal(t, tc.override, wrapper.Get(ctx))

	mock.SetError(nil)
	mock.SetValue(nil)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.defaultValue, val)

	// Raw bytes, as produced by env based configs
	mock.SetValue(tc.raw)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.rawValue, val)

	// Unsupported source types keep the last value
	mock.SetValue(struct{}{})
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, tc.rawValue, val)

	wrapper.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestBoolConfig(t *testing.T) {
	runWrapperTest(t, func(c config.Config, v bool) config.Value[bool] { return NewBoolConfig(c, v) }, wrapperTestCase[bool]{
		defaultValue: true,
		override:     false,
		raw:          []byte("true"),
		rawValue:     true,
	})
}

func TestUint64Config(t *testing.T) {
	runWrapperTest(t, func(c config.Config, v uint64) config.Value[uint64] { return NewUint64Config(c, v) }, wrapperTestCase[uint64]{
		defaultValue: math.MaxUint64,
		override:     0,
		raw:          []byte("10000"),
		rawValue:     10_000,
	})

	mock := memory.NewConfig(uint(42))
	assert.EqualValues(t, 42, NewUint64Config(mock, 1).Get(context.Background()))
}

func TestFloat64Config(t *testing.T) {
	runWrapperTest(t, func(c config.Config, v float64) config.Value[float64] { return NewFloat64Config(c, v) }, wrapperTestCase[float64]{
		defaultValue: math.Pi,
		override:     -math.Phi,
		raw:          []byte("0.5"),
		rawValue:     0.5,
	})
}

func TestStringConfig(t *testing.T) {
	runWrapperTest(t, func(c config.Config, v string) config.Value[string] { return NewStringConfig(c, v) }, wrapperTestCase[string]{
		defaultValue: "memory",
		override:     "postgres",
		raw:          []byte("file"),
		rawValue:     "file",
	})
}

func TestDurationConfig(t *testing.T) {
	runWrapperTest(t, func(c config.Config, v time.Duration) config.Value[time.Duration] { return NewDurationConfig(c, v) }, wrapperTestCase[time.Duration]{
		defaultValue: 30 * time.Second,
		override:     time.Minute,
		raw:          []byte("250ms"),
		rawValue:     250 * time.Millisecond,
	})
}

func TestInvalidRawValue(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig([]byte("7"))
	wrapper := NewUint64Config(mock, 1)
	assert.EqualValues(t, 7, wrapper.Get(ctx))

	mock.SetValue([]byte("seven"))
	val, err := wrapper.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 7, val)
}
