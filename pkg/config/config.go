package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue is returned by a Config source that has nothing set.
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown is returned by a Config source used after Shutdown.
	ErrShutdown = errors.New("config: shutdown")
)

// Config is an untyped configuration source. Values are either raw []byte
// (env) or already typed (memory), and are converted by the wrapper package.
type Config interface {
	Get(ctx context.Context) (interface{}, error)

	// Shutdown releases any resources held by the source.
	Shutdown()
}

// Value is a typed configuration value backed by a Config source.
//
// GetSafe surfaces source and conversion errors alongside the last good
// value. Get only returns the value.
type Value[T any] interface {
	Get(ctx context.Context) T
	GetSafe(ctx context.Context) (T, error)
	Shutdown()
}

type (
	Bool     = Value[bool]
	Duration = Value[time.Duration]
	Float64  = Value[float64]
	Uint64   = Value[uint64]
	String   = Value[string]
)
