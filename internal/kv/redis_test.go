package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *Redis {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewRedis(client)
}

func TestRedis_SetAndGet(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", "v1", time.Hour))
	val, ok, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", val)
}

func TestRedis_Get_MissingKey(t *testing.T) {
	r := newTestRedis(t)
	_, ok, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_SetNX_FirstWriteWins(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.SetNX(ctx, "k1", "first", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SetNX(ctx, "k1", "second", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	val, _, _ := r.Get(ctx, "k1")
	assert.Equal(t, "first", val)
}
