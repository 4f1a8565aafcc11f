package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCacheRepository()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheMissReturnsNil(t *testing.T) {
	c := NewCacheRepository()

	got, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCacheRepository()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheDelete(t *testing.T) {
	c := NewCacheRepository()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheGetReturnsCopy(t *testing.T) {
	c := NewCacheRepository()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("abc"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
