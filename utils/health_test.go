package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ok := CheckHealth(context.Background(), func(context.Context) error { return nil }, client)
	assert.True(t, ok.API)
	require.NotNil(t, ok.Redis)
	assert.True(t, *ok.Redis)
	assert.True(t, ok.Healthy())

	down := CheckHealth(context.Background(), func(context.Context) error { return errors.New("dial tcp: refused") }, nil)
	assert.False(t, down.API)
	assert.Nil(t, down.Redis)
	assert.Equal(t, "dial tcp: refused", down.Detail)
	assert.False(t, down.Healthy())
}
