package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/config"
	"nainai/backend/internal/store/memory"
)

func TestOpenInMemoryIsSeeded(t *testing.T) {
	a, err := Open(context.Background(), &config.Config{Timezone: "UTC"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, StoreMemory, a.StoreKind())
	assert.NotEmpty(t, a.Service.ListProducts(context.Background()))
	assert.Equal(t, time.UTC, a.Service.Location())
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{Timezone: "UTC", SQLitePath: filepath.Join(t.TempDir(), "app.db")}
	a, err := Open(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, a.StoreKind())
	assert.Empty(t, a.Service.ListProducts(context.Background()))
	require.NoError(t, a.Close())
}

func TestOpenRejectsBadTimezone(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Timezone: "Nowhere/Land"})
	require.Error(t, err)
}

func TestOpenFallsBackWithoutRedis(t *testing.T) {
	// Nothing listens on port 1.
	a, err := Open(context.Background(), &config.Config{Timezone: "UTC", RedisAddr: "127.0.0.1:1"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	resp, err := a.Service.Recommend(context.Background(), "milk tea")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	a := FromRepository(memory.New())
	var order []int
	a.OnClose(func() error { order = append(order, 1); return nil })
	a.OnClose(func() error { order = append(order, 2); return errors.New("boom") })

	err := a.Close()
	require.EqualError(t, err, "boom")
	assert.Equal(t, []int{2, 1}, order)
	require.NoError(t, a.Close())
}
