package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nadmax/servicetime/internal/catalog"
	"github.com/nadmax/servicetime/internal/config"
	"github.com/nadmax/servicetime/internal/estimator"
	"github.com/nadmax/servicetime/internal/inventory"
	"github.com/nadmax/servicetime/internal/notify"
	"github.com/nadmax/servicetime/internal/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInventoryPersister(t *testing.T) {
	t.Run("file backend", func(t *testing.T) {
		cfg := &config.Config{
			InventoryBackend: config.InventoryBackendFile,
			InventoryFile:    filepath.Join(t.TempDir(), "inventory.json"),
		}

		p, err := newInventoryPersister(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &inventory.FilePersister{}, p)
	})

	t.Run("redis backend", func(t *testing.T) {
		mr := miniredis.RunT(t)
		q, err := workload.NewRedisQueue(context.Background(), mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = q.Close() })

		cfg := &config.Config{
			InventoryBackend:  config.InventoryBackendRedis,
			InventoryRedisKey: "inventory",
		}

		p, err := newInventoryPersister(cfg, q)
		require.NoError(t, err)
		assert.IsType(t, &inventory.RedisPersister{}, p)

		store, err := inventory.Open(context.Background(), p)
		require.NoError(t, err)
		assert.NotEmpty(t, store.Models())
		assert.True(t, mr.Exists("inventory"))
	})

	t.Run("redis backend without connection", func(t *testing.T) {
		cfg := &config.Config{InventoryBackend: config.InventoryBackendRedis}

		_, err := newInventoryPersister(cfg, nil)
		assert.Error(t, err)
	})
}

func TestNewPredictor(t *testing.T) {
	c := catalog.Default()

	t.Run("heuristic without model path", func(t *testing.T) {
		p, err := newPredictor(&config.Config{ReferenceYear: 2024}, c)
		require.NoError(t, err)
		assert.IsType(t, &estimator.Heuristic{}, p)
	})

	t.Run("trained model", func(t *testing.T) {
		cfg := &config.Config{ModelPath: filepath.Join("..", "..", "internal", "estimator", "testdata", "model.json")}

		p, err := newPredictor(cfg, c)
		require.NoError(t, err)
		assert.IsType(t, &estimator.RegressionModel{}, p)
	})

	t.Run("missing model file", func(t *testing.T) {
		cfg := &config.Config{ModelPath: filepath.Join(t.TempDir(), "missing.json")}

		_, err := newPredictor(cfg, c)
		assert.Error(t, err)
	})
}

func TestNewAlertSender(t *testing.T) {
	assert.IsType(t, notify.LogSender{}, newAlertSender(config.EmailConfig{}))

	sender := newAlertSender(config.EmailConfig{
		APIKey:      "SG.key",
		FromName:    "Service Desk",
		FromAddress: "desk@example.com",
		To:          "stores@example.com",
	})
	assert.IsType(t, &notify.SendGridSender{}, sender)
}
