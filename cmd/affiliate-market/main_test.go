package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/app"
)

func TestDecodeServiceConfig(t *testing.T) {
	config, err := decodeServiceConfig(app.Config{
		"database": map[string]interface{}{
			"host":    "localhost",
			"port":    "6543",
			"db_name": "market",
		},
		"etcd": map[string]interface{}{
			"endpoints": []interface{}{"localhost:2379"},
			"lock_ttl":  "15s",
		},
		"rate_limit": 2.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, 6543, config.Database.Port)
	assert.Equal(t, "market", config.Database.DbName)
	assert.Equal(t, 20, config.Database.MaxOpenConnections)
	assert.Equal(t, []string{"localhost:2379"}, config.Etcd.Endpoints)
	assert.Equal(t, 15*time.Second, config.Etcd.LockTTL)
	assert.Equal(t, defaultServiceConfig.Etcd.LockRoot, config.Etcd.LockRoot)
	assert.Equal(t, 2.5, config.RateLimit)
}

func TestDecodeServiceConfig_Validation(t *testing.T) {
	_, err := decodeServiceConfig(app.Config{})
	assert.Error(t, err)

	config, err := decodeServiceConfig(app.Config{"in_memory": true})
	require.NoError(t, err)
	assert.True(t, config.InMemory)
}

func TestInMemoryApp(t *testing.T) {
	a := &marketApp{}
	require.NoError(t, a.Init(app.Config{"in_memory": "true"}, nil))

	handlers := a.HTTPHandlers()
	assert.Len(t, handlers, 5)
	assert.Contains(t, handlers, "/v1/processMint")

	a.Stop()
	a.Stop()
	select {
	case <-a.ShutdownChan():
	default:
		t.Fatal("expected shutdown channel to be closed")
	}
}
