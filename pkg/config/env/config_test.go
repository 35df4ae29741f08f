package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/affiliate-market/pkg/config"
)

func TestConfig(t *testing.T) {
	const key = "ENV_CONFIG_TEST_VAR"

	t.Setenv(key, "")
	c := NewConfig(key)

	v, err := c.Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)

	t.Setenv(key, "value")
	v, err = c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	t.Setenv("ENV_CONFIG_TEST_TIMEOUT", "")
	timeout := NewDurationConfig("ENV_CONFIG_TEST_TIMEOUT", time.Second)
	assert.Equal(t, time.Second, timeout.Get(ctx))

	t.Setenv("ENV_CONFIG_TEST_TIMEOUT", "1m")
	assert.Equal(t, time.Minute, timeout.Get(ctx))

	t.Setenv("ENV_CONFIG_TEST_STRIPES", "16")
	assert.EqualValues(t, 16, NewUint64Config("env_config_test_stripes", 1).Get(ctx))

	t.Setenv("ENV_CONFIG_TEST_ENABLED", "true")
	assert.True(t, NewBoolConfig("ENV_CONFIG_TEST_ENABLED", false).Get(ctx))

	t.Setenv("ENV_CONFIG_TEST_NAME", "market")
	assert.Equal(t, "market", NewStringConfig("ENV_CONFIG_TEST_NAME", "").Get(ctx))
}
