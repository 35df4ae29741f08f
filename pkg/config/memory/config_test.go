package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/config"
)

func TestConfig_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewConfig(nil)

	for _, step := range []struct {
		name     string
		apply    func()
		expected interface{}
		err      error
	}{
		{"unset", func() {}, nil, config.ErrNoValue},
		{"set", func() { c.SetValue(uint64(25)) }, uint64(25), nil},
		{"induced error", c.InduceErrors, nil, errDeveloperInduced},
		{"recovered", c.StopInducingErrors, uint64(25), nil},
		{"cleared", c.ClearValue, nil, config.ErrNoValue},
		{"shutdown", c.Shutdown, nil, config.ErrShutdown},
		{"set after shutdown", func() { c.SetValue("ignored") }, nil, config.ErrShutdown},
	} {
		step.apply()

		actual, err := c.Get(ctx)
		if step.err != nil {
			assert.Equal(t, step.err, err, step.name)
			assert.Nil(t, actual, step.name)
			continue
		}

		require.NoError(t, err, step.name)
		assert.Equal(t, step.expected, actual, step.name)
	}
}

func TestConfig_ConcurrentAccess(t *testing.T) {
	c := NewConfig("initial")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetValue("updated")
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Get(context.Background())
		}()
	}
	wg.Wait()

	actual, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "updated", actual)
}
