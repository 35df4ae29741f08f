package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointer(t *testing.T) {
	value := "value"
	ptr := To(value)
	require.NotNil(t, ptr)
	assert.Equal(t, value, *ptr)

	copied := Copy(ptr)
	require.NotNil(t, copied)
	assert.Equal(t, value, *copied)
	*copied = "modified"
	assert.Equal(t, value, *ptr)
	assert.Nil(t, Copy[string](nil))

	assert.Nil(t, IfValid(false, uint64(1)))
	assert.EqualValues(t, 1, *IfValid(true, uint64(1)))

	assert.Equal(t, ptr, OrDefault(ptr, "default"))
	assert.Equal(t, "default", *OrDefault(nil, "default"))
}
