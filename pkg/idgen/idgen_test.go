package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyflakeUnique(t *testing.T) {
	g, err := NewSonyflake(7)
	require.NoError(t, err)

	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		id, err := g.NextID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	var g Generator = NewSequence(100)
	a, _ := g.NextID()
	b, _ := g.NextID()
	assert.Equal(t, int64(101), a)
	assert.Equal(t, int64(102), b)
}
