package lru

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasic(t *testing.T) {
	c := New[string, int](&Config{MaxSize: 10, DefaultTTL: time.Minute})
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", 2)
	c.Set("c", 3)
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Zero(t, c.Len())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](&Config{MaxSize: 2}, WithOnEvict(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	assert.Equal(t, []string{"b"}, evicted)
	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[string, int](&Config{DefaultTTL: time.Second})
	c.now = func() time.Time { return now }
	defer c.Close()

	c.Set("a", 1)
	c.SetWithTTL("forever", 2, 0)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)

	c.Set("b", 3)
	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, c.RemoveExpired())
	assert.Equal(t, 1, c.Len())
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](&Config{})
	defer c.Close()

	calls := 0
	create := func() int { calls++; return 7 }
	assert.Equal(t, 7, c.GetOrCreate("k", create))
	assert.Equal(t, 7, c.GetOrCreate("k", create))
	assert.Equal(t, 1, calls)
	assert.NoError(t, c.Close())
}
