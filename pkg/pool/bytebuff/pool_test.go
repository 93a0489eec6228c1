package bytebuff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolGetPut(t *testing.T) {
	p := &Pool{}

	buf := p.Get()
	_, _ = buf.WriteString("hello")
	assert.Equal(t, "hello", buf.String())
	p.Put(buf)
	p.Put(nil)

	again := p.Get()
	assert.Zero(t, again.Len(), "buffer from pool must be reset")
	p.Put(again)

	gets, puts := p.Stats()
	assert.Equal(t, uint64(2), gets)
	assert.Equal(t, uint64(2), puts)
}
