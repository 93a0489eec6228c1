package gacha

import (
	"math/rand/v2"
	"sync"
)

// RNG 抽取随机源
type RNG interface {
	// Int64N 返回 [0, n) 的均匀随机数
	Int64N(n int64) int64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRNG 创建并发安全的随机源, seed 为 0 时随机播种
func NewRNG(seed uint64) RNG {
	s1, s2 := seed, seed^0x9e3779b97f4a7c15
	if seed == 0 {
		s1, s2 = rand.Uint64(), rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(s1, s2))}
}

func (l *lockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}
