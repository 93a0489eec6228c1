// Package idgen 提供全局唯一 ID 生成
package idgen

import (
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sony/sonyflake"
)

// Generator ID 生成器接口
type Generator interface {
	// NextID 生成下一个唯一 ID
	NextID() (int64, error)
}

// Epoch sonyflake 起始时间
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type sonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

// NewSonyflake 创建基于 Sonyflake 的 ID 生成器, machineID 范围 0-65535
func NewSonyflake(machineID uint16) (Generator, error) {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: Epoch,
		MachineID: func() (uint16, error) {
			return machineID, nil
		},
	})
	if sf == nil {
		return nil, errors.New("failed to create sonyflake generator")
	}
	return &sonyflakeGenerator{sf: sf}, nil
}

func (g *sonyflakeGenerator) NextID() (int64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, errors.Wrap(err, "failed to generate id")
	}
	return int64(id), nil
}

// Sequence 进程内自增序列, 用于内存存储和测试
type Sequence struct {
	n atomic.Int64
}

// NewSequence 创建从 start+1 开始的序列
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

func (s *Sequence) NextID() (int64, error) {
	return s.n.Add(1), nil
}
