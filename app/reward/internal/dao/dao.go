// Package dao 账本表与缓存的数据访问对象, 方法接收 postgres.Querier 以便在事务内复用
package dao

import (
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
)

func observe(m *metrics.RewardMetrics, op string, start time.Time, err *error) {
	m.RecordDBQuery(op, *err == nil, time.Since(start).Seconds())
}
