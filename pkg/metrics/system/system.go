// Package system 采集进程 CPU、内存与 goroutine 指标
package system

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 系统统计数据
type Stats struct {
	CPUPercent    float64   `json:"cpu_percent"`    // 0-100
	MemoryPercent float64   `json:"memory_percent"` // 0-100
	MemoryBytes   uint64    `json:"memory_bytes"`   // RSS
	Goroutines    int       `json:"goroutines"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Collector 定期采集进程指标, 同时实现 prometheus.Collector
type Collector struct {
	proc     *process.Process
	interval time.Duration

	mu    sync.RWMutex
	stats Stats

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once

	cpuDesc  *prometheus.Desc
	memDesc  *prometheus.Desc
	rssDesc  *prometheus.Desc
	goroDesc *prometheus.Desc
}

// New 创建采集器, interval <= 0 时为 5s
func New(namespace string, interval time.Duration) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "system", n)
	}
	return &Collector{
		proc:     proc,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		cpuDesc:  prometheus.NewDesc(name("cpu_percent"), "Process CPU usage percent.", nil, nil),
		memDesc:  prometheus.NewDesc(name("memory_percent"), "Process RSS as percent of total memory.", nil, nil),
		rssDesc:  prometheus.NewDesc(name("memory_rss_bytes"), "Process resident memory in bytes.", nil, nil),
		goroDesc: prometheus.NewDesc(name("goroutines"), "Number of goroutines.", nil, nil),
	}, nil
}

// Start 立即采集一次并启动后台定时采集
func (c *Collector) Start() error {
	c.collect()
	go func() {
		defer close(c.doneCh)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				return
			}
		}
	}()
	return nil
}

// Stop 停止后台采集
func (c *Collector) Stop(ctx context.Context) error {
	c.once.Do(func() { close(c.stopCh) })
	select {
	case <-c.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collector) collect() {
	stats := Stats{
		Goroutines: runtime.NumGoroutine(),
		UpdatedAt:  time.Now(),
	}
	if cpu, err := c.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if info, err := c.proc.MemoryInfo(); err == nil {
		stats.MemoryBytes = info.RSS
		if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(info.RSS) / float64(vm.Total) * 100
		}
	}

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// GetStats 获取最近一次采集结果
func (c *Collector) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuDesc
	ch <- c.memDesc
	ch <- c.rssDesc
	ch <- c.goroDesc
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.GetStats()
	ch <- prometheus.MustNewConstMetric(c.cpuDesc, prometheus.GaugeValue, s.CPUPercent)
	ch <- prometheus.MustNewConstMetric(c.memDesc, prometheus.GaugeValue, s.MemoryPercent)
	ch <- prometheus.MustNewConstMetric(c.rssDesc, prometheus.GaugeValue, float64(s.MemoryBytes))
	ch <- prometheus.MustNewConstMetric(c.goroDesc, prometheus.GaugeValue, float64(s.Goroutines))
}
