package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewCounter 创建并注册 CounterVec, 同名指标只能注册一次
func (c *Client) NewCounter(name, help string, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// NewGauge 创建并注册 GaugeVec
func (c *Client) NewGauge(name, help string, labels []string) (*prometheus.GaugeVec, error) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// NewHistogram 创建并注册 HistogramVec, buckets 为 nil 时使用默认桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*prometheus.HistogramVec, error) {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if err := c.register(name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// MustNewCounter 创建 CounterVec, 失败则 panic
func (c *Client) MustNewCounter(name, help string, labels []string) *prometheus.CounterVec {
	vec, err := c.NewCounter(name, help, labels)
	if err != nil {
		panic(err)
	}
	return vec
}

// MustNewGauge 创建 GaugeVec, 失败则 panic
func (c *Client) MustNewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	vec, err := c.NewGauge(name, help, labels)
	if err != nil {
		panic(err)
	}
	return vec
}

// MustNewHistogram 创建 HistogramVec, 失败则 panic
func (c *Client) MustNewHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	vec, err := c.NewHistogram(name, help, labels, buckets)
	if err != nil {
		panic(err)
	}
	return vec
}

func (c *Client) register(name string, collector prometheus.Collector) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.metrics[name]; ok {
		return ErrMetricExists
	}
	if err := c.registry.Register(collector); err != nil {
		return err
	}
	c.metrics[name] = collector
	return nil
}
