package otel

import (
	"context"
	"sync"
)

// Metrics 按名称提供指标仪器。同名多次获取返回同一个仪器。
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
	Gauge(name string) Gauge
}

// Counter 单调递增计数。
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attr)
}

// Histogram 记录分布，例如每次组装的 Token 数和耗时。
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attr)
}

// Gauge 记录最近一次观测值。
type Gauge interface {
	Set(ctx context.Context, value float64, attrs ...Attr)
}

// Attr 是指标维度。Value 必须可比较。
type Attr struct {
	Key   string
	Value any
}

// NewAttr 创建指标维度。
func NewAttr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// InMemoryMetrics 把指标保存在进程内，供测试断言和 CLI 汇总使用。
type InMemoryMetrics struct {
	mu         sync.Mutex
	counters   map[string]*memCounter
	histograms map[string]*memHistogram
	gauges     map[string]*memGauge
}

// NewInMemoryMetrics 创建空的 InMemoryMetrics。
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:   map[string]*memCounter{},
		histograms: map[string]*memHistogram{},
		gauges:     map[string]*memGauge{},
	}
}

// instrument 在 m.mu 保护下查找或创建 name 对应的仪器。
func instrument[T any](m *InMemoryMetrics, set map[string]*T, name string) *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := set[name]
	if !ok {
		inst = new(T)
		set[name] = inst
	}
	return inst
}

func (m *InMemoryMetrics) Counter(name string) Counter {
	return instrument(m, m.counters, name)
}

func (m *InMemoryMetrics) Histogram(name string) Histogram {
	return instrument(m, m.histograms, name)
}

func (m *InMemoryMetrics) Gauge(name string) Gauge {
	return instrument(m, m.gauges, name)
}

// GetCounterValue 返回计数器总值，未使用过的计数器为 0。
func (m *InMemoryMetrics) GetCounterValue(name string) int64 {
	total, _ := instrument(m, m.counters, name).snapshot(nil)
	return total
}

// GetCounterValueWith 返回带有 attr 维度的累计值。
func (m *InMemoryMetrics) GetCounterValueWith(name string, attr Attr) int64 {
	_, byAttr := instrument(m, m.counters, name).snapshot(&attr)
	return byAttr
}

// GetHistogramValues 按记录顺序返回直方图的所有观测值。
func (m *InMemoryMetrics) GetHistogramValues(name string) []float64 {
	h := instrument(m, m.histograms, name)
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.values) == 0 {
		return nil
	}
	return append([]float64(nil), h.values...)
}

// GetGaugeValue 返回最近一次设置的值。
func (m *InMemoryMetrics) GetGaugeValue(name string) float64 {
	g := instrument(m, m.gauges, name)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

type memCounter struct {
	mu     sync.Mutex
	total  int64
	byAttr map[Attr]int64
}

func (c *memCounter) Add(_ context.Context, value int64, attrs ...Attr) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total += value
	for _, a := range attrs {
		if c.byAttr == nil {
			c.byAttr = map[Attr]int64{}
		}
		c.byAttr[a] += value
	}
}

func (c *memCounter) snapshot(attr *Attr) (total, byAttr int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attr != nil {
		byAttr = c.byAttr[*attr]
	}
	return c.total, byAttr
}

type memHistogram struct {
	mu     sync.Mutex
	values []float64
}

func (h *memHistogram) Record(_ context.Context, value float64, _ ...Attr) {
	h.mu.Lock()
	h.values = append(h.values, value)
	h.mu.Unlock()
}

type memGauge struct {
	mu    sync.Mutex
	value float64
}

func (g *memGauge) Set(_ context.Context, value float64, _ ...Attr) {
	g.mu.Lock()
	g.value = value
	g.mu.Unlock()
}

// NoopMetrics 丢弃所有观测值。
type NoopMetrics struct{}

// NewNoopMetrics 创建 NoopMetrics。
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (NoopMetrics) Counter(string) Counter     { return noopInstrument{} }
func (NoopMetrics) Histogram(string) Histogram { return noopInstrument{} }
func (NoopMetrics) Gauge(string) Gauge         { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Add(context.Context, int64, ...Attr)      {}
func (noopInstrument) Record(context.Context, float64, ...Attr) {}
func (noopInstrument) Set(context.Context, float64, ...Attr)    {}

var (
	_ Metrics   = (*InMemoryMetrics)(nil)
	_ Metrics   = (*NoopMetrics)(nil)
	_ Counter   = (*memCounter)(nil)
	_ Histogram = (*memHistogram)(nil)
	_ Gauge     = (*memGauge)(nil)
)
