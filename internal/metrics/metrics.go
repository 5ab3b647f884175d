// Package metrics 提供Prometheus监控指标
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry 指标注册表
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

// Counter 计数器
type Counter struct {
	name, help string
	labels     []string
	mu         sync.RWMutex
	values     map[string]float64
}

// Gauge 仪表盘
type Gauge struct {
	name, help string
	labels     []string
	mu         sync.RWMutex
	values     map[string]float64
}

// Histogram 直方图
type Histogram struct {
	name, help string
	labels     []string
	buckets    []float64
	mu         sync.RWMutex
	counts     map[string][]int
	sums       map[string]float64
}

var (
	registry *Registry
	once     sync.Once
)

// Get 获取全局注册表
func Get() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters:   make(map[string]*Counter),
			gauges:     make(map[string]*Gauge),
			histograms: make(map[string]*Histogram),
		}
		registry.NewCounter("zhiban_http_requests_total", "HTTP请求总数", "method", "path", "status")
		registry.NewHistogram("zhiban_http_request_duration_seconds", "HTTP请求延迟",
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			"method", "path")
		registry.NewCounter("zhiban_staffing_evaluations_total", "人力充足性评估次数", "ward_id", "result")
		registry.NewCounter("zhiban_readiness_transitions_total", "就绪状态机迁移次数", "from", "to")
		registry.NewCounter("zhiban_provisioning_failures_total", "临时护士增援失败次数", "ward_id")
		registry.NewCounter("zhiban_holiday_fetch_total", "节假日数据拉取次数", "source")
		registry.NewGauge("zhiban_db_connections", "数据库连接数", "state")
		registry.NewGauge("zhiban_coverage_rate", "月度排班覆盖率", "ward_id")
	})
	return registry
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &Counter{name: name, help: help, labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &Gauge{name: name, help: help, labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &Histogram{
		name: name, help: help, labels: labels, buckets: buckets,
		counts: make(map[string][]int), sums: make(map[string]float64),
	}
	r.histograms[name] = h
	return h
}

// Counter 按名称获取计数器
func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Gauge 按名称获取仪表盘
func (r *Registry) Gauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// Histogram 按名称获取直方图
func (r *Registry) Histogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	c.values[labelKey(labelValues)] += value
	c.mu.Unlock()
}

// Set 设置仪表盘值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	g.values[labelKey(labelValues)] = value
	g.mu.Unlock()
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, ok := h.counts[key]; !ok {
		h.counts[key] = make([]int, len(h.buckets)+1)
	}
	for i, bucket := range h.buckets {
		if value <= bucket {
			h.counts[key][i]++
		}
	}
	h.counts[key][len(h.buckets)]++ // +Inf
	h.sums[key] += value
}

func labelKey(values []string) string {
	return strings.Join(values, ",")
}

func formatLabels(names []string, key string) string {
	values := strings.Split(key, ",")
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", name, val))
	}
	return strings.Join(parts, ",")
}

// Handler 返回Prometheus文本格式的指标HTTP处理器
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		r := Get()
		r.mu.RLock()
		defer r.mu.RUnlock()

		for _, name := range sortedKeys(r.counters) {
			c := r.counters[name]
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", c.name, c.help, c.name)
			c.mu.RLock()
			for key, value := range c.values {
				writeSample(w, c.name, c.labels, key, value)
			}
			c.mu.RUnlock()
		}

		for _, name := range sortedKeys(r.gauges) {
			g := r.gauges[name]
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n", g.name, g.help, g.name)
			g.mu.RLock()
			for key, value := range g.values {
				writeSample(w, g.name, g.labels, key, value)
			}
			g.mu.RUnlock()
		}

		for _, name := range sortedKeys(r.histograms) {
			h := r.histograms[name]
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
			h.mu.RLock()
			for key, counts := range h.counts {
				labels := formatLabels(h.labels, key)
				cumulative := 0
				for i, bucket := range h.buckets {
					cumulative += counts[i]
					fmt.Fprintf(w, "%s_bucket{%s,le=\"%g\"} %d\n", h.name, labels, bucket, cumulative)
				}
				cumulative += counts[len(h.buckets)]
				fmt.Fprintf(w, "%s_bucket{%s,le=\"+Inf\"} %d\n", h.name, labels, cumulative)
				fmt.Fprintf(w, "%s_sum{%s} %f\n", h.name, labels, h.sums[key])
				fmt.Fprintf(w, "%s_count{%s} %d\n", h.name, labels, cumulative)
			}
			h.mu.RUnlock()
		}
	})
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeSample(w http.ResponseWriter, name string, labels []string, key string, value float64) {
	if key == "" {
		fmt.Fprintf(w, "%s %f\n", name, value)
		return
	}
	fmt.Fprintf(w, "%s{%s} %f\n", name, formatLabels(labels, key), value)
}

// RecordRequest 记录请求指标
func RecordRequest(method, path string, status int, duration time.Duration) {
	r := Get()
	if c := r.Counter("zhiban_http_requests_total"); c != nil {
		c.Inc(method, path, fmt.Sprintf("%d", status))
	}
	if h := r.Histogram("zhiban_http_request_duration_seconds"); h != nil {
		h.Observe(duration.Seconds(), method, path)
	}
}

// RecordEvaluation 记录人力充足性评估
func RecordEvaluation(wardID string, sufficient bool) {
	result := "sufficient"
	if !sufficient {
		result = "shortage"
	}
	if c := Get().Counter("zhiban_staffing_evaluations_total"); c != nil {
		c.Inc(wardID, result)
	}
}

// RecordTransition 记录就绪状态机迁移
func RecordTransition(from, to string) {
	if c := Get().Counter("zhiban_readiness_transitions_total"); c != nil {
		c.Inc(from, to)
	}
}

// RecordProvisioningFailure 记录增援失败
func RecordProvisioningFailure(wardID string) {
	if c := Get().Counter("zhiban_provisioning_failures_total"); c != nil {
		c.Inc(wardID)
	}
}

// RecordHolidayFetch 记录节假日数据拉取来源（cache/upstream）
func RecordHolidayFetch(source string) {
	if c := Get().Counter("zhiban_holiday_fetch_total"); c != nil {
		c.Inc(source)
	}
}

// SetCoverageRate 设置月度覆盖率
func SetCoverageRate(wardID string, rate float64) {
	if g := Get().Gauge("zhiban_coverage_rate"); g != nil {
		g.Set(rate, wardID)
	}
}
