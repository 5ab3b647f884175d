// Package holiday 提供法定节假日数据源
// 从上游节假日服务拉取某月的法定休假日，经 Redis 缓存后供日历计算使用
// 数据源不可用时返回错误，由调用方降级为仅周末口径
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
)

// monthResponse 上游节假日服务的月度响应
type monthResponse struct {
	Year     int   `json:"year"`
	Month    int   `json:"month"`
	Holidays []int `json:"holidays"` // 当月法定休假日（1-based）
}

// Provider 节假日数据源
// 三级查找：本地内存 → Redis → 上游HTTP服务
type Provider struct {
	cfg    config.HolidayConfig
	client *http.Client
	rdb    *redis.Client

	mu    sync.RWMutex
	local map[string][]int
}

// NewProvider 创建节假日数据源
// rdb 可为 nil，此时仅使用本地内存缓存
func NewProvider(cfg config.HolidayConfig, rdb *redis.Client) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		rdb:    rdb,
		local:  make(map[string][]int),
	}
}

func cacheKey(year, month int) string {
	return fmt.Sprintf("zhiban:holiday:%04d-%02d", year, month)
}

// Holidays 返回某月的法定休假日列表
func (p *Provider) Holidays(ctx context.Context, year, month int) ([]int, error) {
	key := cacheKey(year, month)

	p.mu.RLock()
	if days, ok := p.local[key]; ok {
		p.mu.RUnlock()
		metrics.RecordHolidayFetch("local")
		return days, nil
	}
	p.mu.RUnlock()

	if days, ok := p.fromRedis(ctx, key); ok {
		p.store(key, days)
		metrics.RecordHolidayFetch("redis")
		return days, nil
	}

	days, err := p.fetch(ctx, year, month)
	if err != nil {
		return nil, err
	}
	metrics.RecordHolidayFetch("upstream")

	p.store(key, days)
	p.toRedis(ctx, key, days)
	return days, nil
}

// store 写入本地内存缓存
func (p *Provider) store(key string, days []int) {
	p.mu.Lock()
	p.local[key] = days
	p.mu.Unlock()
}

// fromRedis 尝试从 Redis 读取
func (p *Provider) fromRedis(ctx context.Context, key string) ([]int, bool) {
	if p.rdb == nil {
		return nil, false
	}
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("读取节假日缓存失败")
		return nil, false
	}
	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("解析节假日缓存失败")
		return nil, false
	}
	return days, true
}

// toRedis 写入 Redis，失败仅记录日志
func (p *Provider) toRedis(ctx context.Context, key string, days []int) {
	if p.rdb == nil {
		return
	}
	raw, _ := json.Marshal(days)
	if err := p.rdb.Set(ctx, key, raw, p.cfg.CacheTTL).Err(); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("写入节假日缓存失败")
	}
}

// fetch 从上游服务拉取
func (p *Provider) fetch(ctx context.Context, year, month int) ([]int, error) {
	url := fmt.Sprintf("%s/%04d-%02d", p.cfg.BaseURL, year, month)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.HolidayDataUnavailable(year, month, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.HolidayDataUnavailable(year, month, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.HolidayDataUnavailable(year, month, fmt.Errorf("节假日服务返回 %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.HolidayDataUnavailable(year, month, err)
	}

	var mr monthResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, errors.HolidayDataUnavailable(year, month, err)
	}

	if mr.Holidays == nil {
		mr.Holidays = []int{}
	}
	return mr.Holidays, nil
}

// Warm 预热指定月份的缓存
func (p *Provider) Warm(ctx context.Context, year, month int) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout+time.Second)
	defer cancel()
	if _, err := p.Holidays(ctx, year, month); err != nil {
		logger.Warn().Err(err).Int("year", year).Int("month", month).Msg("节假日缓存预热失败")
	}
}
