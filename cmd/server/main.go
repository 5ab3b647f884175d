// ZhiBan 病区排班服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/database"
	"github.com/zhiban/zhiban/internal/handler"
	"github.com/zhiban/zhiban/internal/holiday"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/internal/middleware"
	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/internal/security"
	"github.com/zhiban/zhiban/internal/tenant"
	"github.com/zhiban/zhiban/pkg/calendar"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/readiness"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("ZhiBan 病区排班服务 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// Redis（节假日缓存），连接失败时降级为本地内存缓存
	var rdb *redis.Client
	{
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Redis不可用，节假日缓存降级为本地内存")
			client.Close()
		} else {
			rdb = client
		}
		cancel()
	}

	holidayProvider := holiday.NewProvider(cfg.Holiday, rdb)
	calc := calendar.NewCalculator(holidayProvider)

	// 预热当月与下月的节假日数据
	now := time.Now()
	holidayProvider.Warm(context.Background(), now.Year(), int(now.Month()))
	next := now.AddDate(0, 1, 0)
	holidayProvider.Warm(context.Background(), next.Year(), int(next.Month()))

	h, err := handler.New(calc)
	if err != nil {
		logger.Error().Err(err).Msg("创建处理器失败")
		os.Exit(1)
	}

	// 数据库（可选）：连接成功时增援的临时护士落库
	if db, err := database.New(&cfg.Database); err != nil {
		logger.Warn().Err(err).Msg("数据库不可用，临时护士增援不持久化")
	} else {
		defer db.Close()
		nurseRepo := repository.NewNurseRepository(db)
		h.UseProvisioner(func(wardID uuid.UUID) readiness.ProvisioningSink {
			return repository.NewWardProvisioner(nurseRepo, wardID)
		})
		gauge := metrics.Get().Gauge("zhiban_db_connections")
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				stats := db.Stats()
				gauge.Set(float64(stats.InUse), "in_use")
				gauge.Set(float64(stats.Idle), "idle")
			}
		}()
	}

	mux := http.NewServeMux()

	// 系统端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"zhiban"}`))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "ZhiBan 病区排班服务 API v1",
			"endpoints": {
				"staffing": {
					"evaluate": "POST /api/v1/staffing/evaluate"
				},
				"readiness": {
					"decide": "POST /api/v1/readiness/decide"
				},
				"roster": {
					"apply": "POST /api/v1/roster/apply"
				},
				"rules": {
					"validate": "POST /api/v1/rules/validate",
					"library": "GET /api/v1/rules/library"
				},
				"calendar": {
					"off_days": "GET /api/v1/calendar/off-days?year=&month="
				},
				"duty": {
					"check": "POST /api/v1/duty/check"
				},
				"stats": {
					"coverage": "POST /api/v1/stats/coverage"
				}
			}
		}`))
	})

	h.Register(mux)

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	var root http.Handler = mux

	// 生产环境启用API密钥认证
	if cfg.IsProduction() {
		keyManager := security.NewAPIKeyManager()
		tenantManager := tenant.NewManager()
		if err := tenantManager.Register(tenant.CreateDefaultHospital()); err != nil {
			logger.Error().Err(err).Msg("注册默认医院失败")
		}
		root = middleware.Auth(&middleware.AuthConfig{
			APIKeyManager:   keyManager,
			TenantManager:   tenantManager,
			RateLimiter:     security.NewRateLimiter(cfg.API.RateLimit, time.Minute),
			SkipPaths:       []string{"/health", "/version", cfg.Metrics.Path},
			EnableRateLimit: true,
		})(root)
	}

	// 中间件执行顺序：requestID -> recovery -> rateLimit -> cors -> logging -> handler
	root = middleware.RequestID(
		middleware.Recovery(
			rateLimitMiddleware(
				corsMiddleware(
					loggingMiddleware(
						middleware.SecurityHeaders(root))))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	if rdb != nil {
		rdb.Close()
	}
	logger.Info().Msg("服务器已关闭")
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		logger.Info().
			Str("request_id", w.Header().Get("X-Request-ID")).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		metrics.RecordRequest(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100)

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
