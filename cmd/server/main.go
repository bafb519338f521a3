// CallPlan 话务排班后台服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/callplan/callplan/internal/config"
	"github.com/callplan/callplan/internal/database"
	"github.com/callplan/callplan/internal/handler"
	"github.com/callplan/callplan/internal/jobs"
	"github.com/callplan/callplan/internal/metrics"
	"github.com/callplan/callplan/internal/middleware"
	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/internal/security"
	"github.com/callplan/callplan/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 本地开发时从 .env 读取环境变量，文件不存在则忽略
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志：开发环境用控制台格式，其余环境输出JSON
	logFormat := "json"
	if cfg.IsDevelopment() {
		logFormat = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat,
	})

	// 打印版本信息
	fmt.Printf("CallPlan 话务排班服务 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	if cfg.Auth.JWTSecret == "" || cfg.Auth.AdminPassword == "" {
		logger.Fatal().Msg("必须设置 AUTH_JWT_SECRET 与 AUTH_ADMIN_PASSWORD")
	}
	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		logger.Warn().Msg("生产环境未启用数据库SSL")
	}

	// 连接数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("数据库连接失败")
	}
	defer db.Close()

	// 数据访问层
	zoneRepo := repository.NewZoneRepository(db)
	provinceRepo := repository.NewProvinceRepository(db)
	volumeRepo := repository.NewCallVolumeRepository(db)
	paramsRepo := repository.NewParametersRepository(db, cfg.Planner.Parameters())
	distRepo := repository.NewDistributionRepository(db)

	// 认证组件
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	credentials := security.NewCredentialStore(cfg.Auth.AdminUser, cfg.Auth.AdminPassword)

	// 处理器
	authHandler := handler.NewAuthHandler(credentials, tokens)
	zoneHandler := handler.NewZoneHandler(zoneRepo)
	provinceHandler := handler.NewProvinceHandler(provinceRepo, zoneRepo)
	volumeHandler := handler.NewCallVolumeHandler(volumeRepo, zoneRepo)
	paramsHandler := handler.NewParametersHandler(paramsRepo)
	planHandler := handler.NewPlanHandler(provinceRepo, volumeRepo, paramsRepo, distRepo)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Health(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":"%s","service":"callplan"}`, status)
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// 登录
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)

	// 区域管理
	mux.HandleFunc("/api/v1/zones", zoneHandler.Collection)
	mux.HandleFunc("/api/v1/zones/", zoneHandler.Item)

	// 省份管理
	mux.HandleFunc("/api/v1/provinces", provinceHandler.Collection)
	mux.HandleFunc("/api/v1/provinces/", provinceHandler.Item)

	// 话务量管理
	mux.HandleFunc("/api/v1/callvolumes", volumeHandler.Serve)

	// 全局参数
	mux.HandleFunc("/api/v1/parameters", paramsHandler.Serve)

	// 排班计算
	mux.HandleFunc("/api/v1/plan/calculate", planHandler.Calculate)
	mux.HandleFunc("/api/v1/plan/adjust", planHandler.Adjust)
	mux.HandleFunc("/api/v1/plan/save", planHandler.Save)
	mux.HandleFunc("/api/v1/plan/saved", planHandler.Saved)
	mux.HandleFunc("/api/v1/plan/export", planHandler.Export)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// JWT 认证：除登录与系统端点外的所有 /api/v1 路由
	auth := middleware.AuthMiddleware(&middleware.AuthConfig{
		TokenManager: tokens,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/health",
			"/version",
			cfg.Metrics.Path,
		},
	})

	// 中间件执行顺序：requestID -> rateLimit -> cors -> logging -> auth -> handler
	limiter := security.NewRateLimiter(cfg.API.RateLimit, time.Minute)
	root := requestIDMiddleware(rateLimitMiddleware(limiter, corsMiddleware(cfg.API.CORS, loggingMiddleware(auth(mux)))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  cfg.API.Timeout,
		WriteTimeout: 2 * cfg.API.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// 定时任务
	scheduler := jobs.NewScheduler(cfg.Jobs, zoneRepo, provinceRepo, volumeRepo, paramsRepo, distRepo)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("定时任务启动失败")
	}

	// 启动服务器（非阻塞）
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

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
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

// rateLimitMiddleware 按来源IP限流的中间件
func rateLimitMiddleware(limiter *security.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(key); err == nil {
			key = host
		}
		if !limiter.Allow(key) {
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

// corsMiddleware CORS中间件。
// 只为配置允许的来源设置跨域响应头，配置关闭时直接透传。
func corsMiddleware(cfg config.CORSConfig, next http.Handler) http.Handler {
	if !cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := allowedOrigin(cfg.Origins, r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			if origin != "*" {
				w.Header().Set("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin 返回应写入响应头的来源值，不允许时返回空串
func allowedOrigin(allowed []string, origin string) string {
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if origin != "" && a == origin {
			return origin
		}
	}
	return ""
}
