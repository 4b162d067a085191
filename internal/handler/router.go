package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tocook/internal/metrics"
	"github.com/hitoshi/tocook/internal/middleware"
)

// RouterDeps はルーター構築に必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	HealthChecker     HealthChecker
	TokenDecoder      middleware.TokenDecoder
	AuthService       AuthServiceInterface
	UserService       UserServiceInterface
	TaskService       TaskServiceInterface
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer
	CORSAllowedOrigin string
	CSRF              middleware.CSRFConfig
	Auth              AuthHandlerConfig
}

// NewRouter はchiルーターを構築し、全ルートとミドルウェアを登録する。
// RateLimiter・Metrics・MetricsGathererがnilの場合は該当機能を無効にする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// ミドルウェアチェーン: ログ → リカバリー → メトリクス → セキュリティヘッダー → CORS
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.Method(http.MethodGet, "/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService, deps.Auth)
	taskHandler := NewTaskHandler(deps.TaskService)

	// 認証不要ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/", authHandler.Register)
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/token", authHandler.Token)
		} else {
			r.Post("/token", authHandler.Token)
		}
		r.Post("/logout", authHandler.Logout)
		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))
	})

	// 認証必須ルート: 認証 → レート制限 → CSRF
	r.Route("/todo", func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenDecoder))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		r.Get("/", taskHandler.List)
		r.Post("/todo", taskHandler.Create)
		r.Get("/todo/{id}", taskHandler.Get)
		r.Put("/todo/{id}", taskHandler.Update)
		r.Delete("/todo/{id}", taskHandler.Delete)
	})

	return r
}
