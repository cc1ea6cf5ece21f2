package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kakeibo/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sql.DBのPingContextの部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Resolver       middleware.IdentityResolver
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	UserFinder  UserFinderInterface
	AuthConfig  AuthHandlerConfig

	// 銀行連携
	BankService BankServiceInterface

	// ヘルスチェック
	HealthChecker HealthChecker

	// メトリクス公開（nilの場合はマウントしない）
	MetricsHandler http.Handler

	// HTTPステータスのメトリクス記録（nil許容）
	HTTPMetrics middleware.HTTPStatusRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → (認証ルート | AuthMiddleware → RateLimit)
//
// CORSは最上位に適用し、プリフライトの短絡とエラーパスを含む
// 全レスポンスの装飾を1箇所で行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default(), deps.HTTPMetrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))

	authHandler := NewAuthHandler(deps.AuthService, deps.UserFinder, deps.AuthConfig)
	bankHandler := NewBankHandler(deps.BankService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 登録・ログインにはIPベースのレート制限を適用（ブルートフォース対策）
	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/register", authHandler.Register)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Resolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		r.Route("/api/bank", func(r chi.Router) {
			r.Get("/accounts", bankHandler.GetAccounts)
		})
	})

	return r
}
