package middleware

import (
	"net/http"
	"strings"
	"sync"
)

// nativeOrigins はモバイルアプリシェルが送信する疑似オリジン。
// 設定に関係なく常に許可する。
var nativeOrigins = []string{
	"capacitor://localhost",
	"ionic://localhost",
}

const (
	corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowedHeaders = "Content-Type, Authorization"
)

// originPolicy はオリジン許可リストを保持する。
// 許可リストは設定オリジンとネイティブ疑似オリジンの和集合で、
// 初回アクセス時に1回だけ構築する（再計算は冪等で副作用なし）。
type originPolicy struct {
	configured []string

	once    sync.Once
	allowed map[string]struct{}
}

// isAllowed はオリジンが許可リストに含まれるかを判定する。
// ワイルドカードやパターンマッチは行わない。
func (p *originPolicy) isAllowed(origin string) bool {
	p.once.Do(func() {
		p.allowed = make(map[string]struct{}, len(p.configured)+len(nativeOrigins))
		for _, o := range p.configured {
			o = strings.TrimSpace(o)
			if o != "" {
				p.allowed[o] = struct{}{}
			}
		}
		for _, o := range nativeOrigins {
			p.allowed[o] = struct{}{}
		}
	})

	_, ok := p.allowed[origin]
	return ok
}

// NewCORSMiddleware は許可リスト方式のCORSミドルウェアを返す。
//
// すべてのレスポンス（成功・エラーとも）を同一の装飾パスで処理する:
//   - Allow-Methods / Allow-Headers は無条件に付与する。
//   - Allow-Origin のオリジンエコーと Allow-Credentials は
//     許可リストに含まれるオリジンに対してのみ、必ずペアで付与する。
//     ワイルドカード + credentials の組み合わせは発生させない。
//
// OPTIONSプリフライトリクエストには204で短絡応答する。
func NewCORSMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	policy := &originPolicy{configured: allowedOrigins}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Max-Age", "86400")

			if origin != "" && policy.isAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			// OPTIONSプリフライトリクエストには204で応答
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
