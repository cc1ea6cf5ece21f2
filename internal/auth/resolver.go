package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/token"
)

const (
	// SessionCookieName はセッションIDを保持するCookieの名前。
	SessionCookieName = "session_id"

	// bearerPrefix はAuthorizationヘッダーのベアラースキームプレフィックス。
	bearerPrefix = "Bearer "
)

// TokenVerifier はベアラートークンの検証インターフェース。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Resolver はインバウンドリクエストから認証主体を解決する。
//
// 解決順序（最初に成功した機構で打ち切り）:
//  1. セッションCookie → ストア照会 → ユーザー解決
//  2. Authorization: Bearer → トークン検証 → ユーザー解決
//
// Cookieを優先するのは意図的なタイブレーク。ブラウザクライアントには
// サーバー側で失効可能なセッションを使わせ、Cookieを保持できない
// クライアントにベアラートークンを許す。両方が有効で異なるユーザーを
// 指す場合もセッション側のユーザーが勝ち、決してマージしない。
type Resolver struct {
	sessions SessionStore
	users    UserStore
	verifier TokenVerifier
}

// NewResolver はResolverを生成する。
func NewResolver(sessions SessionStore, users UserStore, verifier TokenVerifier) *Resolver {
	return &Resolver{
		sessions: sessions,
		users:    users,
		verifier: verifier,
	}
}

// Resolve はリクエストから認証済みユーザーを解決する。
// どの機構でも解決できない場合は(nil, nil)を返す。errorは
// インフラ障害（ストア不達など）のみを表し、不正・期限切れの
// 資格情報は「資格情報なし」として扱う。
func (r *Resolver) Resolve(req *http.Request) (*model.User, error) {
	ctx := req.Context()

	// 1. セッションCookieによる解決
	user, err := r.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// 2. ベアラートークンによる解決
	return r.resolveBearer(ctx, req)
}

// resolveSession はセッションCookieからユーザーを解決する。
// Cookie欠如・セッション不在・期限切れ・参照先ユーザー不在はnilを返す。
func (r *Resolver) resolveSession(ctx context.Context, req *http.Request) (*model.User, error) {
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	session, err := r.sessions.FindByID(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	return r.users.FindByID(ctx, session.UserID)
}

// resolveBearer はAuthorizationヘッダーのベアラートークンからユーザーを解決する。
// ヘッダー欠如・スキーム不一致・検証失敗（不正形式/署名不一致/期限切れ）は
// nilを返す。トークン自体はセッションIDとして扱わない（機構の混同禁止）。
func (r *Resolver) resolveBearer(ctx context.Context, req *http.Request) (*model.User, error) {
	header := req.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, nil
	}

	tokenString := strings.TrimPrefix(header, bearerPrefix)
	if tokenString == "" {
		return nil, nil
	}

	claims, err := r.verifier.Verify(tokenString)
	if err != nil {
		// 検証失敗は「資格情報なし」と等価。システム障害ではない。
		return nil, nil
	}

	return r.users.FindByID(ctx, claims.UserID())
}
