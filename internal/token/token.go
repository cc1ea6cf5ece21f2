// Package token は自己完結型ベアラートークンの署名・検証を提供する。
// Cookieを保持できないクライアント（モバイル・ネイティブ）向けの
// ステートレスな資格情報として使用する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 検証失敗の種別。Identity Resolverが「資格情報なし」と
// 「システム障害」を区別できるよう、失敗理由ごとに定義する。
var (
	// ErrMalformed はトークンの形式が不正であることを示す。
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired はトークンの有効期限が切れていることを示す。
	ErrExpired = errors.New("token: expired")
	// ErrSignatureInvalid は署名が検証できないことを示す。
	ErrSignatureInvalid = errors.New("token: signature invalid")
)

// Claims はベアラートークンに含める認証情報。
// ユーザーIDはRegisteredClaimsのSubjectに格納する。
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserID はトークンが指すユーザーIDを返す。
func (c *Claims) UserID() string {
	return c.Subject
}

// Codec はHS256によるトークンの署名・検証を行う。
// シークレットはプロセス全体の設定として起動時に1回読み込む。
// ローテーションはスコープ外。
type Codec struct {
	secret []byte
}

// NewCodec はCodecを生成する。シークレットが空の場合はエラーを返す。
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Sign はユーザーIDとメールアドレスを含むトークンを署名して返す。
func (c *Codec) Sign(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証しクレームを返す。
// 失敗理由はErrMalformed、ErrExpired、ErrSignatureInvalidのいずれかに
// 正規化する。
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrMalformed
		}
	}

	if !tok.Valid {
		return nil, ErrSignatureInvalid
	}

	return claims, nil
}
