// Package bank は外部銀行データプロバイダーとの連携機能を提供する。
// 口座・残高の取得APIの呼び出しと、プロバイダー障害の
// 自前エラー分類への正規化を含む。
package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// balancePath は口座・残高一括取得APIのパス。
const balancePath = "/accounts/balance/get"

// providerAuthExpiredCode はプロバイダー側で再認証が必要なことを示すエラーコード。
const providerAuthExpiredCode = "ITEM_LOGIN_REQUIRED"

// ClientConfig はプロバイダークライアントの設定。
type ClientConfig struct {
	BaseURL  string // プロバイダーAPIのベースURL
	ClientID string // アプリケーション識別子
	Secret   string // アプリケーションシークレット
}

// MetricsRecorder はプロバイダー呼び出しのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordProviderCall(outcome string)
	RecordProviderLatency(duration time.Duration)
}

// Client は外部銀行データプロバイダーのAPIクライアント。
// プロバイダーの生のエラー形状は呼び出し元に漏らさず、
// UPSTREAM_AUTH_EXPIREDとUPSTREAM_UNAVAILABLEの2種類に正規化する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    MetricsRecorder
	config     ClientConfig
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにはタイムアウトを設定済みのものを渡すこと。
// loggerがnilの場合は何も出力しないロガーを使用する。
// metricsはnilを許容する（記録なし）。
func NewClient(httpClient *http.Client, logger *slog.Logger, metrics MetricsRecorder, config ClientConfig) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
		config:     config,
	}
}

// balanceRequest は口座・残高取得APIのリクエストボディ。
type balanceRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

// balanceResponse は口座・残高取得APIのレスポンスボディ。
type balanceResponse struct {
	Accounts []providerAccount `json:"accounts"`
}

// providerAccount はプロバイダーが返す口座の形式。
type providerAccount struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Subtype   string `json:"subtype"`
	Balances  struct {
		Current float64 `json:"current"`
	} `json:"balances"`
}

// providerError はプロバイダーが返すエラーレスポンスの形式。
type providerError struct {
	ErrorType string `json:"error_type"`
	ErrorCode string `json:"error_code"`
}

// GetAccounts はアクセストークンに紐づく口座一覧を残高付きで取得する。
//
// 失敗の分類:
//   - HTTP 401/403、またはエラーコードITEM_LOGIN_REQUIRED
//     → UPSTREAM_AUTH_EXPIRED（再連携が必要。リトライしない）
//   - それ以外の非200、ネットワーク障害、タイムアウト、不正なペイロード
//     → UPSTREAM_UNAVAILABLE（フェイルクローズ。部分データは返さない）
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]model.Account, error) {
	start := time.Now()
	accounts, err := c.getAccounts(ctx, accessToken)
	c.recordCall(err, time.Since(start))
	return accounts, err
}

func (c *Client) getAccounts(ctx context.Context, accessToken string) ([]model.Account, error) {
	body, err := json.Marshal(balanceRequest{
		ClientID:    c.config.ClientID,
		Secret:      c.config.Secret,
		AccessToken: accessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+balancePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// タイムアウトを含むネットワーク障害は一時障害として扱う
		c.logger.Error("provider request failed",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamUnavailableError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyErrorResponse(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read provider response",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamUnavailableError()
	}

	var result balanceResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.logger.Error("failed to parse provider response",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamUnavailableError()
	}

	accounts := make([]model.Account, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		accounts = append(accounts, model.Account{
			ID:      a.AccountID,
			Name:    a.Name,
			Type:    a.Subtype,
			Balance: a.Balances.Current,
		})
	}

	return accounts, nil
}

// classifyErrorResponse は非200レスポンスをエラー分類にマッピングする。
func (c *Client) classifyErrorResponse(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)

	var perr providerError
	// エラーボディのパース失敗は無視し、ステータスコードのみで判定する
	_ = json.Unmarshal(respBody, &perr)

	if resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden ||
		perr.ErrorCode == providerAuthExpiredCode {
		c.logger.Warn("provider credential expired",
			slog.Int("http_status", resp.StatusCode),
			slog.String("error_code", perr.ErrorCode),
		)
		return model.NewUpstreamAuthExpiredError()
	}

	c.logger.Error("provider returned error status",
		slog.Int("http_status", resp.StatusCode),
		slog.String("error_code", perr.ErrorCode),
	)
	return model.NewUpstreamUnavailableError()
}

// recordCall はプロバイダー呼び出しの結果と所要時間を記録する。
func (c *Client) recordCall(err error, duration time.Duration) {
	if c.metrics == nil {
		return
	}

	outcome := "success"
	if apiErr, ok := err.(*model.APIError); ok {
		switch apiErr.Code {
		case model.ErrCodeUpstreamAuthExpired:
			outcome = "auth_expired"
		default:
			outcome = "unavailable"
		}
	} else if err != nil {
		outcome = "error"
	}

	c.metrics.RecordProviderCall(outcome)
	c.metrics.RecordProviderLatency(duration)
}
