package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/kakeibo/internal/middleware"
	"github.com/hitoshi/kakeibo/internal/model"
)

// BankServiceInterface は銀行ハンドラーが必要とするサービスインターフェース。
type BankServiceInterface interface {
	// FetchAccounts は銀行連携状態と口座一覧を返す。
	// 未連携の場合はlinked=falseの正常応答を返す。
	FetchAccounts(ctx context.Context, userID string) (*model.BankSummary, error)
}

// BankHandler は銀行連携のHTTPハンドラー。
type BankHandler struct {
	service BankServiceInterface
}

// NewBankHandler はBankHandlerを生成する。
func NewBankHandler(service BankServiceInterface) *BankHandler {
	return &BankHandler{
		service: service,
	}
}

// GetAccounts は銀行連携状態と口座一覧を返す。
// GET /api/bank/accounts
func (h *BankHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	summary, err := h.service.FetchAccounts(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
