package bank

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/kakeibo/internal/model"
)

// mockEnrollmentFinder はEnrollmentFinderのモック実装。
type mockEnrollmentFinder struct {
	FindByUserIDFn func(ctx context.Context, userID string) (*model.Enrollment, error)
}

func (m *mockEnrollmentFinder) FindByUserID(ctx context.Context, userID string) (*model.Enrollment, error) {
	return m.FindByUserIDFn(ctx, userID)
}

// mockAccountFetcher はAccountFetcherのモック実装。
type mockAccountFetcher struct {
	GetAccountsFn func(ctx context.Context, accessToken string) ([]model.Account, error)
}

func (m *mockAccountFetcher) GetAccounts(ctx context.Context, accessToken string) ([]model.Account, error) {
	return m.GetAccountsFn(ctx, accessToken)
}

// TestService_FetchAccounts_NotLinked は未連携ユーザーがエラーではなく
// 明確な未連携状態を受け取ることを検証する。
func TestService_FetchAccounts_NotLinked_ReturnsEmptyState(t *testing.T) {
	svc := NewService(
		&mockEnrollmentFinder{
			FindByUserIDFn: func(ctx context.Context, userID string) (*model.Enrollment, error) {
				return nil, nil
			},
		},
		&mockAccountFetcher{
			GetAccountsFn: func(ctx context.Context, accessToken string) ([]model.Account, error) {
				t.Error("provider should not be called for unlinked user")
				return nil, nil
			},
		},
	)

	summary, err := svc.FetchAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchAccounts failed: %v", err)
	}

	if summary.Linked {
		t.Error("Linked = true, want false")
	}
	if summary.Accounts == nil || len(summary.Accounts) != 0 {
		t.Errorf("Accounts = %v, want empty slice", summary.Accounts)
	}
	if summary.TotalBalance != nil {
		t.Errorf("TotalBalance = %v, want nil", *summary.TotalBalance)
	}
	if summary.InstitutionName != nil {
		t.Errorf("InstitutionName = %v, want nil", *summary.InstitutionName)
	}
}

func TestService_FetchAccounts_Linked_SumsBalances(t *testing.T) {
	svc := NewService(
		&mockEnrollmentFinder{
			FindByUserIDFn: func(ctx context.Context, userID string) (*model.Enrollment, error) {
				return &model.Enrollment{
					UserID:          userID,
					AccessToken:     "access-token-xyz",
					InstitutionName: "テスト銀行",
				}, nil
			},
		},
		&mockAccountFetcher{
			GetAccountsFn: func(ctx context.Context, accessToken string) ([]model.Account, error) {
				if accessToken != "access-token-xyz" {
					t.Errorf("accessToken = %q", accessToken)
				}
				return []model.Account{
					{ID: "acc-1", Name: "普通預金", Type: "checking", Balance: 1200.5},
					{ID: "acc-2", Name: "貯蓄預金", Type: "savings", Balance: 3000},
				}, nil
			},
		},
	)

	summary, err := svc.FetchAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchAccounts failed: %v", err)
	}

	if !summary.Linked {
		t.Error("Linked = false, want true")
	}
	if summary.InstitutionName == nil || *summary.InstitutionName != "テスト銀行" {
		t.Errorf("InstitutionName = %v", summary.InstitutionName)
	}
	if len(summary.Accounts) != 2 {
		t.Errorf("len(Accounts) = %d, want 2", len(summary.Accounts))
	}
	if summary.TotalBalance == nil || *summary.TotalBalance != 4200.5 {
		t.Errorf("TotalBalance = %v, want 4200.5", summary.TotalBalance)
	}
}

// TestService_FetchAccounts_ProviderFailure はプロバイダー障害時に
// 部分的なデータを返さず、エラーがそのまま伝播することを検証する。
func TestService_FetchAccounts_ProviderFailure_ReturnsNoPartialData(t *testing.T) {
	svc := NewService(
		&mockEnrollmentFinder{
			FindByUserIDFn: func(ctx context.Context, userID string) (*model.Enrollment, error) {
				return &model.Enrollment{UserID: userID, AccessToken: "tok"}, nil
			},
		},
		&mockAccountFetcher{
			GetAccountsFn: func(ctx context.Context, accessToken string) ([]model.Account, error) {
				return nil, model.NewUpstreamUnavailableError()
			},
		},
	)

	summary, err := svc.FetchAccounts(context.Background(), "user-1")
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamUnavailable {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUpstreamUnavailable)
	}
}

func TestService_FetchAccounts_StoreFailure_ReturnsError(t *testing.T) {
	svc := NewService(
		&mockEnrollmentFinder{
			FindByUserIDFn: func(ctx context.Context, userID string) (*model.Enrollment, error) {
				return nil, errors.New("store unavailable")
			},
		},
		&mockAccountFetcher{
			GetAccountsFn: func(ctx context.Context, accessToken string) ([]model.Account, error) {
				return nil, nil
			},
		},
	)

	_, err := svc.FetchAccounts(context.Background(), "user-1")
	if err == nil {
		t.Error("expected error for store failure")
	}
}
