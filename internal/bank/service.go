package bank

import (
	"context"
	"fmt"

	"github.com/hitoshi/kakeibo/internal/model"
)

// EnrollmentFinder は銀行連携の検索インターフェース。
// store.EnrollmentStoreの部分集合として定義する。
type EnrollmentFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Enrollment, error)
}

// AccountFetcher は口座一覧取得のインターフェース。
type AccountFetcher interface {
	GetAccounts(ctx context.Context, accessToken string) ([]model.Account, error)
}

// Service は銀行連携状態と口座データの集約ロジックを提供する。
type Service struct {
	enrollments EnrollmentFinder
	client      AccountFetcher
}

// NewService はServiceを生成する。
func NewService(enrollments EnrollmentFinder, client AccountFetcher) *Service {
	return &Service{
		enrollments: enrollments,
		client:      client,
	}
}

// FetchAccounts は指定ユーザーの銀行連携状態と口座一覧を返す。
//
// 連携が存在しない場合はエラーではなく、明確な「未連携」状態
// （linked=false、口座は空、残高はnull）を返す。
// 連携済みの場合は保存されたアクセストークンでプロバイダーを呼び出し、
// 正規化した口座一覧と残高合計を返す。プロバイダー障害時は
// 部分的なデータを決して返さない。
func (s *Service) FetchAccounts(ctx context.Context, userID string) (*model.BankSummary, error) {
	enrollment, err := s.enrollments.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}
	if enrollment == nil {
		return &model.BankSummary{
			Linked:   false,
			Accounts: []model.Account{},
		}, nil
	}

	accounts, err := s.client.GetAccounts(ctx, enrollment.AccessToken)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, a := range accounts {
		total += a.Balance
	}

	institution := enrollment.InstitutionName
	return &model.BankSummary{
		Linked:          true,
		InstitutionName: &institution,
		Accounts:        accounts,
		TotalBalance:    &total,
	}, nil
}
