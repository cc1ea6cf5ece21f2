package model

// Account は外部プロバイダーから取得した口座を正規化した表現。
type Account struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

// BankSummary は銀行連携状態と口座一覧の集約結果。
// 未連携の場合はLinked=false、Accountsは空、TotalBalanceはnullとなる。
// 通貨は単一通貨を前提とし、通貨換算は行わない。
type BankSummary struct {
	Linked          bool      `json:"linked"`
	InstitutionName *string   `json:"institution_name"`
	Accounts        []Account `json:"accounts"`
	TotalBalance    *float64  `json:"total_balance"`
}
