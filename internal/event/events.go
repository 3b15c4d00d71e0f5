package event

// 事件主题
const (
	TopicDeposit    = "vault_events_deposit"
	TopicWithdrawal = "vault_events_withdrawal"
)

// DepositReconciledEvent 对账折入新资金事件
// Topic: vault_events_deposit
type DepositReconciledEvent struct {
	Principal string `json:"principal"`
	Observed  string `json:"observed"`  // 本次观察到的账本余额 (decimal string)
	NewFunds  string `json:"new_funds"` // 本次折入缓存的金额
}

// WithdrawalSettledEvent 提现成功事件
// Topic: vault_events_withdrawal
type WithdrawalSettledEvent struct {
	WithdrawalID string `json:"withdrawal_id"` // uuid
	Principal    string `json:"principal"`
	ToAddress    string `json:"to_address"`
	Amount       string `json:"amount"` // Decimal string
	Fee          string `json:"fee"`
	LedgerTxID   string `json:"ledger_tx_id"`
}

// WithdrawalCompensatedEvent 提现失败补偿事件
// Topic: vault_events_withdrawal
type WithdrawalCompensatedEvent struct {
	WithdrawalID string `json:"withdrawal_id"`
	Principal    string `json:"principal"`
	Amount       string `json:"amount"`
	FailureKind  string `json:"failure_kind"` // transport / ledger
	Reason       string `json:"reason"`
}
