package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"vault-core/internal/model"
	"vault-core/pkg/logger"
)

// 任务类型常量
const (
	TypeWithdrawalReceipt = "vault:withdrawal_receipt"
)

// WithdrawalReceiptPayload 提现回执任务参数 (通知侧投递用)
type WithdrawalReceiptPayload struct {
	WithdrawalID string `json:"withdrawal_id"`
	Principal    string `json:"principal"`
	ToAddress    string `json:"to_address"`
	Amount       string `json:"amount"`
	Fee          string `json:"fee"`
	Status       string `json:"status"`
	LedgerTxID   string `json:"ledger_tx_id,omitempty"`
	FailureKind  string `json:"failure_kind,omitempty"`
}

// ---------------------------------------------------------------------
// 1. Producer (Client) Code
// ---------------------------------------------------------------------

// NewWithdrawalReceiptTask 从提现流水创建回执任务
func NewWithdrawalReceiptTask(w model.Withdrawal) (*asynq.Task, error) {
	payload, err := json.Marshal(WithdrawalReceiptPayload{
		WithdrawalID: w.ID,
		Principal:    w.Principal,
		ToAddress:    w.ToAddress,
		Amount:       w.Amount.String(),
		Fee:          w.Fee.String(),
		Status:       w.Status,
		LedgerTxID:   w.LedgerTxID,
		FailureKind:  w.FailureKind,
	})
	if err != nil {
		return nil, err
	}
	// 回执丢了可以从流水表重建, 不用激进重试
	return asynq.NewTask(TypeWithdrawalReceipt, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute)), nil
}

// ---------------------------------------------------------------------
// 2. Consumer (Server) Code
// ---------------------------------------------------------------------

// HandleWithdrawalReceiptTask 处理提现回执任务。
// 当前实现只落结构化日志, 接通知渠道时在这里扩展。
func HandleWithdrawalReceiptTask(ctx context.Context, t *asynq.Task) error {
	var p WithdrawalReceiptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// JSON 解析失败, 重试也没用 (SkipRetry 进 Archived 队列方便排查)
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("提现回执",
		zap.String("withdrawal_id", p.WithdrawalID),
		zap.String("principal", p.Principal),
		zap.String("status", p.Status),
		zap.String("amount", p.Amount),
		zap.String("ledger_tx_id", p.LedgerTxID),
		zap.String("failure_kind", p.FailureKind),
	)
	return nil
}
