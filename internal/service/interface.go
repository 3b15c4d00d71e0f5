package service

import (
	"context"

	"vault-core/internal/model"
)

// Recorder 落地审计流水 + Outbox 事件 (同一事务)。
// 资金状态的权威在注册表, 审计失败不回滚业务结果, 只记日志 —— 因此单独抽象,
// 单元测试用 NopRecorder 替换。
type Recorder interface {
	// DepositReconciled 记录一次对账 (含折入金额为 0 的情况不调用)
	DepositReconciled(ctx context.Context, dep model.Deposit) error

	// WithdrawalFinished 记录一次到达终态的提现 (SETTLED / COMPENSATED)
	WithdrawalFinished(ctx context.Context, w model.Withdrawal) error
}
