package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vault-core/internal/ledger"
	"vault-core/internal/model"
	"vault-core/internal/registry"
	"vault-core/pkg/address"
	"vault-core/pkg/cache"
	"vault-core/pkg/errno"
	"vault-core/pkg/logger"
	"vault-core/pkg/monitor"
	"vault-core/pkg/principal"
	"vault-core/pkg/safe_random"
)

// 补偿流水的失败类别
const (
	FailureKindLedger    = "ledger"    // 账本明确拒绝, 资金未移动
	FailureKindTransport = "transport" // 传输失败, 结果未知, 按未转保守处理
)

// ReceiptEnqueuer 提现终态后投递异步回执任务 (asynq 实现见 internal/worker)。
type ReceiptEnqueuer interface {
	EnqueueWithdrawalReceipt(ctx context.Context, w model.Withdrawal) error
}

// WithdrawResult 提现成功的返回值。
type WithdrawResult struct {
	WithdrawalID string          // 本次提现的流水号 (uuid)
	LedgerTxID   string          // 账本返回的转账 ID
	Amount       decimal.Decimal // 用户请求的金额 (含手续费)
	Fee          decimal.Decimal
	Balance      decimal.Decimal // 扣减后的缓存余额
}

// WithdrawService 提现协调器。
//
// 状态机: Validating -> Debited -> Transferring -> Settled | Compensated。
// 关键顺序是 "先扣减后挂起": 账本调用前缓存余额已经扣掉全额,
// 并发的第二笔提现在挂起窗口里看到的是扣减后的余额,
// 所以同一笔资金不可能被两次提现同时花掉。
// 账本调用失败则恰好一次地把全额补偿回来 (单请求内同步补偿,
// 不存在重试路径, 天然不会补偿两次)。
type WithdrawService struct {
	registry *registry.Registry
	ledger   ledger.Ledger
	fee      decimal.Decimal
	recorder Recorder
	cache    cache.Cache
	enqueuer ReceiptEnqueuer // 可为 nil
}

func NewWithdrawService(reg *registry.Registry, lg ledger.Ledger, fee decimal.Decimal, rec Recorder, c cache.Cache, enq ReceiptEnqueuer) *WithdrawService {
	return &WithdrawService{
		registry: reg,
		ledger:   lg,
		fee:      fee,
		recorder: rec,
		cache:    c,
		enqueuer: enq,
	}
}

// Withdraw 把 amount (含手续费) 从调用者的缓存余额转到 dest。
// 账本实际收到 amount - fee, fee 由金库主账户承担给账本。
func (s *WithdrawService) Withdraw(ctx context.Context, user principal.ID, dest string, amount decimal.Decimal) (WithdrawResult, error) {
	// —— Validating ——
	if user.IsAnonymous() {
		return WithdrawResult{}, errno.ErrAnonymousCaller
	}
	toAddr, err := address.Parse(dest)
	if err != nil {
		return WithdrawResult{}, errno.ErrMalformedIdentifier.WithMessage("invalid destination address: " + err.Error())
	}
	// 金额必须严格大于手续费, 否则账本收到的净额 <= 0
	if amount.Cmp(s.fee) <= 0 {
		return WithdrawResult{}, errno.ErrBind.WithMessage(
			"amount must exceed the transfer fee of " + s.fee.String())
	}

	rec, ok := s.registry.Get(user)
	if !ok {
		return WithdrawResult{}, errno.ErrNotRegistered
	}

	// —— Debited ——
	// 扣全额。余额不足在这里原子地拒绝, 状态不变。
	debited, err := s.registry.ApplyDelta(user, amount.Neg())
	if err != nil {
		return WithdrawResult{}, err
	}

	withdrawalID := uuid.NewString()
	memo, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		// 拿不到幂等令牌就不碰账本, 直接补偿退出
		s.compensate(ctx, user, amount, withdrawalID, dest, FailureKindTransport, err.Error())
		return WithdrawResult{}, errno.InternalServerError.WithMessage("memo generation failed")
	}

	// —— Transferring ——
	// 挂起点: 此刻缓存余额已扣, 其它请求看到的是扣减后的状态
	txID, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
		From:   rec.DepositAddress,
		To:     toAddr,
		Amount: amount.Sub(s.fee),
		Fee:    s.fee,
		Memo:   memo,
	})
	if err != nil {
		// —— Compensated ——
		kind := FailureKindTransport
		outErr := errno.ErrTransferFailed.WithMessage(err.Error())
		if ledger.IsRejected(err) {
			kind = FailureKindLedger
			outErr = errno.ErrLedgerRejected.WithMessage(err.Error())
		}
		s.compensate(ctx, user, amount, withdrawalID, dest, kind, err.Error())
		return WithdrawResult{}, outErr
	}

	// —— Settled ——
	// 存款地址在账本上刚被转走 amount, 下调对账基准, 防止下次对账把
	// 余额下降误判成 "没有新入金" 之外的情况 (见 registry.NoteDrained)。
	if err := s.registry.NoteDrained(user, amount); err != nil {
		logger.Error("下调对账基准失败", zap.String("principal", user.String()), zap.Error(err))
	}
	invalidateDetail(ctx, s.cache, user)

	row := model.Withdrawal{
		ID:         withdrawalID,
		Principal:  user.String(),
		ToAddress:  dest,
		Amount:     amount,
		Fee:        s.fee,
		Status:     model.WithdrawalStatusSettled,
		LedgerTxID: txID,
	}
	s.record(ctx, row)
	s.enqueueReceipt(ctx, row)

	if monitor.Business != nil {
		monitor.Business.WithdrawalSettledTotal.Inc()
		f, _ := amount.Float64()
		monitor.Business.WithdrawAmountTotal.Add(f)
	}
	logger.Info("提现成功",
		zap.String("withdrawal_id", withdrawalID),
		zap.String("principal", user.String()),
		zap.String("to", dest),
		zap.String("amount", amount.String()),
		zap.String("ledger_tx_id", txID))

	return WithdrawResult{
		WithdrawalID: withdrawalID,
		LedgerTxID:   txID,
		Amount:       amount,
		Fee:          s.fee,
		Balance:      debited.Amount,
	}, nil
}

// compensate 把扣减的全额加回缓存余额并落补偿流水。
// 加法补偿不可能因余额不足失败, ApplyDelta 只会在账户消失时报错。
func (s *WithdrawService) compensate(ctx context.Context, user principal.ID, amount decimal.Decimal, withdrawalID, dest, kind, reason string) {
	if _, err := s.registry.ApplyDelta(user, amount); err != nil {
		logger.Error("补偿入账失败",
			zap.String("withdrawal_id", withdrawalID),
			zap.String("principal", user.String()),
			zap.String("amount", amount.String()),
			zap.Error(err))
	}
	invalidateDetail(ctx, s.cache, user)

	s.record(ctx, model.Withdrawal{
		ID:          withdrawalID,
		Principal:   user.String(),
		ToAddress:   dest,
		Amount:      amount,
		Fee:         s.fee,
		Status:      model.WithdrawalStatusCompensated,
		FailureKind: kind,
	})

	if monitor.Business != nil {
		monitor.Business.WithdrawalCompensatedTotal.WithLabelValues(kind).Inc()
	}
	logger.Warn("提现失败, 已补偿",
		zap.String("withdrawal_id", withdrawalID),
		zap.String("principal", user.String()),
		zap.String("kind", kind),
		zap.String("reason", reason))
}

func (s *WithdrawService) record(ctx context.Context, w model.Withdrawal) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.WithdrawalFinished(ctx, w); err != nil {
		// 审计失败不影响已经生效的余额变更
		logger.Error("提现流水落库失败", zap.String("withdrawal_id", w.ID), zap.Error(err))
	}
}

func (s *WithdrawService) enqueueReceipt(ctx context.Context, w model.Withdrawal) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueWithdrawalReceipt(ctx, w); err != nil {
		logger.Error("回执任务投递失败", zap.String("withdrawal_id", w.ID), zap.Error(err))
	}
}
