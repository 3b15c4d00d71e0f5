package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vault-core/internal/ledger"
	"vault-core/internal/model"
	"vault-core/internal/registry"
	"vault-core/pkg/cache"
	"vault-core/pkg/errno"
	"vault-core/pkg/logger"
	"vault-core/pkg/monitor"
	"vault-core/pkg/principal"
)

// DepositService 对账组件: 把外部账本上存款地址的余额折入缓存余额。
//
// 读余额 -> 挂起等账本 -> 写余额 本身是竞态窗口, 这里不用锁关闭它,
// 而是靠增量折算语义兜底: FoldObserved 只计入超过上次观察值的部分,
// 两个并发对账看到同一个账本快照时只有先到的折入增量 (见 registry)。
type DepositService struct {
	registry *registry.Registry
	ledger   ledger.Ledger
	recorder Recorder
	cache    cache.Cache
}

func NewDepositService(reg *registry.Registry, lg ledger.Ledger, rec Recorder, c cache.Cache) *DepositService {
	return &DepositService{
		registry: reg,
		ledger:   lg,
		recorder: rec,
		cache:    c,
	}
}

// Reconcile 查询账本余额并折入缓存, 返回本次新折入的金额。
func (s *DepositService) Reconcile(ctx context.Context, user principal.ID) (decimal.Decimal, error) {
	if user.IsAnonymous() {
		return decimal.Zero, errno.ErrAnonymousCaller
	}

	rec, ok := s.registry.Get(user)
	if !ok {
		return decimal.Zero, errno.ErrNotRegistered
	}

	// 挂起点: 账本调用期间其它请求 (包括同一用户的) 可以跑完
	observed, err := s.ledger.BalanceOf(ctx, rec.DepositAddress)
	if err != nil {
		logger.Error("查询账本余额失败",
			zap.String("principal", user.String()), zap.Error(err))
		return decimal.Zero, errno.ErrTransferFailed.WithMessage("ledger balance query failed: " + err.Error())
	}

	newFunds, after, err := s.registry.FoldObserved(user, observed)
	if err != nil {
		return decimal.Zero, err
	}

	invalidateDetail(ctx, s.cache, user)

	if monitor.Business != nil {
		monitor.Business.DepositReconciledTotal.Inc()
		if newFunds.IsPositive() {
			f, _ := newFunds.Float64()
			monitor.Business.DepositAmountTotal.Add(f)
		}
	}

	if newFunds.IsPositive() && s.recorder != nil {
		if err := s.recorder.DepositReconciled(ctx, model.Deposit{
			Principal: user.String(),
			Observed:  observed,
			NewFunds:  newFunds,
		}); err != nil {
			// 审计失败不回滚对账结果: 内存注册表是权威
			logger.Error("对账流水落库失败", zap.String("principal", user.String()), zap.Error(err))
		}
	}

	logger.Info("对账完成",
		zap.String("principal", user.String()),
		zap.String("observed", observed.String()),
		zap.String("new_funds", newFunds.String()),
		zap.String("amount", after.Amount.String()))
	return newFunds, nil
}
