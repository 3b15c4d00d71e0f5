package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-core/internal/registry"
	"vault-core/pkg/errno"
	"vault-core/pkg/principal"
)

func newDepositFixture(t *testing.T) (*registry.Registry, *fakeLedger, *captureRecorder, *DepositService) {
	t.Helper()
	reg := registry.New(testOwner)
	lg := newFakeLedger()
	rec := &captureRecorder{}
	svc := NewDepositService(reg, lg, rec, nil)
	return reg, lg, rec, svc
}

func TestReconcileFoldsLedgerBalance(t *testing.T) {
	reg, lg, rec, svc := newDepositFixture(t)
	account, err := reg.Register("alice")
	require.NoError(t, err)

	// 用户向存款地址打了 500
	lg.setBalance(account.DepositAddress, 500)

	newFunds, err := svc.Reconcile(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, newFunds.Equal(decimal.NewFromInt(500)))

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))

	// 审计流水只在有新入金时落
	require.Len(t, rec.deposits, 1)
	assert.True(t, rec.deposits[0].NewFunds.Equal(decimal.NewFromInt(500)))
}

func TestReconcileIdempotentWithoutNewDeposits(t *testing.T) {
	reg, lg, rec, svc := newDepositFixture(t)
	account, err := reg.Register("alice")
	require.NoError(t, err)
	lg.setBalance(account.DepositAddress, 500)

	_, err = svc.Reconcile(context.Background(), "alice")
	require.NoError(t, err)

	// 账本余额没变: 第二次对账不得重复折入
	newFunds, err := svc.Reconcile(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, newFunds.IsZero())

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))
	assert.Len(t, rec.deposits, 1, "零增量不落审计流水")
}

func TestReconcileRejectsUnknownCallers(t *testing.T) {
	_, _, _, svc := newDepositFixture(t)

	_, err := svc.Reconcile(context.Background(), principal.Anonymous)
	assert.ErrorIs(t, err, errno.ErrAnonymousCaller)

	_, err = svc.Reconcile(context.Background(), "ghost")
	assert.ErrorIs(t, err, errno.ErrNotRegistered)
}

func TestReconcileLedgerFailureLeavesStateUntouched(t *testing.T) {
	reg, lg, _, svc := newDepositFixture(t)
	_, err := reg.Register("alice")
	require.NoError(t, err)
	lg.balanceErr = errors.New("dial tcp: connection refused")

	_, err = svc.Reconcile(context.Background(), "alice")
	assert.ErrorIs(t, err, errno.ErrTransferFailed)

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.IsZero())
	assert.True(t, got.LedgerObserved.IsZero())
}

func TestReconcileAfterWithdrawalSeesOnlyFreshFunds(t *testing.T) {
	reg, lg, _, svc := newDepositFixture(t)
	account, err := reg.Register("alice")
	require.NoError(t, err)

	lg.setBalance(account.DepositAddress, 500)
	_, err = svc.Reconcile(context.Background(), "alice")
	require.NoError(t, err)

	// 提现 300 成功 (账本侧余额降到 200, 基准同步下调)
	wsvc := NewWithdrawService(reg, lg, decimal.NewFromInt(10), NopRecorder{}, nil, nil)
	_, err = wsvc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
	require.NoError(t, err)
	lg.setBalance(account.DepositAddress, 200)

	// 残余的 200 不是新入金
	newFunds, err := svc.Reconcile(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, newFunds.IsZero())

	// 又入金 100
	lg.setBalance(account.DepositAddress, 300)
	newFunds, err = svc.Reconcile(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, newFunds.Equal(decimal.NewFromInt(100)))

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(300)), "200 剩余 + 100 新入金")
}
