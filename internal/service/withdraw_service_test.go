package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-core/internal/ledger"
	"vault-core/internal/model"
	"vault-core/internal/registry"
	"vault-core/pkg/address"
	"vault-core/pkg/errno"
	"vault-core/pkg/principal"
)

const testOwner = principal.ID("vault-main")

// fakeLedger 可编程的账本替身。
type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal // addr.String() -> balance

	balanceErr  error // 不为 nil 时 BalanceOf 返回它
	transferErr error // 不为 nil 时 Transfer 返回它
	transfers   []ledger.TransferRequest
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]decimal.Decimal)}
}

func (f *fakeLedger) setBalance(addr address.Address, v int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[addr.String()] = decimal.NewFromInt(v)
}

func (f *fakeLedger) BalanceOf(ctx context.Context, addr address.Address) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balances[addr.String()], nil
}

func (f *fakeLedger) Transfer(ctx context.Context, req ledger.TransferRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferErr != nil {
		return "", f.transferErr
	}
	f.transfers = append(f.transfers, req)
	return fmt.Sprintf("tx-%d", len(f.transfers)), nil
}

func (f *fakeLedger) transferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers)
}

func (f *fakeLedger) lastTransfer() ledger.TransferRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transfers[len(f.transfers)-1]
}

// captureRecorder 记录所有流水 (断言用)。
type captureRecorder struct {
	mu          sync.Mutex
	deposits    []model.Deposit
	withdrawals []model.Withdrawal
}

func (c *captureRecorder) DepositReconciled(ctx context.Context, dep model.Deposit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deposits = append(c.deposits, dep)
	return nil
}

func (c *captureRecorder) WithdrawalFinished(ctx context.Context, w model.Withdrawal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.withdrawals = append(c.withdrawals, w)
	return nil
}

func newWithdrawFixture(t *testing.T) (*registry.Registry, *fakeLedger, *captureRecorder, *WithdrawService) {
	t.Helper()
	reg := registry.New(testOwner)
	lg := newFakeLedger()
	rec := &captureRecorder{}
	svc := NewWithdrawService(reg, lg, decimal.NewFromInt(10), rec, nil, nil)
	return reg, lg, rec, svc
}

func fund(t *testing.T, reg *registry.Registry, user principal.ID, amount int64) {
	t.Helper()
	_, err := reg.Register(user)
	require.NoError(t, err)
	_, _, err = reg.FoldObserved(user, decimal.NewFromInt(amount))
	require.NoError(t, err)
}

func TestWithdrawHappyPath(t *testing.T) {
	reg, lg, rec, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 500)

	// 提 300 (含手续费 10): 账本收到 290, 余额剩 200
	res, err := svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.NotEmpty(t, res.WithdrawalID)
	assert.NotEmpty(t, res.LedgerTxID)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(200)))

	require.Equal(t, 1, lg.transferCount())
	tr := lg.lastTransfer()
	assert.True(t, tr.Amount.Equal(decimal.NewFromInt(290)), "净额 = 请求额 - 手续费")
	assert.True(t, tr.Fee.Equal(decimal.NewFromInt(10)))
	assert.NotEmpty(t, tr.Memo, "每次转账必须带幂等令牌")
	assert.Equal(t, principal.ID("merchant"), tr.To.Owner)
	// 出金方是用户自己的存款子账户
	assert.Equal(t, testOwner, tr.From.Owner)

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(200)))

	require.Len(t, rec.withdrawals, 1)
	assert.Equal(t, model.WithdrawalStatusSettled, rec.withdrawals[0].Status)
	assert.Equal(t, res.LedgerTxID, rec.withdrawals[0].LedgerTxID)

	// 紧接着提 250 > 200: 拒绝, 余额不动
	_, err = svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(250))
	assert.ErrorIs(t, err, errno.ErrInsufficientBalance)
	got, _ = reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(200)))
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	reg, lg, _, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 200)

	_, err := svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(250))
	assert.ErrorIs(t, err, errno.ErrInsufficientBalance)

	// 拒绝时完全不碰账本, 余额不变
	assert.Equal(t, 0, lg.transferCount())
	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(200)))
}

func TestWithdrawValidation(t *testing.T) {
	reg, lg, _, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 500)

	_, err := svc.Withdraw(context.Background(), principal.Anonymous, "merchant", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, errno.ErrAnonymousCaller)

	_, err = svc.Withdraw(context.Background(), "ghost", "merchant", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, errno.ErrNotRegistered)

	// 金额必须严格大于手续费
	_, err = svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, errno.ErrBind)
	_, err = svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(9))
	assert.ErrorIs(t, err, errno.ErrBind)

	// 非法目标地址 (带子账户但校验和不对)
	_, err = svc.Withdraw(context.Background(), "alice", "x-deadbeef.00", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, errno.ErrMalformedIdentifier)

	assert.Equal(t, 0, lg.transferCount())
}

func TestWithdrawCompensatesOnLedgerRejection(t *testing.T) {
	reg, lg, rec, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 500)
	lg.transferErr = &ledger.RejectedError{Kind: ledger.KindTemporarilyUnavailable, Message: "ledger busy"}

	_, err := svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
	assert.ErrorIs(t, err, errno.ErrLedgerRejected)

	// 恰好一次补偿: 余额回到原值
	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))

	require.Len(t, rec.withdrawals, 1)
	assert.Equal(t, model.WithdrawalStatusCompensated, rec.withdrawals[0].Status)
	assert.Equal(t, FailureKindLedger, rec.withdrawals[0].FailureKind)

	// 失败后重试成功
	lg.transferErr = nil
	res, err := svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(200)))
}

func TestWithdrawCompensatesOnTransportFailure(t *testing.T) {
	reg, lg, rec, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 500)
	lg.transferErr = errors.New("connection refused")

	_, err := svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
	assert.ErrorIs(t, err, errno.ErrTransferFailed)

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))

	require.Len(t, rec.withdrawals, 1)
	assert.Equal(t, FailureKindTransport, rec.withdrawals[0].FailureKind)
}

func TestWithdrawLowersReconcileBaseline(t *testing.T) {
	reg, _, _, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 500)

	_, err := svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
	require.NoError(t, err)

	// 提现后账本残余 200: 不是新入金
	newFunds, rec, err := reg.FoldObserved("alice", decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.True(t, newFunds.IsZero())
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(200)))
}

func TestConcurrentWithdrawalsSpendFundsOnce(t *testing.T) {
	reg, lg, _, svc := newWithdrawFixture(t)
	fund(t, reg, "alice", 500)

	// 两笔并发的 300: 余额只够一笔
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Withdraw(context.Background(), "alice", "merchant", decimal.NewFromInt(300))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, e := range errs {
		if e == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, e, errno.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, lg.transferCount())

	got, _ := reg.Get("alice")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(200)))
}
