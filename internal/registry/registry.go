package registry

import (
	"encoding/hex"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"vault-core/internal/model"
	"vault-core/pkg/address"
	"vault-core/pkg/errno"
	"vault-core/pkg/principal"
)

// AccountRecord 注册表对外暴露的账户值对象。
// 所有操作取值/返回值, 内部 entry 不外泄。
type AccountRecord struct {
	Principal      principal.ID    `json:"principal"`
	DepositAddress address.Address `json:"deposit_address"`
	// Amount 金库对 "托管中可归属于该用户的资金" 的本地估计。
	// 只在对账点和提现点与账本真值桥接, 期间不保证等于账本余额。
	Amount decimal.Decimal `json:"amount"`
	// LedgerObserved 上次对账观察到的账本余额 (增量折算的基准)
	LedgerObserved decimal.Decimal `json:"ledger_observed"`
}

// Row 转换为序列化形式 (单行落库用)。
func (rec AccountRecord) Row() model.Account {
	return model.Account{
		Principal:      rec.Principal.String(),
		AddressOwner:   rec.DepositAddress.Owner.String(),
		SubaccountHex:  hex.EncodeToString(rec.DepositAddress.Subaccount[:]),
		Amount:         rec.Amount,
		LedgerObserved: rec.LedgerObserved,
	}
}

type accountEntry struct {
	// 每账户一把锁: 不同用户的更新互不阻塞、互不破坏
	mu       sync.Mutex
	addr     address.Address
	amount   decimal.Decimal
	observed decimal.Decimal
}

// Registry 是进程内权威的 UserId -> AccountRecord 映射。
// 外层 RWMutex 只保护 map 结构 (插入/查找), 余额更新走每账户锁。
type Registry struct {
	owner    principal.ID
	mu       sync.RWMutex
	accounts map[principal.ID]*accountEntry
}

// New 创建空注册表。owner 是金库在外部账本上的主体标识。
func New(owner principal.ID) *Registry {
	return &Registry{
		owner:    owner,
		accounts: make(map[principal.ID]*accountEntry),
	}
}

func (r *Registry) record(user principal.ID, e *accountEntry) AccountRecord {
	return AccountRecord{
		Principal:      user,
		DepositAddress: e.addr,
		Amount:         e.amount,
		LedgerObserved: e.observed,
	}
}

// Register 为用户创建账户, 初始余额 0。
// 幂等性: 第二次调用必须失败且不改变任何状态。
func (r *Registry) Register(user principal.ID) (AccountRecord, error) {
	if user.IsAnonymous() {
		return AccountRecord{}, errno.ErrAnonymousCaller
	}

	// 先派生地址再拿锁: 派生是纯函数, 失败时不需要回滚任何东西
	addr, err := address.Derive(r.owner, user)
	if err != nil {
		var malformed *address.ErrMalformed
		if errors.As(err, &malformed) {
			return AccountRecord{}, errno.ErrMalformedIdentifier
		}
		return AccountRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[user]; exists {
		return AccountRecord{}, errno.ErrAlreadyRegistered
	}

	e := &accountEntry{
		addr:     addr,
		amount:   decimal.Zero,
		observed: decimal.Zero,
	}
	r.accounts[user] = e
	return r.record(user, e), nil
}

// Get 非变更查询。
func (r *Registry) Get(user principal.ID) (AccountRecord, bool) {
	r.mu.RLock()
	e, ok := r.accounts[user]
	r.mu.RUnlock()
	if !ok {
		return AccountRecord{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return r.record(user, e), true
}

func (r *Registry) entry(user principal.ID) (*accountEntry, error) {
	r.mu.RLock()
	e, ok := r.accounts[user]
	r.mu.RUnlock()
	if !ok {
		return nil, errno.ErrNotRegistered
	}
	return e, nil
}

// ApplyDelta 按带符号的增量调整缓存余额。
// 不变量: 余额永不为负 —— 扣减前检查, 不够就拒绝且状态不变。
func (r *Registry) ApplyDelta(user principal.ID, delta decimal.Decimal) (AccountRecord, error) {
	e, err := r.entry(user)
	if err != nil {
		return AccountRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.amount.Add(delta)
	if next.IsNegative() {
		return AccountRecord{}, errno.ErrInsufficientBalance
	}
	e.amount = next
	return r.record(user, e), nil
}

// FoldObserved 把一次账本观察折入缓存余额, 返回本次新发现的资金。
// 增量语义: 只把超出上次观察值的部分视为新入金, 重复对账不会重复计入
// (提现成功后 NoteDrained 会同步下调基准)。
// 观察值低于基准时视为外部消耗, 重置基准且不折入任何资金。
func (r *Registry) FoldObserved(user principal.ID, observed decimal.Decimal) (decimal.Decimal, AccountRecord, error) {
	e, err := r.entry(user)
	if err != nil {
		return decimal.Zero, AccountRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	newFunds := observed.Sub(e.observed)
	if newFunds.IsNegative() {
		newFunds = decimal.Zero
	}
	e.amount = e.amount.Add(newFunds)
	e.observed = observed
	return newFunds, r.record(user, e), nil
}

// NoteDrained 在提现成功后下调对账基准:
// 账本上该存款地址刚被转走 drained, 下次 balance_of 自然变小,
// 不下调的话增量折算会把真正的新入金算少。
func (r *Registry) NoteDrained(user principal.ID, drained decimal.Decimal) error {
	e, err := r.entry(user)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.observed = e.observed.Sub(drained)
	if e.observed.IsNegative() {
		e.observed = decimal.Zero
	}
	return nil
}

// Snapshot 导出全部账户的序列化形式 (落库用)。
func (r *Registry) Snapshot() []model.Account {
	r.mu.RLock()
	entries := make(map[principal.ID]*accountEntry, len(r.accounts))
	for user, e := range r.accounts {
		entries[user] = e
	}
	r.mu.RUnlock()

	rows := make([]model.Account, 0, len(entries))
	for user, e := range entries {
		e.mu.Lock()
		rows = append(rows, model.Account{
			Principal:      user.String(),
			AddressOwner:   e.addr.Owner.String(),
			SubaccountHex:  hex.EncodeToString(e.addr.Subaccount[:]),
			Amount:         e.amount,
			LedgerObserved: e.observed,
		})
		e.mu.Unlock()
	}
	return rows
}

// Load 从序列化形式恢复注册表 (启动时调用, 覆盖现有内容)。
func (r *Registry) Load(rows []model.Account) error {
	accounts := make(map[principal.ID]*accountEntry, len(rows))
	for _, row := range rows {
		user, err := principal.Parse(row.Principal)
		if err != nil {
			return err
		}
		owner, err := principal.Parse(row.AddressOwner)
		if err != nil {
			return err
		}

		raw, err := hex.DecodeString(row.SubaccountHex)
		if err != nil || len(raw) != address.SubaccountSize {
			return errno.ErrDatabase.WithMessage("corrupt subaccount for " + row.Principal)
		}

		addr := address.Address{Owner: owner}
		copy(addr.Subaccount[:], raw)

		accounts[user] = &accountEntry{
			addr:     addr,
			amount:   row.Amount,
			observed: row.LedgerObserved,
		}
	}

	r.mu.Lock()
	r.accounts = accounts
	r.mu.Unlock()
	return nil
}

// Len 当前账户数。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
