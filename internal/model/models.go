package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account 账户快照表
// 运行时权威状态在内存注册表里 (internal/registry), 这张表是它的序列化形式:
// 启动时整表加载, 快照任务和优雅退出时整体回写。
type Account struct {
	Principal string `gorm:"type:varchar(64);primaryKey" json:"principal"`
	// 存款地址的两个组成部分: owner 固定为金库主体, 子账户由用户派生
	AddressOwner  string `gorm:"type:varchar(64);not null" json:"address_owner"`
	SubaccountHex string `gorm:"type:char(64);not null" json:"subaccount_hex"`
	// Amount 缓存余额 (金库托管中可归属于该用户的资金估计值)
	Amount decimal.Decimal `gorm:"type:decimal(40,0);not null;default:0" json:"amount"`
	// LedgerObserved 上次对账时观察到的账本余额, 用于增量折算
	LedgerObserved decimal.Decimal `gorm:"type:decimal(40,0);not null;default:0" json:"ledger_observed"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Deposit 对账流水表 (append-only 审计)
type Deposit struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Principal string          `gorm:"type:varchar(64);not null;index" json:"principal"`
	Observed  decimal.Decimal `gorm:"type:decimal(40,0);not null" json:"observed"`  // 本次观察到的账本余额
	NewFunds  decimal.Decimal `gorm:"type:decimal(40,0);not null" json:"new_funds"` // 本次新折入缓存的金额
	CreatedAt time.Time       `json:"created_at"`
}

// 提现终态
const (
	WithdrawalStatusSettled     = "SETTLED"     // 转账成功, 扣减生效
	WithdrawalStatusCompensated = "COMPENSATED" // 转账失败, 已补偿回缓存余额
)

// Withdrawal 提现流水表 (append-only 审计)
// 每次提现请求一条记录, 带终态; Transferring 中间态不落库,
// 因为账本调用失败时同一请求内就会补偿并写入终态。
type Withdrawal struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"` // uuid
	Principal   string          `gorm:"type:varchar(64);not null;index" json:"principal"`
	ToAddress   string          `gorm:"type:varchar(255);not null" json:"to_address"`
	Amount      decimal.Decimal `gorm:"type:decimal(40,0);not null" json:"amount"` // 用户请求的金额 (含手续费)
	Fee         decimal.Decimal `gorm:"type:decimal(40,0);not null" json:"fee"`
	Status      string          `gorm:"type:varchar(20);not null;index" json:"status"`
	LedgerTxID  string          `gorm:"type:varchar(64)" json:"ledger_tx_id"` // 成功时账本返回的转账 ID
	FailureKind string          `gorm:"type:varchar(20)" json:"failure_kind"` // transport / ledger, 仅 COMPENSATED
	CreatedAt   time.Time       `json:"created_at"`
}

// OutboxMessage 本地消息表 (Transactional Outbox)
type OutboxMessage struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string         `gorm:"type:varchar(64)" json:"key"` // 分区键 (principal), 保证同用户事件有序
	Payload   []byte         `gorm:"type:text;not null" json:"payload"`
	Status    string         `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT, FAILED
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

func (Deposit) TableName() string {
	return "deposits"
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
