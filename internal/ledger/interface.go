package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"vault-core/pkg/address"
)

// Ledger 抽象外部账本服务的能力。
// 两个操作都是异步外部调用: 要么完成 (成功或 *RejectedError),
// 要么传输层失败 (其它 error, 结果未知)。
type Ledger interface {
	// BalanceOf 查询地址当前余额
	BalanceOf(ctx context.Context, addr address.Address) (decimal.Decimal, error)

	// Transfer 从 from 向 to 转账。amount 不含 fee, fee 由 from 一并承担。
	// 成功返回账本的转账 ID。
	Transfer(ctx context.Context, req TransferRequest) (string, error)
}

// TransferRequest 转账参数
type TransferRequest struct {
	From   address.Address `json:"from"`
	To     address.Address `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	// Memo 幂等令牌, 防止账本侧重复执行 (safe_random 生成)
	Memo string `json:"memo"`
}

// 账本应用层拒绝的类别 (账本明确回复 "没转", 与传输失败互斥)
const (
	KindBadFee               = "BAD_FEE"
	KindInsufficientFunds    = "INSUFFICIENT_FUNDS"
	KindTooOld               = "TOO_OLD"
	KindCreatedInFuture      = "CREATED_IN_FUTURE"
	KindDuplicate            = "DUPLICATE"
	KindTemporarilyUnavailable = "TEMPORARILY_UNAVAILABLE"
	KindGeneric              = "GENERIC"
)

// RejectedError 账本应用层错误: 调用到达了账本, 账本明确拒绝, 资金未移动。
type RejectedError struct {
	Kind    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("ledger rejected transfer: %s (%s)", e.Kind, e.Message)
}

// IsRejected 判断错误是否为账本应用层拒绝。
// false 表示传输层失败 (服务不可达/响应损坏/超时), 结果未知。
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}
