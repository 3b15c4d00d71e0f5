package request

import "github.com/shopspring/decimal"

// WithdrawRequest 提现请求体。Amount 是含手续费的总额。
type WithdrawRequest struct {
	ToAddress string          `json:"to_address" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}
