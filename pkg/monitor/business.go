package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义金库业务监控指标
type BusinessMetrics struct {
	UserRegisteredTotal        prometheus.Counter
	DepositReconciledTotal     prometheus.Counter
	DepositAmountTotal         prometheus.Counter
	WithdrawalSettledTotal     prometheus.Counter
	WithdrawalCompensatedTotal *prometheus.CounterVec
	WithdrawAmountTotal        prometheus.Counter
	LedgerCallDuration         *prometheus.HistogramVec
}

// Global Metrics Instance
var Business *BusinessMetrics

// ObserveLedgerCall 记录一次账本调用耗时。
// 返回结束回调; 指标未初始化时 (单元测试) 为 no-op。
func ObserveLedgerCall(method string) func() {
	if Business == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(Business.LedgerCallDuration.WithLabelValues(method))
	return func() { timer.ObserveDuration() }
}

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		UserRegisteredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_user_registered_total",
			Help: "The total number of registered users",
		}),
		DepositReconciledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_deposit_reconciled_total",
			Help: "The total number of deposit reconciliations",
		}),
		DepositAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_deposit_amount_total",
			Help: "The total amount folded into cached balances",
		}),
		WithdrawalSettledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_withdrawal_settled_total",
			Help: "Total number of settled withdrawals",
		}),
		WithdrawalCompensatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vault_withdrawal_compensated_total",
			Help: "Total number of compensated withdrawals by failure kind",
		}, []string{"reason"}), // transport / ledger
		WithdrawAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vault_withdraw_amount_total",
			Help: "The total amount withdrawn (settled only)",
		}),
		LedgerCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vault_ledger_call_duration_seconds",
			Help:    "Duration of external ledger calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}), // balance_of / transfer
	}
}
