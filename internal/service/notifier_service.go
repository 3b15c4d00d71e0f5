package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"vault-core/internal/event"
	"vault-core/internal/service/mq"
	"vault-core/pkg/logger"
)

// NotifierService 订阅资金事件并输出结构化通知日志。
// 下游系统 (风控/对账平台) 接入时替换这里的处理逻辑即可。
// 事件是至少一次投递的, 处理必须幂等 —— 这里只打日志, 天然幂等。
type NotifierService struct {
	consumer mq.Consumer
}

func NewNotifierService(consumer mq.Consumer) *NotifierService {
	return &NotifierService{consumer: consumer}
}

// Start 阻塞消费两个事件主题, ctx 取消后退出。
func (s *NotifierService) Start(ctx context.Context) {
	go func() {
		if err := s.consumer.Subscribe(ctx, event.TopicDeposit, s.handleDeposit); err != nil {
			logger.Error("订阅存款事件失败", zap.Error(err))
		}
	}()
	go func() {
		if err := s.consumer.Subscribe(ctx, event.TopicWithdrawal, s.handleWithdrawal); err != nil {
			logger.Error("订阅提现事件失败", zap.Error(err))
		}
	}()
}

func (s *NotifierService) handleDeposit(msg *mq.Message) error {
	var e event.DepositReconciledEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		// 坏消息重试也没用, ACK 掉并记录
		logger.Error("存款事件解析失败", zap.String("id", msg.ID), zap.Error(err))
		return nil
	}

	logger.Info("存款入账通知",
		zap.String("principal", e.Principal),
		zap.String("new_funds", e.NewFunds),
		zap.String("observed", e.Observed))
	return nil
}

func (s *NotifierService) handleWithdrawal(msg *mq.Message) error {
	// 同一主题承载 settled 和 compensated 两种事件, 按字段区分
	var e event.WithdrawalCompensatedEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		logger.Error("提现事件解析失败", zap.String("id", msg.ID), zap.Error(err))
		return nil
	}

	if e.FailureKind != "" {
		logger.Warn("提现失败通知",
			zap.String("withdrawal_id", e.WithdrawalID),
			zap.String("principal", e.Principal),
			zap.String("amount", e.Amount),
			zap.String("failure_kind", e.FailureKind))
		return nil
	}

	var settled event.WithdrawalSettledEvent
	if err := json.Unmarshal(msg.Payload, &settled); err != nil {
		return nil
	}
	logger.Info("提现成功通知",
		zap.String("withdrawal_id", settled.WithdrawalID),
		zap.String("principal", settled.Principal),
		zap.String("amount", settled.Amount),
		zap.String("ledger_tx_id", settled.LedgerTxID))
	return nil
}
