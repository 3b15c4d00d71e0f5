package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vault-core/internal/model"
	"vault-core/internal/service/mq"
	"vault-core/pkg/logger"
)

// RelayService 把本地消息表 (outbox_messages) 的待发事件搬运到 MQ。
// 事件和审计流水同事务落库, 这里只负责至少一次投递, 消费端做幂等。
type RelayService struct {
	db       *gorm.DB
	producer mq.Producer
	interval time.Duration
	batch    int
}

func NewRelayService(db *gorm.DB, producer mq.Producer) *RelayService {
	return &RelayService{
		db:       db,
		producer: producer,
		interval: 500 * time.Millisecond,
		batch:    50,
	}
}

func (s *RelayService) Start(ctx context.Context) {
	logger.Info("消息中继服务启动")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("消息中继服务停止")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *RelayService) processPendingMessages(ctx context.Context) {
	// 1. 按落库顺序取一批 Pending (同 Key 的事件保持有序)
	var messages []model.OutboxMessage
	if err := s.db.WithContext(ctx).
		Where("status = ?", "PENDING").
		Order("id asc").
		Limit(s.batch).
		Find(&messages).Error; err != nil {
		logger.Error("查询待发消息失败", zap.Error(err))
		return
	}

	for _, msg := range messages {
		// 2. 发送 MQ, Key 是 principal, 保证同用户事件进同一分区
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			logger.Error("投递消息失败", zap.Uint64("id", msg.ID), zap.Error(err))
			continue
		}

		// 3. 发送成功才标记 SENT => 至少一次投递
		// 标记失败下次会重发, 消费端需幂等
		if err := s.db.WithContext(ctx).Model(&msg).Update("status", "SENT").Error; err != nil {
			logger.Error("更新消息状态失败", zap.Uint64("id", msg.ID), zap.Error(err))
		}
	}
}
