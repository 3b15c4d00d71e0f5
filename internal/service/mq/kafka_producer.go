package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vault-core/pkg/logger"
)

// KafkaProducer 实现 Producer 接口
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer 创建 Kafka 生产者
// brokers: Kafka 节点地址列表 (e.g. ["localhost:9092"])
// Writer 不绑定 Topic, 存款/提现事件共用一个 Writer, 按消息指定主题
func NewKafkaProducer(brokers []string) *KafkaProducer {
	// 1. Balancer: 按 Key 哈希, 保证同一用户的事件有序
	// 2. RequiredAcks: 等待所有 ISR 副本确认 (资金事件不能丢)
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true, // 开发环境允许自动创建 Topic
		RequiredAcks:           kafka.RequireAll,
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
	}

	return &KafkaProducer{
		writer: writer,
	}
}

// Publish 发送消息到 Kafka
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Value: payload,
		Key:   []byte(key),
	}

	// 发送 (底层是异步批量的，但在 Writer 层面是阻塞等待 Ack)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error("[Kafka] Publish 失败", zap.Error(err))
		return fmt.Errorf("kafka write error: %w", err)
	}

	return nil
}

// Close 关闭连接
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
