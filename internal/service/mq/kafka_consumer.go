package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vault-core/pkg/logger"
)

// KafkaConsumer 实现 Consumer 接口
type KafkaConsumer struct {
	brokers []string
	groupID string
	reader  *kafka.Reader
}

// NewKafkaConsumer 创建 Kafka 消费者
func NewKafkaConsumer(brokers []string, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers: brokers,
		groupID: groupID,
	}
}

// Subscribe 订阅 Kafka 主题
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// GroupID: 同组内只有一个消费者能消费到同一分区的消息 (负载均衡)
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     c.groupID,
		Topic:       topic,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.LastOffset,
	})

	logger.Info("[Kafka MQ] 开始监听主题", zap.String("topic", topic), zap.String("group", c.groupID))

	// 启动消费循环
	go c.consumeLoop(ctx, topic, handler)

	return nil
}

func (c *KafkaConsumer) consumeLoop(ctx context.Context, topic string, handler func(msg *Message) error) {
	defer c.reader.Close()

	for {
		// 1. 读取消息 (阻塞直到有消息)
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return // 上下文取消，退出
			}
			logger.Error("[Kafka MQ] 读取消息错误", zap.Error(err))
			time.Sleep(1 * time.Second)
			continue
		}

		// 2. 构造通用消息
		msg := &Message{
			ID:      string(m.Key),
			Topic:   topic,
			Key:     string(m.Key),
			Payload: m.Value,
		}

		// 3. 调用业务处理函数
		if err := handler(msg); err != nil {
			logger.Error("[Kafka MQ] 业务处理失败", zap.Error(err))
			// Kafka 不支持单条消息 Nack 重回队列;
			// 失败消息依赖 Consumer 幂等 + 后续补偿, 这里继续前进
			continue
		}

		// 4. 手动提交 Offset (确认消费成功)
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Error("[Kafka MQ] 提交 Offset 失败", zap.Error(err))
		}
	}
}

// Close 关闭消费者
func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
