package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vault-core/pkg/logger"
)

// RedisProducer 实现 Producer 接口
type RedisProducer struct {
	client *redis.Client
}

// NewRedisProducer 创建 Redis 生产者
func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{
		client: client,
	}
}

// Publish 发送消息到 Redis Stream
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	// 使用 Redis Streams 的 XADD 命令, Stream Name = topic
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()

	if err != nil {
		logger.Error("[Redis MQ] Publish 失败", zap.Error(err))
		return fmt.Errorf("redis xadd error: %w", err)
	}

	return nil
}

// RedisConsumer 实现 Consumer 接口
type RedisConsumer struct {
	client *redis.Client
	group  string
	name   string
}

// NewRedisConsumer 创建 Redis 消费者
func NewRedisConsumer(client *redis.Client, group, name string) *RedisConsumer {
	return &RedisConsumer{
		client: client,
		group:  group,
		name:   name,
	}
}

// Subscribe 订阅 Redis Stream
func (c *RedisConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// 1. 创建 Consumer Group (如果不存在)
	// XGROUP CREATE <stream> <group> $ MKSTREAM
	err := c.client.XGroupCreateMkStream(ctx, topic, c.group, "$").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("创建消费者组失败: %w", err)
	}

	logger.Info("[Redis MQ] 开始监听主题", zap.String("topic", topic), zap.String("group", c.group))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			// 2. 阻塞读取消息
			// XREADGROUP GROUP <group> <consumer> BLOCK 2000 COUNT 1 STREAMS <topic> >
			streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    c.group,
				Consumer: c.name,
				Streams:  []string{topic, ">"},
				Count:    1,
				Block:    2 * time.Second,
			}).Result()

			if err == redis.Nil {
				continue // 超时无消息
			}
			if err != nil {
				logger.Error("[Redis MQ] 读取消息错误", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}

			// 3. 处理消息
			for _, stream := range streams {
				for _, xMessage := range stream.Messages {
					val, ok := xMessage.Values["payload"].(string)
					if !ok {
						logger.Error("[Redis MQ] 消息格式错误: payload 缺失", zap.String("id", xMessage.ID))
						c.ack(ctx, topic, xMessage.ID)
						continue
					}
					key, _ := xMessage.Values["key"].(string)

					msg := &Message{
						ID:      xMessage.ID,
						Topic:   topic,
						Key:     key,
						Payload: []byte(val),
					}

					// 调用回调
					if err := handler(msg); err != nil {
						logger.Error("[Redis MQ] 消息处理失败", zap.Error(err))
						// 不 ACK, 留在 PEL 里等待重试/死信处理
					} else {
						// 处理成功，ACK
						c.ack(ctx, topic, xMessage.ID)
					}
				}
			}
		}
	}
}

func (c *RedisConsumer) ack(ctx context.Context, topic, id string) {
	c.client.XAck(ctx, topic, c.group, id)
}

func (c *RedisConsumer) Close() error {
	return c.client.Close()
}
