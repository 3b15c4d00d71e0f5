package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"vault-core/internal/model"
	"vault-core/internal/worker/tasks"
)

// Client 封装 Asynq Client, 实现 service.ReceiptEnqueuer
type Client struct {
	client *asynq.Client
}

// NewClient 初始化 Client
// addr: "localhost:6379"
func NewClient(addr string, password string, db int) *Client {
	c := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{client: c}
}

// EnqueueWithdrawalReceipt 提现终态后投递回执任务
func (c *Client) EnqueueWithdrawalReceipt(ctx context.Context, w model.Withdrawal) error {
	task, err := tasks.NewWithdrawalReceiptTask(w)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.client.Close()
}
