package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vault-core/internal/registry"
	"vault-core/pkg/logger"
	"vault-core/pkg/utils/lock"
)

// CronService 周期任务: 把内存注册表快照回写到 Postgres。
// 快照是崩溃恢复的底线, 注册/提现等关键点还会各自落单行。
type CronService struct {
	cron     *cron.Cron
	redis    *redis.Client
	registry *registry.Registry
	store    *registry.Store
	spec     string // cron 表达式, 如 "@every 1m"
}

func NewCronService(rdb *redis.Client, reg *registry.Registry, store *registry.Store, spec string) *CronService {
	return &CronService{
		cron:     cron.New(),
		redis:    rdb,
		registry: reg,
		store:    store,
		spec:     spec,
	}
}

func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.SnapshotAccounts); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("定时任务启动", zap.String("snapshot_spec", s.spec))
	return nil
}

// Stop 停止调度并做最后一次快照 (优雅退出时余额不丢)。
func (s *CronService) Stop() {
	ctx := s.cron.Stop() // 等在跑的任务结束
	<-ctx.Done()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SaveSnapshot(flushCtx, s.registry); err != nil {
		logger.Error("退出前快照失败", zap.Error(err))
	}
	logger.Info("定时任务停止")
}

// SnapshotAccounts 账户快照任务。
func (s *CronService) SnapshotAccounts() {
	ctx := context.Background()
	lockKey := "cron:lock:snapshot_accounts"

	// 1. 分布式锁 (TTL 30s), 防止多实例重复快照
	locker := lock.NewRedisLock(s.redis)
	locked, err := locker.Acquire(ctx, lockKey, 30*time.Second)
	if err != nil || !locked {
		logger.Debug("快照任务: 获取锁失败或已有实例在运行")
		return
	}
	defer locker.Release(ctx, lockKey)

	// 2. 回写快照
	start := time.Now()
	if err := s.store.SaveSnapshot(ctx, s.registry); err != nil {
		logger.Error("账户快照失败", zap.Error(err))
		return
	}
	logger.Info("账户快照完成",
		zap.Int("accounts", s.registry.Len()),
		zap.Duration("cost", time.Since(start)))
}
