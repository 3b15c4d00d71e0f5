package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vault-core/internal/registry"
	"vault-core/pkg/cache"
	"vault-core/pkg/logger"
	"vault-core/pkg/monitor"
	"vault-core/pkg/principal"
)

const detailCacheTTL = 30 * time.Second

func detailCacheKey(user principal.ID) string {
	return "vault:detail:" + user.String()
}

// AccountService 负责注册和只读查询。
type AccountService struct {
	registry *registry.Registry
	store    *registry.Store // 可为 nil (单元测试)
	cache    cache.Cache     // 可为 nil
}

func NewAccountService(reg *registry.Registry, store *registry.Store, c cache.Cache) *AccountService {
	return &AccountService{
		registry: reg,
		store:    store,
		cache:    c,
	}
}

// Register 为调用者创建账户。
// 恰好一次: 重复调用返回 AlreadyRegistered, 不产生任何状态变化。
func (s *AccountService) Register(ctx context.Context, user principal.ID) (registry.AccountRecord, error) {
	rec, err := s.registry.Register(user)
	if err != nil {
		return registry.AccountRecord{}, err
	}

	// 注册成功立刻落一行快照, 不等周期任务。
	// 落库失败不回滚注册: 内存是权威, 周期快照会补上。
	if s.store != nil {
		if err := s.store.SaveAccount(ctx, rec.Row()); err != nil {
			logger.Error("注册后落库失败, 等待周期快照补偿",
				zap.String("principal", user.String()), zap.Error(err))
		}
	}

	if monitor.Business != nil {
		monitor.Business.UserRegisteredTotal.Inc()
	}
	logger.Info("用户注册成功",
		zap.String("principal", user.String()),
		zap.String("deposit_address", rec.DepositAddress.String()))
	return rec, nil
}

// QueryDetail 只读投影: 返回注册表当前持有的记录。
// 明确不保证等于账本实时余额 (两次对账之间只是本地估计)。
func (s *AccountService) QueryDetail(ctx context.Context, user principal.ID) (registry.AccountRecord, bool) {
	if s.cache != nil {
		var cached registry.AccountRecord
		if err := s.cache.Get(ctx, detailCacheKey(user), &cached); err == nil {
			return cached, true
		}
	}

	rec, ok := s.registry.Get(user)
	if !ok {
		return registry.AccountRecord{}, false
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, detailCacheKey(user), rec, detailCacheTTL)
	}
	return rec, true
}

// invalidateDetail 余额变更后删除查询缓存 (Deposit/Withdraw 服务调用)。
func invalidateDetail(ctx context.Context, c cache.Cache, user principal.ID) {
	if c != nil {
		_ = c.Delete(ctx, detailCacheKey(user))
	}
}
