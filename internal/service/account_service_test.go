package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-core/internal/registry"
	"vault-core/pkg/cache"
	"vault-core/pkg/errno"
	"vault-core/pkg/principal"
)

func TestRegisterReturnsDepositAddress(t *testing.T) {
	reg := registry.New(testOwner)
	svc := NewAccountService(reg, nil, nil)

	rec, err := svc.Register(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, testOwner, rec.DepositAddress.Owner)
	assert.True(t, rec.Amount.IsZero())

	// 同一用户的地址派生是确定性的
	again, ok := svc.QueryDetail(context.Background(), "alice")
	require.True(t, ok)
	assert.True(t, rec.DepositAddress.Equal(again.DepositAddress))

	_, err = svc.Register(context.Background(), "alice")
	assert.ErrorIs(t, err, errno.ErrAlreadyRegistered)
}

func TestQueryDetailUnregistered(t *testing.T) {
	reg := registry.New(testOwner)
	svc := NewAccountService(reg, nil, nil)

	_, ok := svc.QueryDetail(context.Background(), "ghost")
	assert.False(t, ok)
}

func TestQueryDetailCacheRoundTrip(t *testing.T) {
	reg := registry.New(testOwner)
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	svc := NewAccountService(reg, nil, c)

	_, err := svc.Register(context.Background(), "alice")
	require.NoError(t, err)
	_, _, err = reg.FoldObserved("alice", decimal.NewFromInt(500))
	require.NoError(t, err)

	// 第一次查询回填缓存, 第二次命中且内容一致
	first, ok := svc.QueryDetail(context.Background(), "alice")
	require.True(t, ok)
	second, ok := svc.QueryDetail(context.Background(), "alice")
	require.True(t, ok)
	assert.Equal(t, principal.ID("alice"), second.Principal)
	assert.True(t, first.Amount.Equal(second.Amount))
	assert.True(t, first.DepositAddress.Equal(second.DepositAddress))

	// 余额变更方负责失效缓存, 下一次查询看到新值
	_, err = reg.ApplyDelta("alice", decimal.NewFromInt(-100))
	require.NoError(t, err)
	invalidateDetail(context.Background(), c, "alice")

	third, ok := svc.QueryDetail(context.Background(), "alice")
	require.True(t, ok)
	assert.True(t, third.Amount.Equal(decimal.NewFromInt(400)))
}
