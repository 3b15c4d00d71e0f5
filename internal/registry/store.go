package registry

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vault-core/internal/model"
)

// Store 负责注册表的持久化: 启动时整表加载, 快照时整体回写。
// 数据库只是序列化形式, 余额检查等一切判断都发生在内存注册表里。
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Restore 从数据库恢复注册表内容 (覆盖)。
func (s *Store) Restore(ctx context.Context, r *Registry) error {
	var rows []model.Account
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return err
	}
	return r.Load(rows)
}

// SaveSnapshot 把注册表当前内容整体回写 (upsert)。
// 账户只增不删, 所以不需要处理快照里消失的行。
func (s *Store) SaveSnapshot(ctx context.Context, r *Registry) error {
	rows := r.Snapshot()
	if len(rows) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "ledger_observed", "updated_at",
		}),
	}).Create(&rows).Error
}

// SaveAccount 单账户 upsert (注册成功后立刻落一行, 不等快照周期)。
func (s *Store) SaveAccount(ctx context.Context, row model.Account) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "ledger_observed", "updated_at",
		}),
	}).Create(&row).Error
}
