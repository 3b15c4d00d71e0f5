package service

import (
	"context"

	"gorm.io/gorm"

	"vault-core/internal/event"
	"vault-core/internal/model"
)

// GormRecorder 把审计流水和对应事件写入 Postgres (Transactional Outbox)。
// 事件不直接发 MQ: 先和流水落在同一个事务里, 由 RelayService 搬运,
// 保证 "有流水必有事件" 的至少一次投递。
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) DepositReconciled(ctx context.Context, dep model.Deposit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dep).Error; err != nil {
			return err
		}
		return model.CreateOutboxMessage(tx, event.TopicDeposit, dep.Principal, event.DepositReconciledEvent{
			Principal: dep.Principal,
			Observed:  dep.Observed.String(),
			NewFunds:  dep.NewFunds.String(),
		})
	})
}

func (r *GormRecorder) WithdrawalFinished(ctx context.Context, w model.Withdrawal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&w).Error; err != nil {
			return err
		}

		var payload interface{}
		if w.Status == model.WithdrawalStatusSettled {
			payload = event.WithdrawalSettledEvent{
				WithdrawalID: w.ID,
				Principal:    w.Principal,
				ToAddress:    w.ToAddress,
				Amount:       w.Amount.String(),
				Fee:          w.Fee.String(),
				LedgerTxID:   w.LedgerTxID,
			}
		} else {
			payload = event.WithdrawalCompensatedEvent{
				WithdrawalID: w.ID,
				Principal:    w.Principal,
				Amount:       w.Amount.String(),
				FailureKind:  w.FailureKind,
			}
		}
		return model.CreateOutboxMessage(tx, event.TopicWithdrawal, w.Principal, payload)
	})
}

// NopRecorder 丢弃所有审计记录 (单元测试用)
type NopRecorder struct{}

func (NopRecorder) DepositReconciled(ctx context.Context, dep model.Deposit) error   { return nil }
func (NopRecorder) WithdrawalFinished(ctx context.Context, w model.Withdrawal) error { return nil }
