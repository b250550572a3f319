package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/pkg/database"
)

// OutboxRepository 订单事件外发盒
type OutboxRepository interface {
	WithTx(tx *gorm.DB) OutboxRepository
	Create(ctx context.Context, ev *model.OrderEvent) error
	// ClaimPending 认领一批 pending 事件并标记为 processing；
	// 认领超过 lease 仍未完成的 processing 事件视为 worker 已丢失，重新认领
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]model.OrderEvent, error)
	MarkDone(ctx context.Context, id string) error
	// Release 处理失败时放回 pending
	Release(ctx context.Context, id string) error
}

type outboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepository{db: db} }

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository { return &outboxRepository{db: tx} }

func (r *outboxRepository) Create(ctx context.Context, ev *model.OrderEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

// ClaimPending postgres 下使用 SELECT ... FOR UPDATE SKIP LOCKED；sqlite 写事务本身串行
func (r *outboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]model.OrderEvent, error) {
	var batch []model.OrderEvent
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ?", model.OutboxPending)
		if lease > 0 {
			q = tx.Where("status = ? OR (status = ? AND claimed_at < ?)", model.OutboxPending, model.OutboxProcessing, now.Add(-lease))
		}
		if database.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.
			Order("created_at").
			Limit(limit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.OrderEvent{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{"status": model.OutboxProcessing, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.OrderEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.OutboxDone, "processed_at": now}).Error
}

func (r *outboxRepository) Release(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.OrderEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.OutboxPending, "claimed_at": nil}).Error
}
