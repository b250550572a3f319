package model

import "time"

// OrderEvent 订单事件外发盒，与订单在同一事务中写入
type OrderEvent struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     uint       `json:"order_id" gorm:"index;not null"`
	Type        string     `json:"type" gorm:"type:varchar(32);not null"`
	Payload     string     `json:"payload" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(16);index"` // pending, processing, done
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	ClaimedAt   *time.Time `json:"claimed_at" gorm:"index"`
	ProcessedAt *time.Time `json:"processed_at"`
}

func (OrderEvent) TableName() string { return "order_events" }

const (
	OrderEventCreated = "order.created"

	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
)
