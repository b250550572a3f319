package model

import "time"

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

// CanTransitionTo pending -> approved|rejected, approved -> completed
func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return next == ReturnStatusApproved || next == ReturnStatusRejected
	case ReturnStatusApproved:
		return next == ReturnStatusCompleted
	}
	return false
}

// ReturnRequest 退货申请
type ReturnRequest struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	OrderID   uint         `json:"order_id" gorm:"index;not null"`
	Order     *Order       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Reason    string       `json:"reason" gorm:"type:text"`
	Status    ReturnStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	AdminNote string       `json:"admin_note" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (ReturnRequest) TableName() string { return "return_requests" }
