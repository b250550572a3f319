package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid return status transition")
	ErrReturnExists      = errors.New("return request already open")
)

// BackOfficeService 后台订单与退货处理
type BackOfficeService interface {
	UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error
	UpdateCargo(ctx context.Context, orderID uint, firm, trackingCode, barcode string) error

	CreateReturn(ctx context.Context, orderID uint, reason string) (*model.ReturnRequest, error)
	ApproveReturn(ctx context.Context, returnID uint, note string) error
	RejectReturn(ctx context.Context, returnID uint, note string) error
	CompleteReturn(ctx context.Context, returnID uint, note string) error
}

type backOfficeService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewBackOfficeService(db *gorm.DB, repos *repository.Repositories) BackOfficeService {
	return &backOfficeService{db: db, repos: repos}
}

func (s *backOfficeService) UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repos.Orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	logger.Info("order status changed", zap.Uint("order_id", orderID), zap.String("status", string(status)))
	return nil
}

func (s *backOfficeService) UpdateCargo(ctx context.Context, orderID uint, firm, trackingCode, barcode string) error {
	return s.repos.Orders.UpdateCargo(ctx, orderID,
		strings.TrimSpace(firm), strings.TrimSpace(trackingCode), strings.TrimSpace(barcode))
}

// CreateReturn 每个订单同时只允许一个未结束的退货申请
func (s *backOfficeService) CreateReturn(ctx context.Context, orderID uint, reason string) (*model.ReturnRequest, error) {
	if _, err := s.repos.Orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	existing, err := s.repos.Returns.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, rr := range existing {
		if rr.Status == model.ReturnStatusPending || rr.Status == model.ReturnStatusApproved {
			return nil, ErrReturnExists
		}
	}
	rr := &model.ReturnRequest{
		OrderID: orderID,
		Reason:  strings.TrimSpace(reason),
		Status:  model.ReturnStatusPending,
	}
	if err := s.repos.Returns.Create(ctx, rr); err != nil {
		return nil, err
	}
	return rr, nil
}

// ApproveReturn 审批通过时同一事务内将订单置为 return
func (s *backOfficeService) ApproveReturn(ctx context.Context, returnID uint, note string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		returns := s.repos.Returns.WithTx(tx)
		rr, err := s.transition(ctx, returns, returnID, model.ReturnStatusApproved, note)
		if err != nil {
			return err
		}
		return s.repos.Orders.WithTx(tx).UpdateStatus(ctx, rr.OrderID, model.OrderStatusReturn)
	})
}

func (s *backOfficeService) RejectReturn(ctx context.Context, returnID uint, note string) error {
	_, err := s.transition(ctx, s.repos.Returns, returnID, model.ReturnStatusRejected, note)
	return err
}

func (s *backOfficeService) CompleteReturn(ctx context.Context, returnID uint, note string) error {
	_, err := s.transition(ctx, s.repos.Returns, returnID, model.ReturnStatusCompleted, note)
	return err
}

func (s *backOfficeService) transition(ctx context.Context, returns repository.ReturnRepository, id uint, next model.ReturnStatus, note string) (*model.ReturnRequest, error) {
	rr, err := returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rr.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if err := returns.UpdateStatus(ctx, id, rr.Status, next, strings.TrimSpace(note)); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	logger.Info("return request updated",
		zap.Uint("return_id", id),
		zap.Uint("order_id", rr.OrderID),
		zap.String("from", string(rr.Status)),
		zap.String("to", string(next)),
	)
	rr.Status = next
	return rr, nil
}
