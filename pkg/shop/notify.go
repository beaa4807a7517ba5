package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"go.uber.org/zap"
)

type StatusChangeRequest struct {
	Email   string `json:"correo" binding:"required,email"`
	Status  string `json:"estado" binding:"required"`
	OrderID *int   `json:"id_pedido" binding:"required"`
}

type NotifyService struct {
	store    Store
	notifier Notifier
	ledger   SalesRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotifyService wires status changes to notifier. ledger may be nil.
func NewNotifyService(store Store, notifier Notifier, ledger SalesRecorder, logger *zap.Logger) *NotifyService {
	return &NotifyService{
		store:    store,
		notifier: notifier,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// ChangeStatus stores the new status and then emails the customer. When the
// email fails the status change stays in place and ErrNotifyFailed is
// returned alongside the updated order.
func (s *NotifyService) ChangeStatus(ctx context.Context, req StatusChangeRequest) (*models.Order, error) {
	if req.OrderID == nil || strings.TrimSpace(req.Status) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: correo, estado and id_pedido are required", ErrInvalidInput)
	}

	change := models.StatusChange{Status: req.Status}
	now := s.now().UTC()
	switch req.Status {
	case models.OrderStatusShipped:
		change.ShippedAt = &now
	case models.OrderStatusDelivered:
		change.DeliveredAt = &now
	}

	order, err := s.store.UpdateOrderStatus(ctx, *req.OrderID, change)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, *req.OrderID)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if s.ledger != nil {
		if err := s.ledger.UpdateStatus(ctx, order.ID, order.Status); err != nil {
			s.logger.Warn("Failed to update sales ledger status", zap.Int("order_id", order.ID), zap.Error(err))
		}
	}

	if err := s.notifier.NotifyStatusChange(ctx, req.Email, order); err != nil {
		s.logger.Error("Order status changed but customer was not notified",
			zap.Int("order_id", order.ID),
			zap.String("status", order.Status),
			zap.Error(err))
		return order, fmt.Errorf("%w: order %d is now %s: %v", ErrNotifyFailed, order.ID, order.Status, err)
	}

	s.logger.Info("Order status changed",
		zap.Int("order_id", order.ID),
		zap.String("status", order.Status))
	return order, nil
}
