package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PlaceOrderRequest struct {
	UID           string `json:"uid" binding:"required"`
	PostalCode    string `json:"codigo_postal" binding:"required"`
	State         string `json:"estado" binding:"required"`
	City          string `json:"ciudad" binding:"required"`
	Street        string `json:"calle" binding:"required"`
	Interior      string `json:"numero_interior" binding:"required"`
	Country       string `json:"pais" binding:"required"`
	Neighborhood  string `json:"colonia" binding:"required"`
	PaymentMethod string `json:"metodo_pago" binding:"required"`
}

func (r PlaceOrderRequest) validate() error {
	fields := map[string]string{
		"uid":             r.UID,
		"codigo_postal":   r.PostalCode,
		"estado":          r.State,
		"ciudad":          r.City,
		"calle":           r.Street,
		"numero_interior": r.Interior,
		"pais":            r.Country,
		"colonia":         r.Neighborhood,
		"metodo_pago":     r.PaymentMethod,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
		}
	}
	return nil
}

type OrderService struct {
	store  Store
	carts  *CartService
	ledger SalesRecorder
	logger *zap.Logger
	now    func() time.Time
}

type OrderOption func(*OrderService)

func WithSalesRecorder(r SalesRecorder) OrderOption {
	return func(s *OrderService) {
		s.ledger = r
	}
}

func NewOrderService(store Store, carts *CartService, logger *zap.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		store:  store,
		carts:  carts,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder turns the uid's active cart into a pending order. Every check
// runs before the first write, and the writes commit as one transaction:
// stock decrement, order insert, cart retirement, the replacement cart and
// the user's order history.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.cartFor(ctx, req.UID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: uid %s", ErrEmptyCart, req.UID)
	}

	lines := make([]models.OrderLine, 0, len(cart.Items))
	total := decimal.Zero
	for _, item := range cart.Items {
		p, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if p.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: product %d has %d, requested %d",
				ErrInsufficientStock, p.ID, p.Stock, item.Quantity)
		}

		price := p.EffectivePrice()
		lines = append(lines, models.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     price,
			Quantity:  item.Quantity,
		})
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := &models.Order{
		UID: req.UID,
		Address: models.Address{
			PostalCode:   req.PostalCode,
			State:        req.State,
			City:         req.City,
			Street:       req.Street,
			Interior:     req.Interior,
			Country:      req.Country,
			Neighborhood: req.Neighborhood,
		},
		PlacedAt:      s.now().UTC(),
		Status:        models.OrderStatusPending,
		Total:         total.Round(2).InexactFloat64(),
		PaymentMethod: req.PaymentMethod,
		Lines:         lines,
	}

	var fresh *models.Cart
	err = s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := s.store.NextID(txCtx, models.CounterOrders)
		if err != nil {
			return err
		}
		order.ID = id

		for _, line := range order.Lines {
			if err := s.store.DecrementStock(txCtx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("%w: product %d", ErrInsufficientStock, line.ProductID)
				}
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		if err := s.store.InsertOrder(txCtx, order); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		if err := s.store.RetireCart(txCtx, cart.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: cart already checked out", ErrCartNotFound)
			}
			return fmt.Errorf("failed to retire cart: %w", err)
		}

		fresh = models.NewCart(req.UID)
		if err := s.store.InsertCart(txCtx, fresh); err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}

		err = s.store.AttachOrder(txCtx, req.UID, order.ID, fresh.ID.Hex())
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to attach order to user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Order placement rolled back", zap.String("uid", req.UID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.Int("order_id", order.ID),
		zap.String("uid", order.UID),
		zap.Float64("total", order.Total),
		zap.String("new_cart_id", fresh.ID.Hex()))

	for _, line := range order.Lines {
		s.carts.catalog.invalidate(ctx, line.ProductID)
	}

	if s.ledger != nil {
		if err := s.ledger.RecordOrder(ctx, order); err != nil {
			s.logger.Warn("Failed to record order in sales ledger", zap.Int("order_id", order.ID), zap.Error(err))
		}
	}
	if err := s.store.Audit(ctx, "order.placed", fmt.Sprint(order.ID), map[string]interface{}{
		"uid":     order.UID,
		"total":   order.Total,
		"cart_id": cart.ID.Hex(),
	}); err != nil {
		s.logger.Warn("Failed to write audit log", zap.Int("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

func (s *OrderService) OrdersByUID(ctx context.Context, uid string) ([]*models.Order, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	orders, err := s.store.ListOrdersByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no orders for uid %s", ErrOrderNotFound, uid)
	}
	return orders, nil
}

func (s *OrderService) AllOrders(ctx context.Context) ([]*models.Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no orders", ErrOrderNotFound)
	}
	return orders, nil
}
