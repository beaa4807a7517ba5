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

// MissingCartPolicy decides how cart updates and checkout treat a uid
// without an active cart.
type MissingCartPolicy string

const (
	MissingCartError  MissingCartPolicy = "error"
	MissingCartCreate MissingCartPolicy = "create"
)

const lockRetryInterval = 50 * time.Millisecond

type UpdateCartRequest struct {
	UID       string `json:"uid" binding:"required"`
	ProductID *int   `json:"id_producto" binding:"required"`
	Quantity  *int   `json:"cantidad" binding:"required"`
}

type CartService struct {
	store   Store
	catalog *CatalogService
	locker  Locker
	lockTTL time.Duration
	policy  MissingCartPolicy
	logger  *zap.Logger
}

type CartOption func(*CartService)

// WithLocker serialises updates of one uid's cart through l.
func WithLocker(l Locker, ttl time.Duration) CartOption {
	return func(s *CartService) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithMissingCartPolicy(p MissingCartPolicy) CartOption {
	return func(s *CartService) {
		s.policy = p
	}
}

func NewCartService(store Store, catalog *CatalogService, logger *zap.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		store:   store,
		catalog: catalog,
		lockTTL: 5 * time.Second,
		policy:  MissingCartError,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveCart returns the uid's active cart, creating an empty one if none
// exists. It never reports a missing cart.
func (s *CartService) ActiveCart(ctx context.Context, uid string) (*models.Cart, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}

	cart, err := s.store.FindActiveCart(ctx, uid)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to find active cart: %w", err)
	}

	cart = models.NewCart(uid)
	if err := s.store.InsertCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	s.logger.Info("Created active cart",
		zap.String("uid", uid),
		zap.String("cart_id", cart.ID.Hex()))
	return cart, nil
}

// cartFor looks up the active cart under the configured missing-cart policy.
func (s *CartService) cartFor(ctx context.Context, uid string) (*models.Cart, error) {
	if s.policy == MissingCartCreate {
		return s.ActiveCart(ctx, uid)
	}
	cart, err := s.store.FindActiveCart(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w for uid %s", ErrCartNotFound, uid)
		}
		return nil, fmt.Errorf("failed to find active cart: %w", err)
	}
	return cart, nil
}

// UpdateItem applies a signed quantity change for one product to the uid's
// active cart and persists the result.
func (s *CartService) UpdateItem(ctx context.Context, req UpdateCartRequest) (*models.Cart, error) {
	uid := strings.TrimSpace(req.UID)
	if uid == "" || req.ProductID == nil || req.Quantity == nil {
		return nil, fmt.Errorf("%w: uid, id_producto and cantidad are required", ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, uid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cart, err := s.cartFor(ctx, uid)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.Product(ctx, *req.ProductID)
	if err != nil {
		return nil, err
	}

	ApplyDelta(cart, product.ID, *req.Quantity, product.EffectivePrice())

	if err := s.store.UpdateCartItems(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	s.logger.Debug("Cart updated",
		zap.String("uid", uid),
		zap.Int("product_id", product.ID),
		zap.Int("delta", *req.Quantity),
		zap.Float64("total", cart.Total))
	return cart, nil
}

// ApplyDelta changes the quantity of productID by delta at the given unit
// price. A line reaching zero or less is removed, and the total moves by the
// quantity actually added or removed. A non-positive delta for a product not
// in the cart is a no-op.
func ApplyDelta(cart *models.Cart, productID, delta int, price float64) {
	i := cart.Item(productID)

	applied := delta
	switch {
	case i < 0 && delta <= 0:
		return
	case i < 0:
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: delta})
	default:
		qty := cart.Items[i].Quantity + delta
		if qty <= 0 {
			applied = -cart.Items[i].Quantity
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = qty
		}
	}

	total := decimal.NewFromFloat(cart.Total).
		Add(decimal.NewFromInt(int64(applied)).Mul(decimal.NewFromFloat(price)))
	if total.IsNegative() || len(cart.Items) == 0 {
		total = decimal.Zero
	}
	cart.Total = total.Round(2).InexactFloat64()
}

func (s *CartService) lock(ctx context.Context, uid string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	deadline := time.Now().Add(s.lockTTL)
	for {
		unlock, err := s.locker.Lock(ctx, "cart:"+uid, s.lockTTL)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, repository.ErrLocked) {
			// Lock backend down: carry on unlocked rather than refuse carts.
			s.logger.Warn("Cart lock unavailable", zap.String("uid", uid), zap.Error(err))
			return func() {}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: uid %s", ErrCartBusy, uid)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
