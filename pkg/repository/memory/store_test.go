package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIDIsSequentialPerEntity(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		id, err := s.NextID(ctx, models.CounterOrders)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	id, err := s.NextID(ctx, models.CounterProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestCartLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	cart := models.NewCart("u1")
	require.NoError(t, s.InsertCart(ctx, cart))
	assert.False(t, cart.ID.IsZero())

	cart.Items = append(cart.Items, models.CartItem{ProductID: 1, Quantity: 2})
	cart.Total = 20
	require.NoError(t, s.UpdateCartItems(ctx, cart))

	// Callers hold copies.
	cart.Items[0].Quantity = 99

	active, err := s.FindActiveCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, active.Items[0].Quantity)
	assert.Equal(t, 20.0, active.Total)

	require.NoError(t, s.RetireCart(ctx, cart.ID))
	assert.ErrorIs(t, s.RetireCart(ctx, cart.ID), repository.ErrConflict)

	_, err = s.FindActiveCart(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDecrementStockIsConditional(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.InsertProduct(ctx, &models.Product{ID: 1, Stock: 2}))

	require.NoError(t, s.DecrementStock(ctx, 1, 2))
	assert.ErrorIs(t, s.DecrementStock(ctx, 1, 1), repository.ErrConflict)
	assert.ErrorIs(t, s.DecrementStock(ctx, 2, 1), repository.ErrConflict)

	p, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestTransactionRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.InsertProduct(ctx, &models.Product{ID: 1, Stock: 5}))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.NextID(ctx, models.CounterOrders); err != nil {
			return err
		}
		if err := s.DecrementStock(ctx, 1, 3); err != nil {
			return err
		}
		if err := s.InsertOrder(ctx, &models.Order{ID: 1, UID: "u1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	_, err = s.GetOrder(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	id, err := s.NextID(ctx, models.CounterOrders)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestRollbackKeepsWritesOutsideTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.InsertProduct(ctx, &models.Product{ID: 1, Stock: 5}))
	other := models.NewCart("u2")
	require.NoError(t, s.InsertCart(ctx, other))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.NextID(txCtx, models.CounterOrders); err != nil {
			return err
		}
		if err := s.DecrementStock(txCtx, 1, 2); err != nil {
			return err
		}

		// Concurrent writers use their own context.
		other.Items = []models.CartItem{{ProductID: 1, Quantity: 4}}
		other.Total = 40
		if err := s.UpdateCartItems(ctx, other); err != nil {
			return err
		}
		if err := s.InsertProduct(ctx, &models.Product{ID: 2, Stock: 1}); err != nil {
			return err
		}
		if _, err := s.NextID(ctx, models.CounterOrders); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	_, err = s.GetProduct(ctx, 2)
	assert.NoError(t, err)

	cart, err := s.FindActiveCart(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 40.0, cart.Total)
	assert.Len(t, cart.Items, 1)

	id, err := s.NextID(ctx, models.CounterOrders)
	require.NoError(t, err)
	assert.Equal(t, 3, id, "ids handed out outside the transaction are never reused")
}

func TestAttachOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	assert.ErrorIs(t, s.AttachOrder(ctx, "u1", 1, "c1"), repository.ErrNotFound)

	require.NoError(t, s.InsertUser(ctx, &models.User{UID: "u1", Orders: []int{}}))
	require.NoError(t, s.AttachOrder(ctx, "u1", 1, "c2"))
	require.NoError(t, s.AttachOrder(ctx, "u1", 2, "c3"))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, u.Orders)
	assert.Equal(t, "c3", u.ActiveCart)
}
