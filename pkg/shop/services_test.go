package shop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"github.com/example/tienda/pkg/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNotifier struct {
	err  error
	sent []string
}

func (n *fakeNotifier) NotifyStatusChange(_ context.Context, to string, _ *models.Order) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, to)
	return nil
}

func placedOrder(t *testing.T, f *fixture) *models.Order {
	t.Helper()
	ctx := context.Background()
	f.addProduct(t, models.Product{ID: 1, NormalPrice: 100, Stock: 5})
	_, err := f.carts.ActiveCart(ctx, "u1")
	require.NoError(t, err)
	_, err = f.carts.UpdateItem(ctx, UpdateCartRequest{UID: "u1", ProductID: intPtr(1), Quantity: intPtr(1)})
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, orderRequest("u1"))
	require.NoError(t, err)
	return order
}

func TestChangeStatusShipped(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t, f)
	notifier := &fakeNotifier{}
	ledger := &recordingLedger{}
	svc := NewNotifyService(f.store, notifier, ledger, zap.NewNop())
	shippedAt := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return shippedAt }

	updated, err := svc.ChangeStatus(context.Background(), StatusChangeRequest{
		Email:   "u1@example.com",
		Status:  models.OrderStatusShipped,
		OrderID: intPtr(order.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	require.NotNil(t, updated.ShippedAt)
	assert.True(t, shippedAt.Equal(*updated.ShippedAt))
	assert.Nil(t, updated.DeliveredAt)
	assert.Equal(t, []string{"u1@example.com"}, notifier.sent)
	assert.Equal(t, models.OrderStatusShipped, ledger.statuses[order.ID])
}

func TestChangeStatusAcceptsAnyString(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t, f)
	svc := NewNotifyService(f.store, &fakeNotifier{}, nil, zap.NewNop())

	updated, err := svc.ChangeStatus(context.Background(), StatusChangeRequest{
		Email: "u1@example.com", Status: "cancelado", OrderID: intPtr(order.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelado", updated.Status)
	assert.Nil(t, updated.ShippedAt)
}

func TestChangeStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)
	notifier := &fakeNotifier{}
	svc := NewNotifyService(f.store, notifier, nil, zap.NewNop())

	_, err := svc.ChangeStatus(context.Background(), StatusChangeRequest{
		Email: "u1@example.com", Status: models.OrderStatusShipped, OrderID: intPtr(42),
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, notifier.sent)
}

func TestChangeStatusEmailFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t, f)
	svc := NewNotifyService(f.store, &fakeNotifier{err: errors.New("relay down")}, nil, zap.NewNop())

	_, err := svc.ChangeStatus(context.Background(), StatusChangeRequest{
		Email: "u1@example.com", Status: models.OrderStatusDelivered, OrderID: intPtr(order.ID),
	})
	assert.ErrorIs(t, err, ErrNotifyFailed)

	stored, err := f.store.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, stored.Status)
	assert.NotNil(t, stored.DeliveredAt)
}

type mapCache struct {
	products    map[int]models.Product
	invalidated []int
}

func (c *mapCache) GetProduct(_ context.Context, id int) (*models.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return &p, nil
}

func (c *mapCache) SetProduct(_ context.Context, p *models.Product) error {
	c.products[p.ID] = *p
	return nil
}

func (c *mapCache) InvalidateProduct(_ context.Context, id int) error {
	delete(c.products, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func TestCatalogReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	cache := &mapCache{products: map[int]models.Product{}}
	catalog := NewCatalogService(f.store, cache, zap.NewNop())
	ctx := context.Background()

	p, err := catalog.AddProduct(ctx, ProductRequest{Name: "Taza", NormalPrice: 100, Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)

	_, err = catalog.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.products, p.ID)

	updated, err := catalog.UpdateProduct(ctx, p.ID, ProductUpdateRequest{SalePrice: floatPtr(80), Stock: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.EffectivePrice())
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, []int{p.ID}, cache.invalidated)
	assert.NotContains(t, cache.products, p.ID)

	cleared, err := catalog.UpdateProduct(ctx, p.ID, ProductUpdateRequest{SalePrice: floatPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, cleared.SalePrice)
	assert.Equal(t, 100.0, cleared.EffectivePrice())

	require.NoError(t, catalog.DeleteProduct(ctx, p.ID))
	_, err = catalog.Product(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrderInvalidatesCachedStock(t *testing.T) {
	store := memory.NewStore()
	cache := &mapCache{products: map[int]models.Product{}}
	catalog := NewCatalogService(store, cache, zap.NewNop())
	carts := NewCartService(store, catalog, zap.NewNop())
	orders := NewOrderService(store, carts, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.InsertProduct(ctx, &models.Product{ID: 5, NormalPrice: 50, Stock: 3}))
	_, err := carts.ActiveCart(ctx, "u1")
	require.NoError(t, err)
	_, err = carts.UpdateItem(ctx, UpdateCartRequest{UID: "u1", ProductID: intPtr(5), Quantity: intPtr(2)})
	require.NoError(t, err)

	cached, err := catalog.Product(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.Stock)

	_, err = orders.PlaceOrder(ctx, orderRequest("u1"))
	require.NoError(t, err)

	stored, err := store.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)
	assert.Contains(t, cache.invalidated, 5)

	served, err := catalog.Product(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, served.Stock)
}

func TestCatalogListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Products(ctx, models.ProductFilter{})
	assert.ErrorIs(t, err, ErrNotFound)

	f.addProduct(t, models.Product{ID: 1, NormalPrice: 10, CategoryID: 1})
	f.addProduct(t, models.Product{ID: 2, NormalPrice: 10, CategoryID: 2})

	all, err := f.catalog.Products(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cat := 2
	filtered, err := f.catalog.Products(ctx, models.ProductFilter{CategoryID: &cat})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].ID)

	_, err = f.catalog.UpdateProduct(ctx, 99, ProductUpdateRequest{Stock: intPtr(1)})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, 99), ErrProductNotFound)
}

func TestContentLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewContentService(f.store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.FAQ(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	q, err := svc.AddFAQ(ctx, FAQRequest{Question: "¿Hacen envíos?", Answer: "Sí, a todo el país."})
	require.NoError(t, err)
	assert.Equal(t, 1, q.ID)

	got, err := svc.FAQEntry(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Question, got.Question)

	require.NoError(t, svc.DeleteFAQ(ctx, q.ID))
	assert.ErrorIs(t, svc.DeleteFAQ(ctx, q.ID), ErrNotFound)

	post, err := svc.AddPost(ctx, PostRequest{Title: "Nueva colección", Body: "Ya disponible."})
	require.NoError(t, err)
	assert.False(t, post.PublishedAt.IsZero())

	posts, err := svc.Posts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = svc.Post(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddPost(ctx, PostRequest{Title: "Sin cuerpo"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, created, err := f.users.Register(ctx, RegisterRequest{UID: "u1", Email: "u1@example.com", FirstNames: "Ana"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, user.ActiveCart)
	assert.Equal(t, []int{}, user.Orders)

	cart, err := f.carts.ActiveCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user.ActiveCart, cart.ID.Hex())

	again, created, err := f.users.Register(ctx, RegisterRequest{UID: "u1", Email: "other@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "u1@example.com", again.Email)
	assert.Len(t, f.store.CartsByUID("u1"), 1)
}

func TestUserProfileAndAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.IsAdmin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = f.users.Register(ctx, RegisterRequest{UID: "u1", Email: "u1@example.com"})
	require.NoError(t, err)

	admin, err := f.users.IsAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, admin)

	phone := "8112345678"
	u, err := f.users.UpdateProfile(ctx, "u1", UpdateUserRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)

	_, err = f.users.UpdateProfile(ctx, "nobody", UpdateUserRequest{Phone: &phone})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
