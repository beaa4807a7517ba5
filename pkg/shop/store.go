package shop

import (
	"context"
	"time"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartStore interface {
	FindActiveCart(ctx context.Context, uid string) (*models.Cart, error)
	InsertCart(ctx context.Context, cart *models.Cart) error
	UpdateCartItems(ctx context.Context, cart *models.Cart) error
	RetireCart(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id int, u models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	DecrementStock(ctx context.Context, id, qty int) error
}

type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int) (*models.Order, error)
	ListOrdersByUID(ctx context.Context, uid string) ([]*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, change models.StatusChange) (*models.Order, error)
}

type UserStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, uid string, u models.UserUpdate) (*models.User, error)
	AttachOrder(ctx context.Context, uid string, orderID int, cartID string) error
}

type ContentStore interface {
	ListFAQ(ctx context.Context) ([]*models.FAQ, error)
	GetFAQ(ctx context.Context, id int) (*models.FAQ, error)
	InsertFAQ(ctx context.Context, f *models.FAQ) error
	DeleteFAQ(ctx context.Context, id int) error
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, id int) (*models.Post, error)
	InsertPost(ctx context.Context, p *models.Post) error
	DeletePost(ctx context.Context, id int) error
}

// Store is the document store the shop runs on. Implemented by
// repository.MongoRepository and memory.Store.
type Store interface {
	CartStore
	ProductStore
	OrderStore
	UserStore
	ContentStore

	// NextID hands out the next sequential id for an entity type.
	NextID(ctx context.Context, entity string) (int, error)
	// WithTransaction commits every write made through ctx inside fn
	// together, or none of them.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Audit(ctx context.Context, action, entityID string, data map[string]interface{}) error
}

type ProductCache interface {
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	SetProduct(ctx context.Context, p *models.Product) error
	InvalidateProduct(ctx context.Context, id int) error
}

type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// SalesRecorder mirrors orders into the analytics ledger.
type SalesRecorder interface {
	RecordOrder(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, orderID int, status string) error
}

// Notifier delivers order status emails.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, to string, order *models.Order) error
}
