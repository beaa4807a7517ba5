// Package memory is a process-local document store with the same contract
// as the MongoDB repository. It backs local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditEntry struct {
	Action   string
	EntityID string
	Data     map[string]interface{}
}

type Store struct {
	mu sync.RWMutex
	// txMu serialises transactions; a failed transaction undoes only the
	// keys it wrote.
	txMu sync.Mutex

	carts    map[primitive.ObjectID]models.Cart
	orders   map[int]models.Order
	products map[int]models.Product
	users    map[string]models.User
	faq      map[int]models.FAQ
	posts    map[int]models.Post
	counters map[string]int
	audit    []AuditEntry
}

func NewStore() *Store {
	return &Store{
		carts:    make(map[primitive.ObjectID]models.Cart),
		orders:   make(map[int]models.Order),
		products: make(map[int]models.Product),
		users:    make(map[string]models.User),
		faq:      make(map[int]models.FAQ),
		posts:    make(map[int]models.Post),
		counters: make(map[string]int),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

type txKey struct{}

// txJournal holds the undo steps of the writes made with a transaction's
// context. Writes made with any other context are not journaled.
type txJournal struct {
	undo []func()
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &txJournal{}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// journal records undo for a write made under s.mu. It is a no-op outside
// a transaction.
func (s *Store) journal(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(txKey{}).(*txJournal); ok {
		j.undo = append(j.undo, undo)
	}
}

// restoreKey returns an undo step putting m[k] back to its current state.
func restoreKey[K comparable, V any](m map[K]V, k K) func() {
	prev, existed := m[k]
	return func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	}
}

func (s *Store) NextID(ctx context.Context, entity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[entity]++
	id := s.counters[entity]
	s.journal(ctx, func() {
		// A later allocation outside the transaction keeps the gap.
		if s.counters[entity] == id {
			s.counters[entity]--
		}
	})
	return id, nil
}

func (s *Store) Audit(_ context.Context, action, entityID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, AuditEntry{Action: action, EntityID: entityID, Data: data})
	return nil
}

func (s *Store) AuditEntries() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AuditEntry(nil), s.audit...)
}

// Carts

func copyCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c
}

func (s *Store) FindActiveCart(_ context.Context, uid string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.carts {
		if c.UID == uid && c.Active {
			return copyCart(c), nil
		}
	}
	return nil, fmt.Errorf("active cart for %s: %w", uid, repository.ErrNotFound)
}

func (s *Store) InsertCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	if _, ok := s.carts[cart.ID]; ok {
		return fmt.Errorf("cart %s: %w", cart.ID.Hex(), repository.ErrConflict)
	}
	s.journal(ctx, restoreKey(s.carts, cart.ID))
	s.carts[cart.ID] = *copyCart(*cart)
	return nil
}

func (s *Store) UpdateCartItems(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.carts[cart.ID]
	if !ok {
		return fmt.Errorf("cart %s: %w", cart.ID.Hex(), repository.ErrNotFound)
	}
	cart.UpdatedAt = time.Now().UTC()
	stored.Items = append([]models.CartItem{}, cart.Items...)
	stored.Total = cart.Total
	stored.UpdatedAt = cart.UpdatedAt
	s.journal(ctx, restoreKey(s.carts, cart.ID))
	s.carts[cart.ID] = stored
	return nil
}

func (s *Store) RetireCart(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.carts[id]
	if !ok || !stored.Active {
		return fmt.Errorf("cart %s is not active: %w", id.Hex(), repository.ErrConflict)
	}
	stored.Active = false
	stored.UpdatedAt = time.Now().UTC()
	s.journal(ctx, restoreKey(s.carts, id))
	s.carts[id] = stored
	return nil
}

// CartsByUID returns every cart of uid, active or retired.
func (s *Store) CartsByUID(uid string) []*models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Cart
	for _, c := range s.carts {
		if c.UID == uid {
			out = append(out, copyCart(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Orders

func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; ok {
		return fmt.Errorf("order %d: %w", order.ID, repository.ErrConflict)
	}
	o := *order
	o.Lines = append([]models.OrderLine{}, order.Lines...)
	s.journal(ctx, restoreKey(s.orders, order.ID))
	s.orders[order.ID] = o
	return nil
}

func (s *Store) GetOrder(_ context.Context, id int) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, repository.ErrNotFound)
	}
	return &o, nil
}

func (s *Store) ListOrdersByUID(_ context.Context, uid string) ([]*models.Order, error) {
	return s.listOrders(func(o models.Order) bool { return o.UID == uid }), nil
}

func (s *Store) ListOrders(_ context.Context) ([]*models.Order, error) {
	return s.listOrders(func(models.Order) bool { return true }), nil
}

func (s *Store) listOrders(keep func(models.Order) bool) []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Order{}
	for _, o := range s.orders {
		if keep(o) {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.After(out[j].PlacedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int, change models.StatusChange) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, repository.ErrNotFound)
	}
	o.Status = change.Status
	if change.ShippedAt != nil {
		o.ShippedAt = change.ShippedAt
	}
	if change.DeliveredAt != nil {
		o.DeliveredAt = change.DeliveredAt
	}
	s.journal(ctx, restoreKey(s.orders, id))
	s.orders[id] = o
	return &o, nil
}

// Products

func (s *Store) GetProduct(_ context.Context, id int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Product{}
	for _, p := range s.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("product %d: %w", p.ID, repository.ErrConflict)
	}
	s.journal(ctx, restoreKey(s.products, p.ID))
	s.products[p.ID] = *p
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int, u models.ProductUpdate) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	if u.NormalPrice != nil {
		p.NormalPrice = *u.NormalPrice
	}
	if u.SalePrice != nil {
		v := *u.SalePrice
		p.SalePrice = &v
	} else if u.ClearSalePrice {
		p.SalePrice = nil
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	s.journal(ctx, restoreKey(s.products, id))
	s.products[id] = p
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	s.journal(ctx, restoreKey(s.products, id))
	delete(s.products, id)
	return nil
}

func (s *Store) DecrementStock(ctx context.Context, id, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Stock < qty {
		return fmt.Errorf("product %d stock below %d: %w", id, qty, repository.ErrConflict)
	}
	s.journal(ctx, restoreKey(s.products, id))
	p.Stock -= qty
	s.products[id] = p
	return nil
}

// Users

func copyUser(u models.User) *models.User {
	u.Orders = append([]int{}, u.Orders...)
	return &u
}

func (s *Store) GetUser(_ context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", uid, repository.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) InsertUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.UID]; ok {
		return fmt.Errorf("user %s: %w", u.UID, repository.ErrConflict)
	}
	s.journal(ctx, restoreKey(s.users, u.UID))
	s.users[u.UID] = *copyUser(*u)
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, uid string, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", uid, repository.ErrNotFound)
	}
	if upd.FirstNames != nil {
		u.FirstNames = *upd.FirstNames
	}
	if upd.LastNames != nil {
		u.LastNames = *upd.LastNames
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Photo != nil {
		u.Photo = *upd.Photo
	}
	u.UpdatedAt = time.Now().UTC()
	s.journal(ctx, restoreKey(s.users, uid))
	s.users[uid] = u
	return copyUser(u), nil
}

func (s *Store) AttachOrder(ctx context.Context, uid string, orderID int, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return fmt.Errorf("user %s: %w", uid, repository.ErrNotFound)
	}
	s.journal(ctx, restoreKey(s.users, uid))
	u.Orders = append(append([]int{}, u.Orders...), orderID)
	u.ActiveCart = cartID
	u.UpdatedAt = time.Now().UTC()
	s.users[uid] = u
	return nil
}

// Content

func (s *Store) ListFAQ(context.Context) ([]*models.FAQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.FAQ{}
	for _, f := range s.faq {
		f := f
		out = append(out, &f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetFAQ(_ context.Context, id int) (*models.FAQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.faq[id]
	if !ok {
		return nil, fmt.Errorf("faq %d: %w", id, repository.ErrNotFound)
	}
	return &f, nil
}

func (s *Store) InsertFAQ(_ context.Context, f *models.FAQ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faq[f.ID] = *f
	return nil
}

func (s *Store) DeleteFAQ(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faq[id]; !ok {
		return fmt.Errorf("faq %d: %w", id, repository.ErrNotFound)
	}
	delete(s.faq, id)
	return nil
}

func (s *Store) ListPosts(context.Context) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Post{}
	for _, p := range s.posts {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (s *Store) GetPost(_ context.Context, id int) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, repository.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) InsertPost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = *p
	return nil
}

func (s *Store) DeletePost(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %d: %w", id, repository.ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}
