package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *MongoRepository) FindActiveCart(ctx context.Context, uid string) (*models.Cart, error) {
	var cart models.Cart
	err := m.database.Collection(colCarts).FindOne(ctx, activeCartFilter(uid)).Decode(&cart)
	if err != nil {
		return nil, notFound(err, "active cart for "+uid)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (m *MongoRepository) InsertCart(ctx context.Context, cart *models.Cart) error {
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	if _, err := m.database.Collection(colCarts).InsertOne(ctx, cart); err != nil {
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	return nil
}

// UpdateCartItems persists the line items and running total of cart.
func (m *MongoRepository) UpdateCartItems(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	res, err := m.database.Collection(colCarts).UpdateOne(ctx, bson.M{"_id": cart.ID}, cartItemsUpdate(cart))
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart %s: %w", cart.ID.Hex(), ErrNotFound)
	}
	return nil
}

// RetireCart flips estado to false. Retiring an already retired cart is a conflict.
func (m *MongoRepository) RetireCart(ctx context.Context, id primitive.ObjectID) error {
	filter, update := retireCartQuery(id, time.Now().UTC())
	res, err := m.database.Collection(colCarts).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to retire cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart %s is not active: %w", id.Hex(), ErrConflict)
	}
	return nil
}
