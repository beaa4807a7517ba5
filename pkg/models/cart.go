package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ProductID int `bson:"id_producto" json:"id_producto"`
	Quantity  int `bson:"cantidad" json:"cantidad"`
}

// Cart is a user's shopping session. Active marks the single in-progress
// cart per uid; retired carts keep their items for history.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID       string             `bson:"uid" json:"uid"`
	Active    bool               `bson:"estado" json:"estado"`
	Total     float64            `bson:"monto_total" json:"monto_total"`
	Items     []CartItem         `bson:"productos" json:"productos"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func NewCart(uid string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UID:       uid,
		Active:    true,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Item returns the index of the line for productID, or -1.
func (c *Cart) Item(productID int) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
