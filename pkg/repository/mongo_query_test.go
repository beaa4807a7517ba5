package repository

import (
	"testing"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProductUpdateDoc(t *testing.T) {
	price, sale, zero, stock := 120.0, 99.0, 0.0, 7

	tests := []struct {
		name string
		in   models.ProductUpdate
		want bson.M
	}{
		{
			name: "nothing to change",
			in:   models.ProductUpdate{},
			want: nil,
		},
		{
			name: "price and stock",
			in:   models.ProductUpdate{NormalPrice: &price, Stock: &stock},
			want: bson.M{"$set": bson.M{"precio_normal": price, "cantidad": stock}},
		},
		{
			name: "new sale price",
			in:   models.ProductUpdate{SalePrice: &sale},
			want: bson.M{"$set": bson.M{"precio_rebajado": sale}},
		},
		{
			name: "clear sale price",
			in:   models.ProductUpdate{ClearSalePrice: true},
			want: bson.M{"$unset": bson.M{"precio_rebajado": ""}},
		},
		{
			name: "clear with stock",
			in:   models.ProductUpdate{ClearSalePrice: true, Stock: &stock},
			want: bson.M{
				"$set":   bson.M{"cantidad": stock},
				"$unset": bson.M{"precio_rebajado": ""},
			},
		},
		{
			name: "sale price wins over clear",
			in:   models.ProductUpdate{SalePrice: &zero, ClearSalePrice: true},
			want: bson.M{"$set": bson.M{"precio_rebajado": zero}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productUpdateDoc(tt.in))
		})
	}
}

func TestDecrementStockQuery(t *testing.T) {
	filter, update := decrementStockQuery(5, 2)
	assert.Equal(t, bson.M{"_id": 5, "cantidad": bson.M{"$gte": 2}}, filter)
	assert.Equal(t, bson.M{"$inc": bson.M{"cantidad": -2}}, update)
}

func TestRetireCartQuery(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	filter, update := retireCartQuery(id, now)
	assert.Equal(t, bson.M{"_id": id, "estado": true}, filter)
	assert.Equal(t, bson.M{"$set": bson.M{"estado": false, "updated_at": now}}, update)
}

func TestCartQueries(t *testing.T) {
	assert.Equal(t, bson.M{"uid": "u1", "estado": true}, activeCartFilter("u1"))

	cart := &models.Cart{
		Items: []models.CartItem{{ProductID: 1, Quantity: 2}},
		Total: 200,
	}
	set := cartItemsUpdate(cart)["$set"].(bson.M)
	assert.Equal(t, cart.Items, set["productos"])
	assert.Equal(t, 200.0, set["monto_total"])
}

func TestProductListFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, productListFilter(models.ProductFilter{}))

	cat := 3
	assert.Equal(t, bson.M{"id_categoria": 3}, productListFilter(models.ProductFilter{CategoryID: &cat}))
}

func TestOrderStatusUpdate(t *testing.T) {
	shipped := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, bson.M{"$set": bson.M{"estado": "pendiente"}},
		orderStatusUpdate(models.StatusChange{Status: "pendiente"}))
	assert.Equal(t, bson.M{"$set": bson.M{"estado": "enviado", "fecha_envio": &shipped}},
		orderStatusUpdate(models.StatusChange{Status: "enviado", ShippedAt: &shipped}))
}
