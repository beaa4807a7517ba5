package repository

import (
	"time"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter and update documents shared by the Mongo store methods.

func activeCartFilter(uid string) bson.M {
	return bson.M{"uid": uid, "estado": true}
}

// retireCartQuery only matches a cart that is still active.
func retireCartQuery(id primitive.ObjectID, now time.Time) (filter, update bson.M) {
	filter = bson.M{"_id": id, "estado": true}
	update = bson.M{"$set": bson.M{"estado": false, "updated_at": now}}
	return filter, update
}

func cartItemsUpdate(cart *models.Cart) bson.M {
	return bson.M{"$set": bson.M{
		"productos":   cart.Items,
		"monto_total": cart.Total,
		"updated_at":  cart.UpdatedAt,
	}}
}

func productListFilter(filter models.ProductFilter) bson.M {
	q := bson.M{}
	if filter.CategoryID != nil {
		q["id_categoria"] = *filter.CategoryID
	}
	return q
}

// productUpdateDoc returns nil when u changes nothing. A new sale price wins
// over ClearSalePrice.
func productUpdateDoc(u models.ProductUpdate) bson.M {
	set := bson.M{}
	update := bson.M{}
	if u.NormalPrice != nil {
		set["precio_normal"] = *u.NormalPrice
	}
	if u.SalePrice != nil {
		set["precio_rebajado"] = *u.SalePrice
	}
	if u.Stock != nil {
		set["cantidad"] = *u.Stock
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	if u.ClearSalePrice && u.SalePrice == nil {
		update["$unset"] = bson.M{"precio_rebajado": ""}
	}
	if len(update) == 0 {
		return nil
	}
	return update
}

// decrementStockQuery matches only while at least qty units remain.
func decrementStockQuery(id, qty int) (filter, update bson.M) {
	filter = bson.M{"_id": id, "cantidad": bson.M{"$gte": qty}}
	update = bson.M{"$inc": bson.M{"cantidad": -qty}}
	return filter, update
}

func orderStatusUpdate(change models.StatusChange) bson.M {
	set := bson.M{"estado": change.Status}
	if change.ShippedAt != nil {
		set["fecha_envio"] = change.ShippedAt
	}
	if change.DeliveredAt != nil {
		set["fecha_entrega"] = change.DeliveredAt
	}
	return bson.M{"$set": set}
}
