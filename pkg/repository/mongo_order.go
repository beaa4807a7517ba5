package repository

import (
	"context"
	"fmt"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoRepository) InsertOrder(ctx context.Context, order *models.Order) error {
	if _, err := m.database.Collection(colOrders).InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	if err := m.database.Collection(colOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, notFound(err, fmt.Sprintf("order %d", id))
	}
	return &order, nil
}

func (m *MongoRepository) ListOrdersByUID(ctx context.Context, uid string) ([]*models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha_pedido", Value: -1}})
	return findAll[models.Order](ctx, m.database.Collection(colOrders), bson.M{"uid": uid}, opts)
}

func (m *MongoRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha_pedido", Value: -1}})
	return findAll[models.Order](ctx, m.database.Collection(colOrders), bson.M{}, opts)
}

func (m *MongoRepository) UpdateOrderStatus(ctx context.Context, id int, change models.StatusChange) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err := m.database.Collection(colOrders).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		orderStatusUpdate(change),
		opts,
	).Decode(&order)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("order %d", id))
	}
	return &order, nil
}
