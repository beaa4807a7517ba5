package repository

import (
	"context"
	"fmt"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoRepository) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := m.database.Collection(colProducts).FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err, fmt.Sprintf("product %d", id))
	}
	return &p, nil
}

func (m *MongoRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.Product](ctx, m.database.Collection(colProducts), productListFilter(filter), opts)
}

func (m *MongoRepository) InsertProduct(ctx context.Context, p *models.Product) error {
	if _, err := m.database.Collection(colProducts).InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product %d: %w", p.ID, ErrConflict)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (m *MongoRepository) UpdateProduct(ctx context.Context, id int, u models.ProductUpdate) (*models.Product, error) {
	update := productUpdateDoc(u)
	if update == nil {
		return m.GetProduct(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := m.database.Collection(colProducts).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("product %d", id))
	}
	return &p, nil
}

func (m *MongoRepository) DeleteProduct(ctx context.Context, id int) error {
	res, err := m.database.Collection(colProducts).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// DecrementStock subtracts qty from the product's stock only while enough
// stock remains, so concurrent checkouts cannot oversell.
func (m *MongoRepository) DecrementStock(ctx context.Context, id, qty int) error {
	filter, update := decrementStockQuery(id, qty)
	res, err := m.database.Collection(colProducts).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %d stock below %d: %w", id, qty, ErrConflict)
	}
	return nil
}
