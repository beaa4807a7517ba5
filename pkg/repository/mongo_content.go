package repository

import (
	"context"
	"fmt"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoRepository) ListFAQ(ctx context.Context) ([]*models.FAQ, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.FAQ](ctx, m.database.Collection(colFAQ), bson.M{}, opts)
}

func (m *MongoRepository) GetFAQ(ctx context.Context, id int) (*models.FAQ, error) {
	var f models.FAQ
	if err := m.database.Collection(colFAQ).FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, notFound(err, fmt.Sprintf("faq %d", id))
	}
	return &f, nil
}

func (m *MongoRepository) InsertFAQ(ctx context.Context, f *models.FAQ) error {
	if _, err := m.database.Collection(colFAQ).InsertOne(ctx, f); err != nil {
		return fmt.Errorf("failed to insert faq: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeleteFAQ(ctx context.Context, id int) error {
	return m.deleteByID(ctx, colFAQ, id)
}

func (m *MongoRepository) ListPosts(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: -1}})
	return findAll[models.Post](ctx, m.database.Collection(colPosts), bson.M{}, opts)
}

func (m *MongoRepository) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var p models.Post
	if err := m.database.Collection(colPosts).FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err, fmt.Sprintf("post %d", id))
	}
	return &p, nil
}

func (m *MongoRepository) InsertPost(ctx context.Context, p *models.Post) error {
	if _, err := m.database.Collection(colPosts).InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeletePost(ctx context.Context, id int) error {
	return m.deleteByID(ctx, colPosts, id)
}

func (m *MongoRepository) deleteByID(ctx context.Context, collection string, id int) error {
	res, err := m.database.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %d: %w", collection, id, ErrNotFound)
	}
	return nil
}
