package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tienda/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoRepository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := m.database.Collection(colUsers).FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		return nil, notFound(err, "user "+uid)
	}
	return &u, nil
}

func (m *MongoRepository) InsertUser(ctx context.Context, u *models.User) error {
	if _, err := m.database.Collection(colUsers).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", u.UID, ErrConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (m *MongoRepository) UpdateUser(ctx context.Context, uid string, u models.UserUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.FirstNames != nil {
		set["nombres"] = *u.FirstNames
	}
	if u.LastNames != nil {
		set["apellidos"] = *u.LastNames
	}
	if u.Phone != nil {
		set["telefono"] = *u.Phone
	}
	if u.Photo != nil {
		set["foto_perfil"] = *u.Photo
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.User
	if err := m.database.Collection(colUsers).FindOneAndUpdate(ctx, bson.M{"_id": uid}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		return nil, notFound(err, "user "+uid)
	}
	return &out, nil
}

// AttachOrder records a placed order on the user and points carrito_activo
// at the replacement cart.
func (m *MongoRepository) AttachOrder(ctx context.Context, uid string, orderID int, cartID string) error {
	res, err := m.database.Collection(colUsers).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{
			"$push": bson.M{"pedidos": orderID},
			"$set":  bson.M{"carrito_activo": cartID, "updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to attach order to user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	return nil
}
