package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/tienda/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	colProducts = "productos"
	colCarts    = "carritos"
	colOrders   = "pedidos"
	colUsers    = "usuarios"
	colFAQ      = "faq"
	colPosts    = "posts"
	colCounters = "contadores"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the secondary indexes the queries rely on.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	carts := m.database.Collection(colCarts)
	if _, err := carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}, {Key: "estado", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to index carts: %w", err)
	}

	orders := m.database.Collection(colOrders)
	if _, err := orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}, {Key: "fecha_pedido", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to index orders: %w", err)
	}

	products := m.database.Collection(colProducts)
	if _, err := products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id_categoria", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to index products: %w", err)
	}
	return nil
}

// WithTransaction runs fn in a multi-document transaction. Every repository
// call made with the context handed to fn joins the transaction. The driver
// may invoke fn more than once on transient errors.
func (m *MongoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

type counterDoc struct {
	ID        string `bson:"_id"`
	CurrentID int    `bson:"currentID"`
}

// NextID atomically increments the entity's counter document and returns
// the new value. The first call for an entity returns 1.
func (m *MongoRepository) NextID(ctx context.Context, entity string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := m.database.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": entity},
		bson.M{"$inc": bson.M{"currentID": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s counter: %w", entity, err)
	}
	return doc.CurrentID, nil
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        string    `bson:"_id,omitempty"`
	Service   string    `bson:"service"`
	Action    string    `bson:"action"`
	EntityID  string    `bson:"entity_id"`
	Data      bson.M    `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	collection := m.database.Collection(m.config.AuditCollection)
	log.CreatedAt = time.Now()
	_, err := collection.InsertOne(ctx, log)
	return err
}

// Audit adapts CreateAuditLog to the shop's auditor contract.
func (m *MongoRepository) Audit(ctx context.Context, action, entityID string, data map[string]interface{}) error {
	return m.CreateAuditLog(ctx, &AuditLog{
		Service:  "tienda-api",
		Action:   action,
		EntityID: entityID,
		Data:     bson.M(data),
	})
}

// notFound maps the driver's no-documents error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
