package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartDocument struct {
	OwnerID   string            `bson:"owner_id"`
	Lines     []domain.CartLine `bson:"lines"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) CartStore {
	return &mongoStore{
		collection: db.Collection("carts"),
	}
}

func (m *mongoStore) Load(ctx context.Context, ownerID string) (domain.Cart, error) {
	empty := domain.Cart{OwnerID: ownerID}

	raw, err := m.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return empty, nil
		}
		// Transport and server errors must abort the caller's
		// load-mutate-save cycle, or the save would overwrite the cart.
		return empty, fmt.Errorf("failed to load cart: %w", err)
	}

	var doc cartDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		// Corrupt document: treat as an empty cart, never surface to the user.
		log.Printf("unreadable cart for owner %s, falling back to empty: %v", ownerID, err)
		return empty, nil
	}

	return domain.Cart{OwnerID: ownerID, Lines: doc.Lines}, nil
}

func (m *mongoStore) Save(ctx context.Context, cart domain.Cart) error {
	now := time.Now()

	filter := bson.M{"owner_id": cart.OwnerID}
	update := bson.M{
		"$set": bson.M{
			"owner_id":   cart.OwnerID,
			"lines":      cart.Lines,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (m *mongoStore) Delete(ctx context.Context, ownerID string) error {
	filter := bson.M{"owner_id": ownerID}

	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

// CreateIndexes sets up the unique owner index. Carts have no expiry:
// they survive until an order is placed or the owner clears them.
func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
