package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cannashop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartCollectionName = "carts"

type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Products  []models.CartItem  `bson:"products"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d cartDocument) toModel() models.Cart {
	items := d.Products
	if items == nil {
		items = []models.CartItem{}
	}
	return models.Cart{ID: d.ID.Hex(), Products: items, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository creates a repository over the carts collection.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection(cartCollectionName)}
}

// GetAll returns all carts.
func (r *MongoCartRepository) GetAll(ctx context.Context) ([]models.Cart, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []cartDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode carts: %w", err)
	}
	carts := make([]models.Cart, 0, len(docs))
	for _, d := range docs {
		carts = append(carts, d.toModel())
	}
	return carts, nil
}

// GetByID returns a cart by its hex ObjectID.
func (r *MongoCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
	}
	var doc cartDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	cart := doc.toModel()
	return &cart, nil
}

// Create inserts a cart and sets its ID to the generated ObjectID.
func (r *MongoCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	stampCreated(&cart.CreatedAt, &cart.UpdatedAt)
	if cart.Products == nil {
		cart.Products = []models.CartItem{}
	}
	doc := cartDocument{ID: primitive.NewObjectID(), Products: cart.Products, CreatedAt: cart.CreatedAt, UpdatedAt: cart.UpdatedAt}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	cart.ID = doc.ID.Hex()
	return nil
}

// Update replaces the stored cart document.
func (r *MongoCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	oid, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return fmt.Errorf("cart %s: %w", cart.ID, ErrNotFound)
	}
	doc := cartDocument{ID: oid, Products: cart.Products, CreatedAt: cart.CreatedAt, UpdatedAt: cart.UpdatedAt}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("cart %s: %w", cart.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a cart and returns it.
func (r *MongoCartRepository) Delete(ctx context.Context, id string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
	}
	var doc cartDocument
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}
	cart := doc.toModel()
	return &cart, nil
}
