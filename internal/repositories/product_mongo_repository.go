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

const productCollectionName = "products"

// productDocument is the stored shape of a product; the store owns the ObjectID encoding.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Code        string             `bson:"code"`
	Price       float64            `bson:"price"`
	Stock       int                `bson:"stock"`
	Category    string             `bson:"category"`
	Status      bool               `bson:"status"`
	Thumbnails  []string           `bson:"thumbnails"`
	Specs       map[string]any     `bson:"specs"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func productToDocument(p *models.Product) (productDocument, error) {
	doc := productDocument{
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Status:      p.Status,
		Thumbnails:  p.Thumbnails,
		Specs:       p.Specs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.ID != "" {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return doc, fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d productDocument) toModel() models.Product {
	thumbnails := d.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}
	return models.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Code:        d.Code,
		Price:       d.Price,
		Stock:       d.Stock,
		Category:    d.Category,
		Status:      d.Status,
		Thumbnails:  thumbnails,
		Specs:       d.Specs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a repository over the products collection.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection(productCollectionName)}
}

// GetAll returns all products ordered by ObjectID, i.e. insertion order.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

// GetByID returns a product by its hex ObjectID. Malformed ids are reported as not found.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

// GetByCode returns a product by its code.
func (r *MongoProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"code": code}, code)
}

func (r *MongoProductRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.Product, error) {
	var doc productDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	p := doc.toModel()
	return &p, nil
}

// Create inserts a product and sets its ID to the generated ObjectID.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	stampCreated(&product.CreatedAt, &product.UpdatedAt)
	// Ids minted by other stores are not ObjectIDs; the document store assigns its own.
	doc, err := productToDocument(product)
	if err != nil || doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product code %s: %w", product.Code, ErrDuplicateCode)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	product.ID = doc.ID.Hex()
	return nil
}

// Update replaces the stored document.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	doc, err := productToDocument(product)
	if err != nil {
		return err
	}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product code %s: %w", product.Code, ErrDuplicateCode)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a product and returns the removed document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	var doc productDocument
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	p := doc.toModel()
	return &p, nil
}
