package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartDocument keeps prices as decimal strings; decimal.Decimal has no bson codec.
type cartDocument struct {
	UserID    string         `bson:"user_id"`
	Items     []itemDocument `bson:"items"`
	Version   int64          `bson:"version"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type itemDocument struct {
	ProductID  string    `bson:"product_id"`
	VendorID   string    `bson:"vendor_id"`
	Name       string    `bson:"name"`
	UnitPrice  string    `bson:"unit_price"`
	OfferPrice *string   `bson:"offer_price,omitempty"`
	Quantity   int       `bson:"quantity"`
	AddedAt    time.Time `bson:"added_at"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var doc cartDocument

	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return fromDocument(&doc)
}

func (m *mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	// The first write matches only a missing (or pre-versioning) document; an
	// existing versioned one makes the upsert collide on the unique user_id.
	filter := bson.M{"user_id": cart.UserID, "version": bson.M{"$exists": false}}
	if cart.Version > 1 {
		filter = bson.M{"user_id": cart.UserID, "version": cart.Version - 1}
	}
	update := bson.M{"$set": toDocument(cart)}
	opts := options.Update().SetUpsert(cart.Version <= 1)

	result, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return ErrCartConflict
	}
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return ErrCartConflict
	}
	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // abandoned carts expire after 90 days
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func toDocument(cart *domain.Cart) cartDocument {
	doc := cartDocument{
		UserID:    cart.UserID,
		Items:     make([]itemDocument, len(cart.Items)),
		Version:   cart.Version,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for i, item := range cart.Items {
		d := itemDocument{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		}
		if item.OfferPrice != nil {
			offer := item.OfferPrice.String()
			d.OfferPrice = &offer
		}
		doc.Items[i] = d
	}
	return doc
}

func fromDocument(doc *cartDocument) (*domain.Cart, error) {
	cart := &domain.Cart{
		UserID:    doc.UserID,
		Items:     make([]domain.CartLineItem, 0, len(doc.Items)),
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, d := range doc.Items {
		unit, err := decimal.NewFromString(d.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price for product %s: %w", d.ProductID, err)
		}
		item := domain.CartLineItem{
			ProductID: d.ProductID,
			VendorID:  d.VendorID,
			Name:      d.Name,
			UnitPrice: unit,
			Quantity:  d.Quantity,
			AddedAt:   d.AddedAt,
		}
		if d.OfferPrice != nil {
			offer, err := decimal.NewFromString(*d.OfferPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid offer price for product %s: %w", d.ProductID, err)
			}
			item.OfferPrice = &offer
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}
