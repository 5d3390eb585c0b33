// internal/store/mongo/mongo.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storefront-labs/storefront-api/internal/database"
	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

// Store implements store.Store on MongoDB. Every entity is its own document
// keyed by a uuid string; carts embed product ids, never product copies.
type Store struct {
	client   *mongodrv.Client
	products *mongodrv.Collection
	carts    *mongodrv.Collection
	users    *mongodrv.Collection
	tickets  *mongodrv.Collection
}

var _ store.Store = (*Store)(nil)

var emailCollation = &options.Collation{Locale: "en", Strength: 2}

func New(client *mongodrv.Client, db *mongodrv.Database) *Store {
	return &Store{
		client:   client,
		products: db.Collection(database.CollectionProducts),
		carts:    db.Collection(database.CollectionCarts),
		users:    db.Collection(database.CollectionUsers),
		tickets:  db.Collection(database.CollectionTickets),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return translate(s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongodrv.ErrNoDocuments):
		return store.ErrNotFound
	case mongodrv.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
}

// Products

func (s *Store) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) FindProducts(ctx context.Context, filter store.Filter, sort store.Sort, skip, limit int) ([]models.Product, error) {
	opts := options.Find().
		SetSort(buildSort(sort)).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := s.products.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, translate(err)
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *Store) CountProducts(ctx context.Context, filter store.Filter) (int64, error) {
	total, err := s.products.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *Store) FindProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	cursor, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err)
	}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Prepare(time.Now())
	if product.Thumbnails == nil {
		product.Thumbnails = []string{}
	}
	_, err := s.products.InsertOne(ctx, product)
	return translate(err)
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch store.ProductPatch) (*models.Product, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Thumbnails != nil {
		set["thumbnails"] = append([]string{}, (*patch.Thumbnails)...)
	}

	var product models.Product
	err := s.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DecrementStock relies on the single-document atomicity of
// findOneAndUpdate: the stock guard and the $inc apply together.
func (s *Store) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("invalid decrement quantity %d", qty)
	}

	var product models.Product
	err := s.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		if _, err := s.FindProduct(ctx, id); err != nil {
			return nil, err
		}
		return nil, store.ErrInsufficientStock
	}
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Carts

func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	cart.Prepare(time.Now())
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	_, err := s.carts.InsertOne(ctx, cart)
	return translate(err)
}

func (s *Store) FindCart(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := s.carts.FindOne(ctx, bson.M{"_id": id}).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	return &cart, nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	now := time.Now()
	result, err := s.carts.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{
			"$set": bson.M{"products": cart.Items, "updated_at": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		if _, err := s.FindCart(ctx, cart.ID); err != nil {
			return err
		}
		return store.ErrStale
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// Tickets

func (s *Store) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	ticket.Prepare(time.Now())
	_, err := s.tickets.InsertOne(ctx, ticket)
	return translate(err)
}

func (s *Store) FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.tickets.FindOne(ctx, bson.M{"code": code}).Decode(&ticket); err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (s *Store) ListTicketsByPurchaser(ctx context.Context, email string) ([]models.Ticket, error) {
	cursor, err := s.tickets.Find(ctx,
		bson.M{"purchaser": strings.ToLower(email)},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, translate(err)
	}
	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, translate(err)
	}
	return tickets, nil
}

// Users

// RegisterUser inserts the cart first and removes it again when the user
// insert fails, so a failed registration never leaves an orphan cart.
func (s *Store) RegisterUser(ctx context.Context, user *models.User, cart *models.Cart) error {
	if err := s.CreateCart(ctx, cart); err != nil {
		return err
	}
	user.CartID = cart.ID
	user.Prepare(time.Now())
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if _, delErr := s.carts.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": cart.ID}); delErr != nil {
			return errors.Join(translate(err), fmt.Errorf("remove orphan cart %s: %w", cart.ID, delErr))
		}
		return translate(err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx,
		bson.M{"email": email},
		options.FindOne().SetCollation(emailCollation),
	).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, hash string, previous *string) error {
	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"password_hash":          hash,
			"previous_password_hash": previous,
			"updated_at":             time.Now(),
		}},
	)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
