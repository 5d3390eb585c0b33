// internal/store/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront-labs/storefront-api/internal/database"
	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

// Store implements store.Store on PostgreSQL through gorm.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err)
	}
	return translate(sqlDB.PingContext(ctx))
}

func (s *Store) Close(ctx context.Context) error {
	return database.Close(s.db)
}

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
}

// validID guards uuid columns; postgres rejects malformed uuids with an
// error instead of simply matching nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Products

func (s *Store) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) FindProducts(ctx context.Context, filter store.Filter, sort store.Sort, skip, limit int) ([]models.Product, error) {
	query := applyFilter(s.db.WithContext(ctx).Model(&models.Product{}), filter)
	query = applySort(query, sort)

	products := []models.Product{}
	if err := query.Offset(skip).Limit(limit).Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *Store) CountProducts(ctx context.Context, filter store.Filter) (int64, error) {
	var total int64
	query := applyFilter(s.db.WithContext(ctx).Model(&models.Product{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *Store) FindProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	products := []models.Product{}
	if len(valid) == 0 {
		return products, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", valid).Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Prepare(time.Now())
	if product.Thumbnails == nil {
		product.Thumbnails = pq.StringArray{}
	}
	return translate(s.db.WithContext(ctx).Create(product).Error)
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch store.ProductPatch) (*models.Product, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Code != nil {
		updates["code"] = *patch.Code
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Thumbnails != nil {
		updates["thumbnails"] = pq.StringArray(*patch.Thumbnails)
	}

	var product models.Product
	result := s.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	result := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DecrementStock debits stock in a single conditional UPDATE so two
// concurrent purchases can never both pass the stock check.
func (s *Store) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("invalid decrement quantity %d", qty)
	}
	if !validID(id) {
		return nil, store.ErrNotFound
	}

	var product models.Product
	result := s.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.FindProduct(ctx, id); err != nil {
			return nil, err
		}
		return nil, store.ErrInsufficientStock
	}
	return &product, nil
}

// Carts

func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	return translate(createCart(s.db.WithContext(ctx), cart))
}

func createCart(tx *gorm.DB, cart *models.Cart) error {
	cart.Prepare(time.Now())
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	return tx.Create(cart).Error
}

func (s *Store) FindCart(ctx context.Context, id string) (*models.Cart, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	var cart models.Cart
	if err := s.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	if !validID(cart.ID) {
		return store.ErrNotFound
	}
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		UpdateColumns(map[string]interface{}{
			"items":      cart.Items,
			"version":    cart.Version + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
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
	return translate(s.db.WithContext(ctx).Create(ticket).Error)
}

func (s *Store) FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (s *Store) ListTicketsByPurchaser(ctx context.Context, email string) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := s.db.WithContext(ctx).
		Where("LOWER(purchaser) = LOWER(?)", email).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, translate(err)
	}
	return tickets, nil
}

// Users

func (s *Store) RegisterUser(ctx context.Context, user *models.User, cart *models.Cart) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createCart(tx, cart); err != nil {
			return err
		}
		user.CartID = cart.ID
		user.Prepare(time.Now())
		return tx.Create(user).Error
	})
	return translate(err)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, hash string, previous *string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":          hash,
			"previous_password_hash": previous,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
