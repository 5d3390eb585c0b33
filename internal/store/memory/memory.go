// internal/store/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
)

// Store keeps every collection in process. All records are copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	products     map[string]*models.Product
	productOrder []string
	carts        map[string]*models.Cart
	tickets      map[string]*models.Ticket
	ticketOrder  []string
	users        map[string]*models.User

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products: make(map[string]*models.Product),
		carts:    make(map[string]*models.Cart),
		tickets:  make(map[string]*models.Ticket),
		users:    make(map[string]*models.User),
		now:      time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

// Products

func (s *Store) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyProduct(p), nil
}

func (s *Store) FindProducts(ctx context.Context, filter store.Filter, order store.Sort, skip, limit int) ([]models.Product, error) {
	s.mu.RLock()
	matched := s.matchProducts(filter)
	s.mu.RUnlock()

	if name, kind, ok := store.ProductField(order.Field); ok {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compare(kind, fieldValue(&matched[i], name), fieldValue(&matched[j], name))
			if order.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if skip >= len(matched) {
		return []models.Product{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) CountProducts(ctx context.Context, filter store.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchProducts(filter))), nil
}

func (s *Store) FindProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *copyProduct(p))
		}
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codeTaken(product.Code, "") {
		return fmt.Errorf("product code %q: %w", product.Code, store.ErrConflict)
	}
	product.Prepare(s.now())
	if _, exists := s.products[product.ID]; exists {
		return fmt.Errorf("product %s: %w", product.ID, store.ErrConflict)
	}
	s.products[product.ID] = copyProduct(product)
	s.productOrder = append(s.productOrder, product.ID)
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch store.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Code != nil && s.codeTaken(*patch.Code, id) {
		return nil, fmt.Errorf("product code %q: %w", *patch.Code, store.ErrConflict)
	}
	updated := copyProduct(p)
	patch.Apply(updated)
	updated.UpdatedAt = s.now()
	s.products[id] = updated
	return copyProduct(updated), nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	for i, pid := range s.productOrder {
		if pid == id {
			s.productOrder = append(s.productOrder[:i], s.productOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("invalid decrement quantity %d", qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Stock < qty {
		return nil, store.ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = s.now()
	return copyProduct(p), nil
}

// Carts

func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCart(cart)
}

func (s *Store) FindCart(ctx context.Context, id string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.carts[cart.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != cart.Version {
		return store.ErrStale
	}
	cart.Version++
	cart.UpdatedAt = s.now()
	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *Store) insertCart(cart *models.Cart) error {
	cart.Prepare(s.now())
	if _, exists := s.carts[cart.ID]; exists {
		return fmt.Errorf("cart %s: %w", cart.ID, store.ErrConflict)
	}
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	s.carts[cart.ID] = cart.Clone()
	return nil
}

// Tickets

func (s *Store) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.Code == ticket.Code {
			return fmt.Errorf("ticket code %q: %w", ticket.Code, store.ErrConflict)
		}
	}
	ticket.Prepare(s.now())
	cp := *ticket
	s.tickets[ticket.ID] = &cp
	s.ticketOrder = append(s.ticketOrder, ticket.ID)
	return nil
}

func (s *Store) FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tickets {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListTicketsByPurchaser(ctx context.Context, email string) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Ticket{}
	for i := len(s.ticketOrder) - 1; i >= 0; i-- {
		t := s.tickets[s.ticketOrder[i]]
		if strings.EqualFold(t.Purchaser, email) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// Users

func (s *Store) RegisterUser(ctx context.Context, user *models.User, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %q: %w", user.Email, store.ErrConflict)
		}
	}
	if err := s.insertCart(cart); err != nil {
		return err
	}
	user.CartID = cart.ID
	user.Prepare(s.now())
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, hash string, previous *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	u.PreviousPasswordHash = previous
	u.UpdatedAt = s.now()
	return nil
}

// helpers

func (s *Store) codeTaken(code, exceptID string) bool {
	for id, p := range s.products {
		if id != exceptID && p.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) matchProducts(filter store.Filter) []models.Product {
	out := []models.Product{}
	for _, id := range s.productOrder {
		p := s.products[id]
		if matches(p, filter) {
			out = append(out, *copyProduct(p))
		}
	}
	return out
}

func copyProduct(p *models.Product) *models.Product {
	cp := *p
	if p.Thumbnails != nil {
		cp.Thumbnails = append([]string(nil), p.Thumbnails...)
	}
	return &cp
}
