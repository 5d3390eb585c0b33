package services

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/store/memory"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// seedProduct stores a product and returns its id.
func seedProduct(ctx context.Context, s store.ProductStore, code string, price float64, stock int) string {
	p := &models.Product{
		Title:       "Product " + code,
		Description: "description of " + code,
		Code:        code,
		Price:       price,
		Status:      true,
		Stock:       stock,
		Category:    "general",
	}
	if err := s.CreateProduct(ctx, p); err != nil {
		panic(err)
	}
	return p.ID
}

func seedCart(ctx context.Context, s store.CartStore, items ...models.CartItem) string {
	cart := &models.Cart{Items: append(models.CartItems{}, items...)}
	if err := s.CreateCart(ctx, cart); err != nil {
		panic(err)
	}
	return cart.ID
}

// flakyStore fails stock debits for one product.
type flakyStore struct {
	*memory.Store
	failOn string
}

func (f *flakyStore) DecrementStock(ctx context.Context, id string, qty int) (*models.Product, error) {
	if id == f.failOn {
		return nil, store.ErrUnavailable
	}
	return f.Store.DecrementStock(ctx, id, qty)
}

type sentMail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent chan sentMail
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan sentMail, 16)}
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent <- sentMail{To: to, Subject: subject, Text: text, HTML: html}
	return nil
}
