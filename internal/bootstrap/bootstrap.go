// internal/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/database"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/store/memory"
	mongostore "github.com/storefront-labs/storefront-api/internal/store/mongo"
	"github.com/storefront-labs/storefront-api/internal/store/postgres"
)

// OpenStore connects the adapter selected by STORE_DRIVER and prepares its
// schema or indexes.
func OpenStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.Initialize(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, log); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return postgres.New(db), nil

	case "mongo":
		client, db, err := database.ConnectMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongostore.New(client, db), nil

	case "memory":
		log.Warn("Using the in-memory store; data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// NewEventPublisher dials RabbitMQ when it is configured and falls back to
// logging events otherwise.
func NewEventPublisher(cfg *config.Config, log *logrus.Logger) services.EventPublisher {
	if cfg.Events.RabbitMQURL == "" {
		return services.NewLogPublisher(log)
	}
	publisher, err := services.NewRabbitPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange)
	if err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable, events will only be logged")
		return services.NewLogPublisher(log)
	}
	return publisher
}

// NewTokenRevoker prefers Redis so logouts hold across instances. The
// returned close func is never nil.
func NewTokenRevoker(ctx context.Context, cfg *config.Config, log *logrus.Logger) (services.TokenRevoker, func() error) {
	if !cfg.Redis.Enabled {
		return services.NewMemoryTokenRevoker(), func() error { return nil }
	}

	rdb := services.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, token revocation is process local")
		_ = rdb.Close()
		return services.NewMemoryTokenRevoker(), func() error { return nil }
	}
	return services.NewRedisTokenRevoker(rdb), rdb.Close
}

// Services is the assembled service layer.
type Services struct {
	Auth          *services.AuthService
	Queries       *services.ProductQueryService
	Products      *services.ProductService
	Carts         *services.CartService
	Purchases     *services.PurchaseService
	Tickets       *services.TicketService
	Checkouts     *services.CheckoutService
	Notifications *services.NotificationService
}

func NewServices(cfg *config.Config, log *logrus.Logger, st store.Store, events services.EventPublisher, revoker services.TokenRevoker) (*Services, error) {
	storage, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	notifications := services.NewNotificationService(
		services.NewMailer(cfg.Email, log),
		cfg.Frontend,
		time.Duration(cfg.JWT.ResetTokenTTL)*time.Minute,
		log,
	)
	purchases := services.NewPurchaseService(st, st, log)
	tickets := services.NewTicketService(st)

	return &Services{
		Auth:          services.NewAuthService(st, cfg.JWT, revoker, notifications, log),
		Queries:       services.NewProductQueryService(st),
		Products:      services.NewProductService(st, storage, events, log),
		Carts:         services.NewCartService(st, st, log),
		Purchases:     purchases,
		Tickets:       tickets,
		Checkouts:     services.NewCheckoutService(purchases, tickets, services.NewPaymentService(cfg.Payment), notifications, events, log),
		Notifications: notifications,
	}, nil
}
