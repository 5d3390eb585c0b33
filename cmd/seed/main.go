// cmd/seed/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/bootstrap"
	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

func main() {
	file := flag.String("products", "", "path to a JSON array of products to import")
	skipAdmin := flag.Bool("skip-admin", false, "do not create the admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := utils.NewLogger("storefront-seed", cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize store")
	}
	defer st.Close(context.Background())

	events := bootstrap.NewEventPublisher(cfg, log)
	defer events.Close()

	svc, err := bootstrap.NewServices(cfg, log, st, events, services.NewMemoryTokenRevoker())
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}

	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			log.WithError(err).Fatal("Failed to read products file")
		}
		var reqs []services.CreateProductRequest
		if err := json.Unmarshal(raw, &reqs); err != nil {
			log.WithError(err).Fatal("Failed to parse products file")
		}

		result, err := svc.Products.ImportProducts(ctx, reqs)
		if err != nil {
			log.WithError(err).Fatal("Product import aborted")
		}
		log.WithFields(logrus.Fields{
			"created": result.Created,
			"skipped": result.Skipped,
			"invalid": result.Invalid,
		}).Info("Products imported")
	}

	if !*skipAdmin {
		created, err := svc.Auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.WithError(err).Fatal("Failed to ensure admin account")
		}
		log.WithFields(logrus.Fields{"email": cfg.Admin.Email, "created": created}).Info("Admin account checked")
	}
}
