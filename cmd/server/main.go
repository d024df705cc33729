package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/CodrCam/avalanchehour-shop/app/admin"
	"github.com/CodrCam/avalanchehour-shop/app/cart"
	"github.com/CodrCam/avalanchehour-shop/app/catalog"
	"github.com/CodrCam/avalanchehour-shop/app/mailer"
	"github.com/CodrCam/avalanchehour-shop/app/orders"
	"github.com/CodrCam/avalanchehour-shop/app/payments"
	"github.com/CodrCam/avalanchehour-shop/app/sku"
	"github.com/CodrCam/avalanchehour-shop/app/webhook"
	"github.com/CodrCam/avalanchehour-shop/config"
	"github.com/CodrCam/avalanchehour-shop/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()

	var db *gorm.DB
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, inventory and orders endpoints will fail per request")
	} else {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := db.AutoMigrate(&models.InventoryLevel{}, &models.Order{}); err != nil {
			log.Error("database migration failed", "error", err)
			os.Exit(1)
		}
	}

	merch := models.DefaultCatalog()
	resolver := sku.NewResolver(merch)
	inventoryRepo := models.NewInventoryRepository(db)
	ordersRepo := models.NewOrdersRepository(db)

	var notifier orders.Notifier
	if cfg.SMTPHost != "" && len(cfg.NotifyTo) > 0 {
		notifier = mailer.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.NotifyFrom, cfg.NotifyTo)
	} else {
		log.Warn("operator notifications disabled, SMTP not configured")
	}
	intake := orders.NewIntake(ordersRepo, notifier, log)

	validator := cart.NewValidator(inventoryRepo, resolver)

	var orchestrator *payments.Orchestrator
	if cfg.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, checkout endpoints will fail per request")
	} else {
		stripeClient := payments.NewStripeClient(cfg.StripeSecretKey)
		orchestrator = payments.NewOrchestrator(merch, resolver, validator, stripeClient, stripeClient, log)
	}

	catalogHandler := catalog.NewHandler(merch)
	cartHandler := cart.NewHandler(validator, false, log)
	checkoutCartHandler := cart.NewHandler(validator, true, log)
	paymentsHandler := payments.NewHandler(orchestrator, log)
	ordersHandler := orders.NewHandler(intake, log)
	webhookHandler := webhook.NewHandler(intake, inventoryRepo, resolver, cfg.StripeWebhookSecret, log)
	adminHandler := admin.NewHandler(inventoryRepo, ordersRepo, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/catalog", catalogHandler.HandleList)
	r.Get("/api/catalog/{id}", catalogHandler.HandleGetProduct)

	r.Post("/api/cart/validate", cartHandler.HandleValidate)
	r.Post("/api/checkout/validate", checkoutCartHandler.HandleValidate)
	r.Post("/api/checkout/payment-intent", paymentsHandler.HandleCreateIntent)
	r.Post("/api/checkout/tax", paymentsHandler.HandleAmendTax)
	r.Post("/api/orders/record", ordersHandler.HandleRecord)
	r.Post("/api/stripe/webhook", webhookHandler.HandleEvent)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(admin.Middleware(admin.Credentials{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			APIToken: cfg.AdminAPIToken,
		}))
		r.Get("/inventory", adminHandler.HandleListInventory)
		r.Patch("/inventory", adminHandler.HandleSetInventory)
		r.Put("/inventory", adminHandler.HandleAdjustInventory)
		r.Get("/orders", adminHandler.HandleListOrders)
		r.Patch("/orders", adminHandler.HandleUpdateOrder)
		r.Get("/orders/export.csv", adminHandler.HandleExportCSV)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	operations := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	}
	if db != nil {
		operations["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, operations)
	exitCode := <-wait
	log.Info("server stopped", "exit_code", exitCode)
	os.Exit(exitCode)
}
