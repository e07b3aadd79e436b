package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-service-concierge/internal/config"
	"github.com/iliyamo/car-service-concierge/internal/database"
	"github.com/iliyamo/car-service-concierge/internal/handler"
	"github.com/iliyamo/car-service-concierge/internal/queue"
	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional: with no client the rate limiter and the dealer
	// directory cache degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cars := repository.NewCarRepo(db)
	dealers := repository.NewDealerRepo(db)
	requests := repository.NewRequestRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	inventory := repository.NewInventoryRepo(db)
	notes := repository.NewNoteRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, cars)
	requestH := handler.NewRequestHandler(log, requests, users, cars, dealers, invoices)
	carH := handler.NewCarHandler(cars)
	locationH := handler.NewLocationHandler(requests)
	dealerH := handler.NewDealerHandler(dealers, users)
	staffAdminH := handler.NewStaffAdminHandler(cfg, users)
	inventoryH := handler.NewInventoryHandler(inventory)
	invoiceH := handler.NewInvoiceHandler(log, invoices, requests, cars)
	noteH := handler.NewNoteHandler(notes, requests)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterPublic(e, dealerH, config.LoadCacheConfig(), rdb)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCustomer(e, requestH, carH, locationH, cfg.JWTSecret)
	router.RegisterStaff(e, requestH, noteH, locationH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterOwner(e, staffAdminH, dealerH, inventoryH, invoiceH, cfg.JWTSecret)

	// Background notification consumer; it reconnects on its own.
	go queue.StartStatusConsumer(log)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")

	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
