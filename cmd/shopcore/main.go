package main

import (
	"context"
	"fmt"

	"github.com/veliashev/shopcore/internal/adapter/auth"
	"github.com/veliashev/shopcore/internal/adapter/cache"
	"github.com/veliashev/shopcore/internal/adapter/client/shipping"
	"github.com/veliashev/shopcore/internal/adapter/config"
	"github.com/veliashev/shopcore/internal/adapter/events"
	"github.com/veliashev/shopcore/internal/adapter/handler/http"
	"github.com/veliashev/shopcore/internal/adapter/logger"
	"github.com/veliashev/shopcore/internal/adapter/storage"
	"github.com/veliashev/shopcore/internal/adapter/storage/repository"
	"github.com/veliashev/shopcore/internal/core/service"
	"go.uber.org/zap"
)

const orderEventsTopic = "shopcore.order-events"

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repository creating error", zap.Error(err))
		return
	}

	tokenService, err := auth.New()
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}
	permissions := auth.NewClaimsPermissions()

	shippingClient, err := shipping.NewShippingClient(conf.Shipping, log.Named("Shipping"))
	if err != nil {
		log.Error("shipping client creating error", zap.Error(err))
		return
	}

	producer, err := events.NewProducer(conf.Kafka.Brokers, orderEventsTopic, log)
	if err != nil {
		log.Error("event producer creating error", zap.Error(err))
		return
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Error("event producer close error", zap.Error(err))
		}
	}()

	analytics, err := cache.NewAnalyticsCache(conf.Redis.Addr, log)
	if err != nil {
		log.Error("analytics cache creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, shippingClient, producer, analytics, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, tokenService, permissions, orderHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
