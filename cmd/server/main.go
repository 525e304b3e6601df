package main

import (
	"context"
	"log"

	"parts_store/internal/config"
	"parts_store/internal/inventory"
	"parts_store/internal/model"
	"parts_store/internal/notify"
	"parts_store/internal/order"
	"parts_store/internal/router"
	rediskey "parts_store/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 1. 连接 SQLite，自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Part{},
		&model.InventoryLog{},
		&model.OrderHeader{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.AppUser{},
		&model.EnterpriseProfile{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// 2. Redis：库存缓存 + 通知 outbox + 限流
	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	cache := rediskey.NewStockCache(rdb, cfg.StockCacheTTL)

	// 3. 通知管道：StreamNotifier → Relay → Kafka → Mailer
	notifier := notify.NewStreamNotifier(rdb, cfg.NotifyEventStream)
	producer := notify.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	relay := notify.NewRelay(rdb, producer, cfg.NotifyEventStream, cfg.NotifyEventGroup, cfg.NotifyEventConsumer)
	mailer := notify.NewMailer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	defer mailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)
	go mailer.Run(ctx)

	// 4. 核心：库存账本 + 订单编排
	ledger := inventory.NewLedger(db, notifier, cache)
	svc := order.NewService(db, ledger, notifier, cfg.DefaultEtaDays)

	r := gin.Default()
	router.Setup(r, svc, ledger, rdb, cache, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
