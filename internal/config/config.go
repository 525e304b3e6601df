package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）、通知 Topic、邮件消费者组
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Redis Stream outbox（API 原子入流，Relay 异步转 Kafka）
	NotifyEventStream   string
	NotifyEventGroup    string
	NotifyEventConsumer string

	// 下单接口限流与库存缓存策略
	OrderRateLimit  int
	OrderRateWindow time.Duration
	StockCacheTTL   time.Duration

	// SHIPPED 状态的默认 ETA 天数：环境变量 > 配置文件 > 5
	DefaultEtaDays int

	// 库存管理接口的简单管理员令牌
	AdminToken string
}

// Load 读取并校验配置，缺失时使用默认值。
// 先加载 CONFIG_FILE 指向的 dotenv 文件（不覆盖已有环境变量），
// 因此解析顺序天然是 环境变量 > 配置文件 > 默认值。
func Load() (AppConfig, error) {
	if path := getEnv("CONFIG_FILE", ".env"); path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			log.Printf("config file %s: %v", path, err)
		}
	}

	cfg := AppConfig{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DBPath:              getEnv("DB_PATH", "parts_store.db"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             0,
		KafkaBrokers:        splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "parts-store-notifications"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "parts-store-mailer"),
		NotifyEventStream:   getEnv("NOTIFY_EVENT_STREAM", "parts_store:notify_events"),
		NotifyEventGroup:    getEnv("NOTIFY_EVENT_GROUP", "parts-store-relay-group"),
		NotifyEventConsumer: getEnv("NOTIFY_EVENT_CONSUMER", "parts-store-relay-1"),
		OrderRateLimit:      100,
		OrderRateWindow:     time.Second,
		StockCacheTTL:       24 * time.Hour,
		DefaultEtaDays:      5,
		AdminToken:          getEnv("ADMIN_TOKEN", "dev-admin-token"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("ORDER_RATE_LIMIT", cfg.OrderRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ORDER_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("ORDER_RATE_LIMIT must be > 0")
	}
	cfg.OrderRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("ORDER_RATE_WINDOW_SEC", int(cfg.OrderRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ORDER_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("ORDER_RATE_WINDOW_SEC must be > 0")
	}
	cfg.OrderRateWindow = time.Duration(rateWindowSec) * time.Second

	stockTTLHour, err := getEnvInt("STOCK_CACHE_TTL_HOUR", int(cfg.StockCacheTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid STOCK_CACHE_TTL_HOUR: %w", err)
	}
	if stockTTLHour <= 0 {
		return AppConfig{}, fmt.Errorf("STOCK_CACHE_TTL_HOUR must be > 0")
	}
	cfg.StockCacheTTL = time.Duration(stockTTLHour) * time.Hour

	// ETA 配置非法时退回默认值而非报错：发货兜底值不值得让服务起不来。
	etaDays, err := getEnvInt("ORDER_DEFAULT_ETA_DAYS", cfg.DefaultEtaDays)
	if err != nil || etaDays <= 0 {
		etaDays = 5
	}
	cfg.DefaultEtaDays = etaDays

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.NotifyEventStream == "" {
		return AppConfig{}, fmt.Errorf("NOTIFY_EVENT_STREAM must not be empty")
	}
	if cfg.NotifyEventGroup == "" {
		return AppConfig{}, fmt.Errorf("NOTIFY_EVENT_GROUP must not be empty")
	}
	if cfg.NotifyEventConsumer == "" {
		return AppConfig{}, fmt.Errorf("NOTIFY_EVENT_CONSUMER must not be empty")
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
