package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// noConfigFile 把 CONFIG_FILE 指向不存在的路径，避免读到工作目录下的 .env。
func noConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadDefaults(t *testing.T) {
	noConfigFile(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "parts_store.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 0 {
		t.Errorf("redis = %q/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"localhost:9092"}) {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.OrderRateLimit != 100 || cfg.OrderRateWindow != time.Second {
		t.Errorf("rate limit = %d/%v", cfg.OrderRateLimit, cfg.OrderRateWindow)
	}
	if cfg.StockCacheTTL != 24*time.Hour {
		t.Errorf("StockCacheTTL = %v", cfg.StockCacheTTL)
	}
	if cfg.DefaultEtaDays != 5 {
		t.Errorf("DefaultEtaDays = %d, want 5", cfg.DefaultEtaDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	noConfigFile(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ORDER_RATE_LIMIT", "10")
	t.Setenv("ORDER_RATE_WINDOW_SEC", "5")
	t.Setenv("STOCK_CACHE_TTL_HOUR", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.OrderRateLimit != 10 || cfg.OrderRateWindow != 5*time.Second {
		t.Errorf("rate limit = %d/%v", cfg.OrderRateLimit, cfg.OrderRateWindow)
	}
	if cfg.StockCacheTTL != 2*time.Hour {
		t.Errorf("StockCacheTTL = %v", cfg.StockCacheTTL)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"redis db not int", "REDIS_DB", "abc"},
		{"rate limit zero", "ORDER_RATE_LIMIT", "0"},
		{"rate window negative", "ORDER_RATE_WINDOW_SEC", "-1"},
		{"cache ttl zero", "STOCK_CACHE_TTL_HOUR", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noConfigFile(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s: expected error", tt.key, tt.value)
			}
		})
	}
}

func TestDefaultEtaDays(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		noConfigFile(t)
		t.Setenv("ORDER_DEFAULT_ETA_DAYS", "3")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.DefaultEtaDays != 3 {
			t.Errorf("DefaultEtaDays = %d, want 3", cfg.DefaultEtaDays)
		}
	})

	// 非法值退回默认 5，不报错。
	t.Run("invalid falls back", func(t *testing.T) {
		for _, bad := range []string{"abc", "0", "-4"} {
			noConfigFile(t)
			t.Setenv("ORDER_DEFAULT_ETA_DAYS", bad)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("load with %q: %v", bad, err)
			}
			if cfg.DefaultEtaDays != 5 {
				t.Errorf("DefaultEtaDays = %d with %q, want 5", cfg.DefaultEtaDays, bad)
			}
		}
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(path, []byte("ORDER_DEFAULT_ETA_DAYS=9\n"), 0o644); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("CONFIG_FILE", path)
		// godotenv 会把文件内容写进进程环境，测试结束后清理。
		t.Cleanup(func() { os.Unsetenv("ORDER_DEFAULT_ETA_DAYS") })

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.DefaultEtaDays != 9 {
			t.Errorf("DefaultEtaDays = %d, want 9 from config file", cfg.DefaultEtaDays)
		}
	})

	t.Run("env beats config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(path, []byte("ORDER_DEFAULT_ETA_DAYS=9\n"), 0o644); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("ORDER_DEFAULT_ETA_DAYS", "7")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.DefaultEtaDays != 7 {
			t.Errorf("DefaultEtaDays = %d, want env value 7", cfg.DefaultEtaDays)
		}
	})
}
