// Package config содержит логику чтения конфигурации сервиса zoyabites.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры конфигурации сервиса zoyabites.
// Все секреты приходят только из окружения и никогда не задаются в коде.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`

	JWTSecret string `env:"JWT_SECRET"`

	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	MasterAccessCode string `env:"MASTER_ACCESS_CODE"`

	PendingOrderTTL time.Duration `env:"PENDING_ORDER_TTL"`
}

// Parse считывает конфигурацию из .env-файла, переменных окружения
// и флагов командной строки. Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	// .env нужен только для локального запуска, его отсутствие не ошибка.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envPendingTTL := cfg.PendingOrderTTL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.DurationVar(&cfg.PendingOrderTTL, "p", 30*time.Minute, "TTL before an unpaid pending order is swept")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envPendingTTL != 0 {
		cfg.PendingOrderTTL = envPendingTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.PendingOrderTTL <= 0 {
		cfg.PendingOrderTTL = 30 * time.Minute
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
