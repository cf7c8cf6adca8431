package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	JWTIssuer string `env:"AUTH_JWT_ISSUER" default:""`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency      string `env:"STRIPE_CURRENCY" default:"eur"`
	ProductName   string `env:"STRIPE_PRODUCT_NAME" default:"Luxury Clicker wallet top-up"`
	FrontendURL   string `env:"FRONTEND_URL" default:"http://localhost:5173"`
}

// WalletConfig amounts are in minor units.
type WalletConfig struct {
	ClickCost   int64         `env:"WALLET_CLICK_COST" default:"1"`
	MinTopUp    int64         `env:"WALLET_MIN_TOPUP" default:"50"`
	MaxTopUp    int64         `env:"WALLET_MAX_TOPUP" default:"100000"`
	LockTimeout time.Duration `env:"WALLET_LOCK_TIMEOUT" default:"3s"`
}
