package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr    string
	GinMode    string
	DBDSN      string
	JWTSecret  string
	SeedRoutes bool
	// StageDelay is how long the simulated gateway holds at each payment
	// stage. Zero disables the hold (used by tests).
	StageDelay time.Duration
	// StoreTimeout bounds every remote store call.
	StoreTimeout time.Duration
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/rutabus?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "super-secret-key-change-me"
	}

	stageDelay := 900 * time.Millisecond
	if v := strings.TrimSpace(os.Getenv("PAYMENT_STAGE_DELAY_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			stageDelay = time.Duration(ms) * time.Millisecond
		}
	}

	storeTimeout := 10 * time.Second
	if v := strings.TrimSpace(os.Getenv("STORE_TIMEOUT_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			storeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return Env{
		AppAddr:      appAddr,
		GinMode:      strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:        dsn,
		JWTSecret:    secret,
		SeedRoutes:   parseBool(os.Getenv("SEED_ROUTES")),
		StageDelay:   stageDelay,
		StoreTimeout: storeTimeout,
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
