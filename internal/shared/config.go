package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	TurneoBase   string
	TurneoKey    string
	TurneoRPS    int
	PartnerID    string
	ResellerName string

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	RequestTimeout time.Duration
	CacheTTL       time.Duration
	OrderCacheTTL  time.Duration
	DraftTTL       time.Duration
	SuccessBanner  time.Duration

	PageSize        int
	MaxVisiblePages int
	SyncWorkers     int
}

// Load reads configuration from the environment (and a .env file when
// present). The upstream credentials have no sensible defaults; a missing
// one is a startup error, not a mid-request surprise.
func Load() (Config, error) {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		TurneoBase:   os.Getenv("TURNEO_BASE_URL"),
		TurneoKey:    os.Getenv("TURNEO_API_KEY"),
		TurneoRPS:    atoi("TURNEO_RPS", 5),
		PartnerID:    os.Getenv("PARTNER_ID"),
		ResellerName: env("RESELLER_NAME", "Experiences Portal"),

		MySQLDSN:  env("MYSQL_DSN", "root:root@tcp(localhost:3306)/portal?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		RequestTimeout: secs("REQUEST_TIMEOUT_SECONDS", 30),
		CacheTTL:       secs("CACHE_TTL_SECONDS", 900),
		OrderCacheTTL:  secs("ORDER_CACHE_TTL_SECONDS", 60),
		DraftTTL:       secs("DRAFT_TTL_SECONDS", 1800),
		SuccessBanner:  secs("SUCCESS_BANNER_SECONDS", 3),

		PageSize:        atoi("PAGE_SIZE", 50),
		MaxVisiblePages: atoi("MAX_VISIBLE_PAGES", 5),
		SyncWorkers:     atoi("SYNC_WORKERS", 8),
	}

	switch {
	case c.TurneoBase == "":
		return Config{}, fmt.Errorf("TURNEO_BASE_URL is required")
	case c.TurneoKey == "":
		return Config{}, fmt.Errorf("TURNEO_API_KEY is required")
	case c.PartnerID == "":
		return Config{}, fmt.Errorf("PARTNER_ID is required")
	}
	return c, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
