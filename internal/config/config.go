package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string // 管理画面のBearerトークン検証用

	GoEnv    string // dev/prod
	LogLevel string

	CartCookieName string        // カートCookie名
	CartCookieTTL  time.Duration // カートCookieの有効期限（全経路で共通）
	CookieSecure   bool

	DomesticCountry      string // 送料が固定でかかる国
	DomesticShippingCost int64

	RedisAddr       string // 空ならキャッシュ無効
	CatalogCacheTTL time.Duration

	KafkaBrokers    []string // 空なら通知しない
	KafkaOrderTopic string
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "prod"
}

// Loadは環境変数から読む。.envの読み込みは呼び出し側で行う。
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cookieTTL, err := durationDefault("CART_COOKIE_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationDefault("CATALOG_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	shipping, err := atoiDefault("DOMESTIC_SHIPPING_COST", 300)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "juneberry"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		CartCookieName: getenv("CART_COOKIE_NAME", "cart"),
		CartCookieTTL:  cookieTTL,
		CookieSecure:   envBool("COOKIE_SECURE", true),

		DomesticCountry:      getenv("DOMESTIC_COUNTRY", "Philippines"),
		DomesticShippingCost: int64(shipping),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CatalogCacheTTL: cacheTTL,

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "orders.placed"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.CartCookieTTL <= 0 {
		return Config{}, fmt.Errorf("CART_COOKIE_TTL must be positive")
	}
	if cfg.DomesticShippingCost < 0 {
		return Config{}, fmt.Errorf("DOMESTIC_SHIPPING_COST must be >= 0")
	}
	if strings.TrimSpace(cfg.DomesticCountry) == "" {
		return Config{}, fmt.Errorf("DOMESTIC_COUNTRY is required")
	}

	return cfg, nil
}

// PostgresDSN は DATABASE_URL が無いときの接続文字列。
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
