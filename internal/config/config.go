package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	MediaDir string
	MediaURL string
	LogFile  string

	JWTSecret string
	TokenTTL  time.Duration

	PaystackSecret   string
	PaystackBaseURL  string
	PaystackCallback string
	GatewayTimeout   time.Duration

	KafkaBrokers string
	KafkaTopic   string
}

func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Port:     getenv("PORT", "5654"),
		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "expressbuy.db"), // sqlite file in project root
		MediaDir: getenv("MEDIA_DIR", "./media"),
		MediaURL: strings.TrimRight(getenv("MEDIA_BASE_URL", "/media"), "/"),
		LogFile:  os.Getenv("LOG_FILE"),

		JWTSecret: getenv("JWT_SECRET", "change-me"),
		TokenTTL:  duration("TOKEN_TTL", 24*time.Hour),

		PaystackSecret:   os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:  getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackCallback: os.Getenv("PAYSTACK_CALLBACK_URL"),
		GatewayTimeout:   duration("GATEWAY_TIMEOUT", 15*time.Second),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getenv("KAFKA_TOPIC", "expressbuy.transactions"),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s PAYSTACK_BASE_URL=%s PAYSTACK_SECRET_KEY=%s KAFKA_BROKERS=%q",
		cfg.Port, cfg.DBDriver, mask(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.PaystackBaseURL, mask(cfg.PaystackSecret), cfg.KafkaBrokers)
	return cfg
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

// mask keeps secrets and credentials in DSNs out of the startup log.
func mask(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "@") || strings.HasPrefix(s, "sk_") || len(s) > 40 {
		return "****"
	}
	return s
}
