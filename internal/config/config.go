package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	applog "quickclean/internal/log"
)

type Config struct {
	Port     string
	Env      string
	DBDriver string // sqlite | pgx
	DBDSN    string
	LogFile  string

	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string

	// Buy Pack orders with a product may only target PartnerStore. KnownStores
	// lists every store name a Buy Pack booking may carry.
	PartnerStore string
	KnownStores  []string

	SeedAdminUser     string
	SeedAdminPassword string
	SeedAdminWhatsApp string
	InternalSecret    string

	AWSRegion      string
	S3Bucket       string
	S3PublicBase   string
	EventsTopicARN string
}

const DefaultPartnerStore = "Chijohnz's Supermarket"

var defaultOrigins = []string{
	"https://www.quickclean.store",
	"https://quickclean.store",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func Load() Config {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	env := getenv("APP_ENV", os.Getenv("NODE_ENV"))
	if env == "" {
		env = "development"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" && env != "production" {
		secret = "dev-secret"
	}

	partner := getenv("PARTNER_STORE", DefaultPartnerStore)
	known := splitList(os.Getenv("KNOWN_STORES"))
	if len(known) == 0 {
		known = []string{partner, "Shoprite Ifite"}
	}

	cfg := Config{
		Port:              getenv("PORT", "3001"),
		Env:               env,
		DBDriver:          getenv("DB_DRIVER", "sqlite"),
		DBDSN:             getenv("DB_DSN", "quickclean.db"),
		LogFile:           os.Getenv("LOG_FILE"),
		JWTSecret:         secret,
		JWTTTL:            time.Hour,
		CORSOrigins:       mergeOrigins(splitList(os.Getenv("CORS_ORIGIN"))),
		PartnerStore:      partner,
		KnownStores:       known,
		SeedAdminUser:     strings.ToLower(strings.TrimSpace(os.Getenv("SEED_ADMIN_USERNAME"))),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedAdminWhatsApp: os.Getenv("SEED_ADMIN_WHATSAPP"),
		InternalSecret:    getenv("ADMIN_WHATSAPP_SECRET", os.Getenv("SEED_ADMIN_PASSWORD")),
		AWSRegion:         getenv("AWS_REGION", os.Getenv("AWS_DEFAULT_REGION")),
		S3Bucket:          os.Getenv("ASSETS_S3_BUCKET"),
		S3PublicBase:      os.Getenv("ASSETS_PUBLIC_BASE_URL"),
		EventsTopicARN:    os.Getenv("EVENTS_SNS_TOPIC_ARN"),
	}
	applog.Info(nil, "config.load", map[string]any{
		"port":          cfg.Port,
		"env":           cfg.Env,
		"db_driver":     cfg.DBDriver,
		"partner_store": cfg.PartnerStore,
		"known_stores":  cfg.KnownStores,
		"s3":            cfg.S3Bucket != "",
		"sns":           cfg.EventsTopicARN != "",
	})
	return cfg
}

func (c Config) Production() bool { return c.Env == "production" }

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mergeOrigins(extra []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range append(extra, defaultOrigins...) {
		o = strings.TrimSuffix(o, "/")
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}
