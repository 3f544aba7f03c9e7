package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DatabaseURL string
	AutoMigrate bool

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	LogLevel  string
	LogFormat string

	RateLimitPerMinute       int
	RateLimitBurst           int
	TenantRateLimitPerMinute int
	TenantRateLimitBurst     int

	OTLPEndpoint string
	OTLPInsecure bool

	BootstrapOrganizationID string
	BootstrapAdminEmail     string
	BootstrapAdminPassword  string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("FLEET_PORT", "8084")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_MINUTES", 480)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("FLEET_RATE_LIMIT_PER_MIN", 120)
	v.SetDefault("FLEET_RATE_LIMIT_BURST", 30)
	v.SetDefault("FLEET_TENANT_RATE_LIMIT_PER_MIN", 300)
	v.SetDefault("FLEET_TENANT_RATE_LIMIT_BURST", 60)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("BOOTSTRAP_ORG_ID", "")
	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")

	cfg := Config{
		Port:        v.GetString("FLEET_PORT"),
		DatabaseURL: v.GetString("DB_DSN"),
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),

		JWTSecret:  v.GetString("JWT_SECRET"),
		JWTTTL:     time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
		BcryptCost: v.GetInt("BCRYPT_COST"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		RateLimitPerMinute:       v.GetInt("FLEET_RATE_LIMIT_PER_MIN"),
		RateLimitBurst:           v.GetInt("FLEET_RATE_LIMIT_BURST"),
		TenantRateLimitPerMinute: v.GetInt("FLEET_TENANT_RATE_LIMIT_PER_MIN"),
		TenantRateLimitBurst:     v.GetInt("FLEET_TENANT_RATE_LIMIT_BURST"),

		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),

		BootstrapOrganizationID: strings.TrimSpace(v.GetString("BOOTSTRAP_ORG_ID")),
		BootstrapAdminEmail:     strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN_EMAIL")),
		BootstrapAdminPassword:  v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	if c.Port == "" {
		return errors.New("FLEET_PORT is required")
	}
	if c.BootstrapOrganizationID != "" && (c.BootstrapAdminEmail == "" || c.BootstrapAdminPassword == "") {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD are required with BOOTSTRAP_ORG_ID")
	}
	return nil
}

// Bootstrap reports whether a first admin should be ensured at startup.
func (c Config) Bootstrap() bool {
	return c.BootstrapOrganizationID != ""
}
