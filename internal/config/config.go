package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Service selects which settings are mandatory.
type Service int

const (
	AuthService Service = iota
	BoardsService
)

type Config struct {
	DBDriver string
	DSN      string

	JWTSecret string
	TokenTTL  time.Duration

	Port string

	RedisURL string
	CacheTTL time.Duration

	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For; other peers are keyed by their
	// socket address.
	TrustedProxies []netip.Prefix

	ResetTokenTTL time.Duration
	ResetURL      string

	RateLimit       int
	RateLimitWindow time.Duration

	Debug     bool
	LogFormat string
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory, and reports every missing or malformed variable at once.
func Load(service Service) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else {
		log.Debug(".env file not found, relying on environment variables")
	}

	var errs []error
	cfg := &Config{
		DBDriver:       getenv("DATABASE_DRIVER", "postgres"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		ResetURL:       getenv("RESET_URL", "http://localhost:3000/reset-password"),
		LogFormat:      getenv("LOG_FORMAT", "text"),
	}

	cfg.Debug, _ = strconv.ParseBool(os.Getenv("DEBUG"))
	cfg.TokenTTL = durationVar("TOKEN_TTL", 24*time.Hour, &errs)
	cfg.CacheTTL = durationVar("CACHE_TTL", 5*time.Minute, &errs)
	cfg.ResetTokenTTL = durationVar("RESET_TOKEN_TTL", time.Hour, &errs)
	cfg.RateLimitWindow = durationVar("RATE_LIMIT_WINDOW", 15*time.Minute, &errs)
	cfg.RateLimit = intVar("RATE_LIMIT", 5, &errs)
	cfg.TrustedProxies = prefixList("TRUSTED_PROXIES", &errs)

	switch service {
	case AuthService:
		cfg.Port = os.Getenv("SERVER_PORT_AUTH")
		if cfg.Port == "" {
			errs = append(errs, errors.New("SERVER_PORT_AUTH must be set"))
		}
		if cfg.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL must be set"))
		}
	case BoardsService:
		cfg.Port = os.Getenv("SERVER_PORT_BOARDS")
		if cfg.Port == "" {
			errs = append(errs, errors.New("SERVER_PORT_BOARDS must be set"))
		}
	}

	if len(cfg.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}

	dsn, err := buildDSN(cfg.DBDriver)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.DSN = dsn

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildDSN(driver string) (string, error) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn, nil
	}
	switch driver {
	case "postgres":
		required := []string{
			"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
			"POSTGRES_HOST", "POSTGRES_PORT",
		}
		var missing []string
		for _, env := range required {
			if os.Getenv(env) == "" {
				missing = append(missing, env)
			}
		}
		if len(missing) > 0 {
			return "", fmt.Errorf("environment variables %s must be set", strings.Join(missing, ", "))
		}
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"),
			os.Getenv("POSTGRES_DB"), os.Getenv("POSTGRES_PORT"), getenv("POSTGRES_SSLMODE", "disable")), nil
	case "sqlite3":
		return "", errors.New("DATABASE_DSN must be set for sqlite3")
	default:
		return "", fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}
}

// ConfigureLogging applies DEBUG and LOG_FORMAT to the global logger.
func (c *Config) ConfigureLogging() {
	if c.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationVar(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("invalid %s: %q", key, v))
		return fallback
	}
	return d
}

func intVar(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("invalid %s: %q", key, v))
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// prefixList parses a comma separated list of CIDRs or bare addresses.
func prefixList(key string, errs *[]error) []netip.Prefix {
	var out []netip.Prefix
	for _, part := range splitList(os.Getenv(key)) {
		if prefix, err := netip.ParsePrefix(part); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: invalid address %q", key, part))
			continue
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out
}
