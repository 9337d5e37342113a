package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Port string

	BackendMode string
	AdminURL    string
	CatalogURL  string
	APITimeout  time.Duration

	MockDriver  string
	MockDSN     string
	MockKey     string
	MockLatency time.Duration

	PollInterval    time.Duration
	CORSOrigins     []string
	LikeLimitPerMin int

	MetricsToken string
	LogFile      string
}

// Load reads the environment. A .env file in the working directory, when
// present, fills variables that are not already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(k, def string) string {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []error
	duration := func(k, def string) time.Duration {
		d, err := cast.ToDurationE(get(k, def))
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("%s: bad duration %q", k, get(k, def)))
		}
		return d
	}

	c := Config{
		Port:         get("PORT", "3000"),
		BackendMode:  get("BACKEND_MODE", "remote"),
		AdminURL:     get("ADMIN_API_URL", "http://localhost:8000/api/products"),
		CatalogURL:   get("MAIN_API_URL", "http://localhost:8001/api/products"),
		APITimeout:   duration("API_TIMEOUT", "5s"),
		MockDriver:   get("MOCK_STORE_DRIVER", "file"),
		MockDSN:      get("MOCK_STORE_DSN", ""),
		MockKey:      get("MOCK_STORE_KEY", "products_data"),
		MockLatency:  duration("MOCK_LATENCY", "0s"),
		PollInterval: duration("POLL_INTERVAL", "5s"),
		MetricsToken: get("METRICS_TOKEN", ""),
		LogFile:      get("LOG_FILE", ""),
	}

	limit, err := cast.ToIntE(get("LIKE_LIMIT_PER_MIN", "60"))
	if err != nil || limit <= 0 {
		errs = append(errs, fmt.Errorf("LIKE_LIMIT_PER_MIN: bad value %q", get("LIKE_LIMIT_PER_MIN", "60")))
	}
	c.LikeLimitPerMin = limit

	for _, o := range strings.Split(get("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
	}

	switch c.BackendMode {
	case "remote", "mock":
	default:
		errs = append(errs, fmt.Errorf("BACKEND_MODE: want remote or mock, got %q", c.BackendMode))
	}
	if c.PollInterval == 0 {
		errs = append(errs, errors.New("POLL_INTERVAL must be positive"))
	}

	return c, errors.Join(errs...)
}
