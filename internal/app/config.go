package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (DASH_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"0.0.0.0:8080" usage:"Dashboard server listen address"`
	API      APIConfig
	View     ViewConfig
	CORS     CORSConfig
	Graceful GracefulConfig
}

// APIConfig points at the upstream product catalog API.
type APIConfig struct {
	BaseURL string        `default:"https://api.escuelajs.co/api/v1" usage:"Product catalog API base URL" flag:"api-base-url"`
	Timeout time.Duration `default:"15s" usage:"Per-request timeout for catalog API calls" flag:"api-timeout"`
}

// ViewConfig holds the initial table presentation settings.
type ViewConfig struct {
	PageSize       int           `default:"10" usage:"Initial rows per table page" flag:"page-size"`
	SearchDebounce time.Duration `default:"300ms" usage:"Quiet period for debounced search input" flag:"search-debounce"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "DASH",
		Files:     []string{"config.yaml", "/etc/catalog-dashboard/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like PORT to the
// application's DASH_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
