package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultSpreadsheetURL = "./products.xlsx"
	defaultJSONURL        = "./products.json"
	defaultFetchTimeout   = 10 * time.Second
	defaultPageSize       = 20
	defaultTaxRate        = 0.12
	defaultLocale         = "es-GT"
	defaultCurrencySymbol = "Q"
	defaultStoreName      = "Dulcería La Fiesta"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Store   StoreConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig locates the product sources and bounds their retrieval.
type CatalogConfig struct {
	SpreadsheetURL string
	JSONURL        string
	FetchTimeout   time.Duration
	PageSize       int
}

// StoreConfig holds shop-level policy: tax, money display and the messaging
// handoff target.
type StoreConfig struct {
	Name           string
	TaxRate        float64
	Locale         string
	CurrencySymbol string
	// WhatsAppPhone is the destination number in international format without
	// the plus sign; empty sends the order to the generic share endpoint.
	WhatsAppPhone string
}

// Load reads configuration from the environment, preferring values from an
// optional .env file in the working directory.
func Load() (Config, error) {
	// Missing .env is fine; real deployments configure the environment.
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault("PORT", defaultPort),
			ReadTimeout:  durationWithDefault("SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault("SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault("SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Catalog: CatalogConfig{
			SpreadsheetURL: stringWithDefault("CATALOG_SPREADSHEET_URL", defaultSpreadsheetURL),
			JSONURL:        stringWithDefault("CATALOG_JSON_URL", defaultJSONURL),
			FetchTimeout:   durationWithDefault("CATALOG_FETCH_TIMEOUT", defaultFetchTimeout),
			PageSize:       intWithDefault("CATALOG_PAGE_SIZE", defaultPageSize),
		},
		Store: StoreConfig{
			Name:           stringWithDefault("STORE_NAME", defaultStoreName),
			TaxRate:        floatWithDefault("STORE_TAX_RATE", defaultTaxRate),
			Locale:         stringWithDefault("STORE_LOCALE", defaultLocale),
			CurrencySymbol: stringWithDefault("STORE_CURRENCY_SYMBOL", defaultCurrencySymbol),
			WhatsAppPhone:  strings.TrimPrefix(stringWithDefault("STORE_WHATSAPP_PHONE", ""), "+"),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Catalog.PageSize <= 0 {
		return fmt.Errorf("config: CATALOG_PAGE_SIZE must be positive, got %d", cfg.Catalog.PageSize)
	}
	if cfg.Store.TaxRate < 0 || cfg.Store.TaxRate >= 1 {
		return fmt.Errorf("config: STORE_TAX_RATE must be in [0, 1), got %v", cfg.Store.TaxRate)
	}
	if cfg.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("config: CATALOG_FETCH_TIMEOUT must be positive, got %v", cfg.Catalog.FetchTimeout)
	}
	return nil
}

func stringWithDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationWithDefault(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if v, err := time.ParseDuration(raw); err == nil {
		return v
	}
	return fallback
}

func intWithDefault(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}

func floatWithDefault(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return fallback
}
