package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/expense-gateway/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	CRM       CRMConfig
	Upload    UploadConfig
	Entities  EntitiesConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	Static    StaticConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// CRMConfig holds connectivity and object-model settings for the external CRM.
// AccessToken is deliberately allowed to be empty at startup: its absence is a
// request-time error reported through the proxy error body, never a crash.
type CRMConfig struct {
	// BaseURL is the root of the CRM REST API
	BaseURL string
	// AccessToken is the bearer credential attached to every CRM call
	AccessToken string
	// ExpenseObject is the object type used for primary creates (crm/v3/objects/<type>)
	ExpenseObject string
	// ExpenseAssociationObject is the portal-qualified expense type used on
	// association paths (e.g. "p44120672_expenses")
	ExpenseAssociationObject string
	// ContactsObject, CompaniesObject and GamesObject name the selectable collections
	ContactsObject  string
	CompaniesObject string
	GamesObject     string
	// ReceiptFolderName is the well-known file-manager folder for receipt uploads
	ReceiptFolderName string
	// PageLimit is the page size used when exhausting paginated lists
	PageLimit int
	// RequestTimeout bounds every single CRM call (seconds)
	RequestTimeout int
	// AssociationTypeOverrides maps an entity kind ("contacts", "companies",
	// "games") to a fixed association type id. When unset the first entry of
	// the CRM's vocabulary is used.
	AssociationTypeOverrides map[string]string
}

type UploadConfig struct {
	MaxUploadSizeMB int64
	// TempDir is where attachments are spooled during relay; empty means os.TempDir()
	TempDir string
}

// EntitiesConfig carries optional static fallbacks for selectable collections.
// The games roster used to be a literal in the submission flow; it is injected
// configuration now and only served when the CRM list call fails.
type EntitiesConfig struct {
	GameFallback []FallbackEntity
	// WarmCron is the cron expression for the entity cache warm job; empty disables it
	WarmCron string
	// CacheTTL is how long a warmed entity snapshot stays fresh (seconds)
	CacheTTL int
}

type FallbackEntity struct {
	ID    string
	Label string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout   int
	WriteTimeout  int
	EnableSwagger bool
}

// StaticConfig controls the static file fallback for client-side routing
type StaticConfig struct {
	// Dir is the directory served at the root; empty disables static serving
	Dir string
	// IndexFile is served for any unmatched path so the SPA router can take over
	IndexFile string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns the per-call CRM timeout as duration
func (c *CRMConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// CacheTTLDuration returns the entity cache TTL as duration
func (e *EntitiesConfig) CacheTTLDuration() time.Duration {
	return time.Duration(e.CacheTTL) * time.Second
}

// Load loads configuration from file and environment variables.
// This is a basic load that doesn't fetch secrets from vault;
// use LoadWithSecrets for full secret resolution.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The historical deployment used HUBSPOT_ACCESS_TOKEN and PORT directly
	if cfg.CRM.AccessToken == "" {
		cfg.CRM.AccessToken = v.GetString("HUBSPOT_ACCESS_TOKEN")
	}
	if port := v.GetInt("PORT"); port != 0 {
		cfg.App.Port = port
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves the CRM credential from the
// configured source. In development (or when secrets.source = "environment")
// the credential comes from env vars; in staging/production with
// USE_AZURE_KEY_VAULT=true it comes from Azure Key Vault.
//
// A missing credential is NOT an error here: the gateway starts without it and
// reports a configuration error on each request that needs it.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault || !isValidEnv {
		logger.Info("Using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if token, err := provider.GetSecretOrEnv(ctx, "hubspot-access-token", "HUBSPOT_ACCESS_TOKEN"); err == nil && token != "" {
		cfg.CRM.AccessToken = token
	} else if err != nil {
		logger.Warn("CRM access token not resolved, requests will fail until configured",
			zap.Error(err),
		)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Expense Gateway")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 3000)

	// CRM defaults, aligned with the HubSpot v3 surface
	v.SetDefault("crm.baseURL", "https://api.hubapi.com")
	v.SetDefault("crm.expenseObject", "expenses")
	v.SetDefault("crm.expenseAssociationObject", "p44120672_expenses")
	v.SetDefault("crm.contactsObject", "contacts")
	v.SetDefault("crm.companiesObject", "companies")
	v.SetDefault("crm.gamesObject", "games")
	v.SetDefault("crm.receiptFolderName", "expense-receipts")
	v.SetDefault("crm.pageLimit", 100)
	v.SetDefault("crm.requestTimeout", 30)

	// Upload defaults
	v.SetDefault("upload.maxUploadSizeMB", 5)
	v.SetDefault("upload.tempDir", "")

	// Entity cache defaults
	v.SetDefault("entities.warmCron", "")
	v.SetDefault("entities.cacheTTL", 300)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// Static serving defaults
	v.SetDefault("static.dir", "./public")
	v.SetDefault("static.indexFile", "index.html")

	// CORS defaults - the form is served same-origin, but deployments with a
	// separately hosted frontend can override
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"X-Request-ID"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health"})
}
