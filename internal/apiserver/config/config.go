// Package config package
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/qiangxue/go-env"
	"gitlab.com/identity-lab/scim-target-api/pkg/logger"
	"gopkg.in/yaml.v2"
)

const (
	defaultServerPort           = "8080"
	defaultAPIPrefix            = "scim"
	defaultMaxBodyBytes         = 1024 * 1024 * 5 // 5 MiB
	defaultLogBodyBytes         = 1024 * 64       // truncation budget for audited bodies
	defaultRequestTimeout       = 30              // seconds
	defaultDBAutoMigrateEnabled = true
	defaultOtelTraceEnabled     = false

	productionEnvironment = "production"
)

// Config represents an application configuration.
type Config struct {
	// The external path prefix all routes are mounted under.
	APIPrefix string `yaml:"api_prefix" env:"API_PREFIX"`

	// the server port. Defaults to 8080
	ServerPort string `yaml:"server_port" env:"PORT"`

	// Deployment environment; "production" enables fail-fast secret checks.
	Environment string `yaml:"environment" env:"NODE_ENV"`

	// the url for connecting to the database. required in production.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL,secret" sensitive:"true"`

	DBMaxConnections int `yaml:"db_max_connections" env:"DB_MAX_CONNECTIONS"`

	// Whether to auto migrate the database
	DBAutoMigrateEnabled bool `yaml:"db_auto_migrate_enabled" env:"DB_AUTO_MIGRATE_ENABLED"`

	// The opaque shared bearer secret. Required in production; generated
	// once per process otherwise.
	SCIMSharedSecret string `yaml:"scim_shared_secret" env:"SCIM_SHARED_SECRET,secret" sensitive:"true"`

	// JWT signing/verification key. Required in production.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET,secret" sensitive:"true"`

	// OAuth client-credentials client accepted by the token endpoint.
	OAuthClientID     string `yaml:"oauth_client_id" env:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `yaml:"oauth_client_secret" env:"OAUTH_CLIENT_SECRET,secret" sensitive:"true"`
	OAuthClientScopes string `yaml:"oauth_client_scopes" env:"OAUTH_CLIENT_SCOPES"`

	// Whether the per-tenant discovery documents may be fetched without a
	// bearer token.
	PublicDiscovery bool `yaml:"public_discovery" env:"PUBLIC_DISCOVERY"`

	// CorsAllowedOrigins is a comma delimited list of allowed origins
	CorsAllowedOrigins string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`

	// Per-request deadline in seconds
	RequestTimeout int `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	// Max accepted request body size in bytes
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`

	// Truncation budget in bytes for request/response bodies stored in the audit log
	LogBodyBytes int `yaml:"log_body_bytes" env:"LOG_BODY_BYTES"`

	// Informational pointers to the externally managed backup subsystem,
	// surfaced by the admin backup status projection.
	BlobBackupAccount   string `yaml:"blob_backup_account" env:"BLOB_BACKUP_ACCOUNT"`
	BlobBackupContainer string `yaml:"blob_backup_container" env:"BLOB_BACKUP_CONTAINER"`

	// Otel
	OtelTraceCollectorHost string `yaml:"otel_trace_host" env:"OTEL_TRACE_HOST"`
	OtelTraceCollectorPort int    `yaml:"otel_trace_port" env:"OTEL_TRACE_PORT"`
	OtelTraceEnabled       bool   `yaml:"otel_trace_enabled" env:"OTEL_TRACE_ENABLED"`
}

// Validate validates the application configuration.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ServerPort, is.Port),
		validation.Field(&c.APIPrefix, validation.Required, validation.Match(apiPrefixRegexp)),
	)
	if err != nil {
		return err
	}

	if c.Production() {
		// Production must fail fast on missing secrets rather than fall
		// back to generated ones.
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.SCIMSharedSecret == "" {
			return fmt.Errorf("SCIM_SHARED_SECRET is required in production")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	}

	return nil
}

// Production returns true when running in the production environment.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, productionEnvironment)
}

var apiPrefixRegexp = regexp.MustCompile("^[A-Za-z0-9_-]+$")

// Load returns an application configuration which is populated from the given configuration file and environment variables.
func Load(file string, logger logger.Logger) (*Config, error) {
	// default config
	c := Config{
		ServerPort:           defaultServerPort,
		APIPrefix:            defaultAPIPrefix,
		MaxBodyBytes:         defaultMaxBodyBytes,
		LogBodyBytes:         defaultLogBodyBytes,
		RequestTimeout:       defaultRequestTimeout,
		DBAutoMigrateEnabled: defaultDBAutoMigrateEnabled,
		OtelTraceEnabled:     defaultOtelTraceEnabled,
	}

	// load from YAML config file
	if file != "" {
		bytes, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if err = yaml.Unmarshal(bytes, &c); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config file: %w", err)
		}
	}

	// load from environment variables
	if err := env.New("", logger.Infof).Load(&c); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	c.APIPrefix = strings.Trim(c.APIPrefix, "/")

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &c, nil
}
