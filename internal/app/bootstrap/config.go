// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MentorConnect.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, payment_base_url, etc.
//   - Environment variables: MENTORCONNECT_MONGO_URI, MENTORCONNECT_PAYMENT_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --payment_base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mentorconnect", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Payment authority
	{Name: "payment_base_url", Default: "", Desc: "Base URL of the payment authority API (required)"},
	{Name: "payment_api_key", Default: "", Desc: "Bearer token for the payment authority (required)"},
	{Name: "payment_currency", Default: "cad", Desc: "ISO 4217 currency code for authorizations"},
	{Name: "payment_timeout", Default: "15s", Desc: "Per-request timeout for payment authority calls"},
	{Name: "payment_rps", Default: 25, Desc: "Client-side requests-per-second cap toward the payment authority"},

	// Audit trail
	{Name: "audit_lifecycle", Default: "all", Desc: "Audit logging for assignment transitions: all, db, log, off"},
	{Name: "audit_payment", Default: "all", Desc: "Audit logging for payment outcomes: all, db, log, off"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MENTORCONNECT_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MENTORCONNECT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		PaymentBaseURL:           appValues.String("payment_base_url"),
		PaymentAPIKey:            appValues.String("payment_api_key"),
		PaymentCurrency:          appValues.String("payment_currency"),
		PaymentTimeout:           appValues.Duration("payment_timeout", 15*time.Second),
		PaymentRequestsPerSecond: float64(appValues.Int("payment_rps")),

		AuditLifecycle: appValues.String("audit_lifecycle"),
		AuditPayment:   appValues.String("audit_payment"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// MentorConnect validates the MongoDB URI format and the payment authority
// endpoint to catch configuration errors early, before attempting to
// connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.PaymentBaseURL == "" {
		return fmt.Errorf("payment_base_url is required")
	}
	u, err := url.Parse(appCfg.PaymentBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("payment_base_url %q is not an absolute URL", appCfg.PaymentBaseURL)
	}
	if appCfg.PaymentAPIKey == "" {
		return fmt.Errorf("payment_api_key is required")
	}
	if appCfg.PaymentCurrency == "" {
		return fmt.Errorf("payment_currency is required")
	}

	for name, v := range map[string]string{
		"audit_lifecycle": appCfg.AuditLifecycle,
		"audit_payment":   appCfg.AuditPayment,
	} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", name, v)
		}
	}

	return nil
}
