// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP/HTTPS ports,
// TLS, logging level, CORS, request limits). AppConfig is everything
// specific to MentorConnect: the MongoDB connection and the payment
// authority client.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Payment authority configuration
	PaymentBaseURL           string        // Base URL of the payment authority API
	PaymentAPIKey            string        // Bearer token for the payment authority
	PaymentCurrency          string        // ISO 4217 currency code for authorizations
	PaymentTimeout           time.Duration // Per-request timeout for payment calls
	PaymentRequestsPerSecond float64       // Client-side rate limit toward the authority

	// Audit trail configuration. Each value is one of "all", "db", "log",
	// "off".
	AuditLifecycle string // Assignment transition events
	AuditPayment   string // Payment authority outcome events
}
