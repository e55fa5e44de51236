// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is where
// everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// OpenAI configuration. With no API key the service still runs: the
	// assistant degrades to rule-based intents and canned answers, and
	// profile indexing becomes a logged no-op.
	OpenAIAPIKey     string // API key; empty disables embedding/generation
	OpenAIChatModel  string // Chat model for classification and synthesis
	OpenAIEmbedModel string // Embedding model for profile/document vectors

	// Base URL this deployment is reachable at (used in logs and health
	// reporting, not for link generation).
	BaseURL string
}
