// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MingleHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, openai_api_key, etc.
//   - Environment variables: MINGLEHUB_MONGO_URI, MINGLEHUB_OPENAI_API_KEY, etc.
//   - Command-line flags: --mongo_uri, --openai_api_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "minglehub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// OpenAI configuration
	{Name: "openai_api_key", Default: "", Desc: "OpenAI API key (blank disables embedding and generation)"},
	{Name: "openai_chat_model", Default: "", Desc: "Chat model for intent fallback and answer synthesis (blank uses the built-in default)"},
	{Name: "openai_embed_model", Default: "", Desc: "Embedding model for profiles and documents (blank uses the built-in default)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL this deployment is reachable at"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MINGLEHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MINGLEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		OpenAIAPIKey:     appValues.String("openai_api_key"),
		OpenAIChatModel:  appValues.String("openai_chat_model"),
		OpenAIEmbedModel: appValues.String("openai_embed_model"),

		BaseURL: appValues.String("base_url"),
	}

	if appCfg.OpenAIAPIKey == "" {
		logger.Warn("openai_api_key is not set; assistant runs with rule-based intents and canned answers only")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// MingleHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	return nil
}
