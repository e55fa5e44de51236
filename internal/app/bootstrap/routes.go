// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/minglehub/internal/app/assist"
	assistantfeature "github.com/dalemusser/minglehub/internal/app/features/assistant"
	eventsfeature "github.com/dalemusser/minglehub/internal/app/features/events"
	healthfeature "github.com/dalemusser/minglehub/internal/app/features/health"
	membersfeature "github.com/dalemusser/minglehub/internal/app/features/members"
	embeddingstore "github.com/dalemusser/minglehub/internal/app/store/embeddings"
	eventstore "github.com/dalemusser/minglehub/internal/app/store/events"
	identitystore "github.com/dalemusser/minglehub/internal/app/store/identities"
	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	rosterstore "github.com/dalemusser/minglehub/internal/app/store/roster"
	"github.com/dalemusser/minglehub/internal/app/system/ai"
	"github.com/dalemusser/minglehub/internal/app/system/timeouts"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. This is where the stores, the AI client,
// the indexer/responder pair, and the ledger's post-write hooks all get
// wired together.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	identities := identitystore.New(db)
	events := eventstore.New(db)
	memberships := membershipstore.New(db)
	roster := rosterstore.New(db)
	embeddings := embeddingstore.New(db)

	aiClient := ai.NewClient(ai.Config{
		APIKey:     appCfg.OpenAIAPIKey,
		ChatModel:  appCfg.OpenAIChatModel,
		EmbedModel: appCfg.OpenAIEmbedModel,
	}, logger)

	indexer := assist.NewIndexer(embeddings, aiClient, logger)
	responder := assist.NewResponder(memberships, embeddings, aiClient, aiClient, logger)

	// Ledger hooks: every successful add/remove refreshes the member's
	// profile embedding in the background. The request that triggered the
	// write has usually completed by the time these run, so they carry
	// their own context and deadline.
	memberships.SetAfterAdd(func(eventID primitive.ObjectID, ident models.Identity) {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long)
		defer cancel()
		indexer.IndexMemberProfile(ctx, eventID, ident)
	})
	memberships.SetAfterRemove(func(eventID, identityID primitive.ObjectID) {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long)
		defer cancel()
		indexer.DeindexMemberProfile(ctx, eventID, identityID)
	})

	eventsHandler := eventsfeature.NewHandler(events, indexer, logger)
	membersHandler := membersfeature.NewHandler(events, identities, memberships, roster, indexer, logger)
	assistantHandler := assistantfeature.NewHandler(events, responder, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/events", func(r chi.Router) {
		r.Post("/", eventsHandler.ServeCreate)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", eventsHandler.ServeGet)
			r.Put("/", eventsHandler.ServeUpdate)
			r.Post("/documents", eventsHandler.ServeDocuments)

			r.Post("/join", membersHandler.ServeJoin)
			r.Route("/members", func(r chi.Router) {
				r.Get("/", membersHandler.ServeList)
				r.Post("/", membersHandler.ServeAdd)
				r.Post("/import", membersHandler.ServeImport)
				r.Patch("/{identityID}", membersHandler.ServeUpdateProfile)
				r.Delete("/{identityID}", membersHandler.ServeRemove)
			})

			r.Post("/ask", assistantHandler.ServeAsk)
		})
	})

	return r, nil
}
