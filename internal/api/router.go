package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "phacetnode/internal/api/context"
	"phacetnode/internal/api/handlers"
	"phacetnode/internal/api/middleware"
)

type Dependencies struct {
	ActionHandler       *handlers.ActionHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	DeliveryHandler     *handlers.DeliveryHandler
	OptionsHandler      *handlers.OptionsHandler
	HealthHandler       *handlers.HealthHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Inbound webhook deliveries; authenticated per-subscription by
	// HMAC signature, not by the host auth middleware.
	router.POST("/hooks/phacet/:node_id", wrap(deps.DeliveryHandler.Handle))

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	authMid := deps.AuthMiddleware

	// Action node
	router.POST("/api/v1/actions/execute",
		chain(deps.ActionHandler.Execute, authMid.Handle))

	// Trigger lifecycle
	router.POST("/api/v1/subscriptions",
		chain(deps.SubscriptionHandler.Create, authMid.Handle))
	router.GET("/api/v1/subscriptions/:node_id/exists",
		chain(deps.SubscriptionHandler.CheckExists, authMid.Handle))
	router.DELETE("/api/v1/subscriptions/:node_id",
		chain(deps.SubscriptionHandler.Delete, authMid.Handle))

	// Dynamic option lists for the host UI
	router.GET("/api/v1/options/projects",
		chain(deps.OptionsHandler.Projects, authMid.Handle))
	router.GET("/api/v1/options/tables",
		chain(deps.OptionsHandler.Tables, authMid.Handle))
	router.GET("/api/v1/options/columns",
		chain(deps.OptionsHandler.Columns, authMid.Handle))
	router.GET("/api/v1/options/sessions",
		chain(deps.OptionsHandler.Sessions, authMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
