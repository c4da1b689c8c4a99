package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/miguelmartinez95/rest-api-project/internal/controllers"
	"github.com/miguelmartinez95/rest-api-project/internal/metrics"
	"github.com/miguelmartinez95/rest-api-project/internal/middleware"
	"github.com/miguelmartinez95/rest-api-project/internal/routes"
)

// Handlers groups the controllers the router dispatches to.
type Handlers struct {
	Health *controllers.HealthController
	Auth   *controllers.UserAuthController
	Stores *controllers.StoreController
	Items  *controllers.ItemController
	Tags   *controllers.TagController
}

// NewRouter mounts every endpoint with its auth requirement.
func NewRouter(h Handlers, authz middleware.Authorizer) *mux.Router {
	router := mux.NewRouter()

	access := middleware.RequireAuth(authz)
	fresh := middleware.RequireFresh(authz)
	admin := middleware.RequireAdmin(authz)
	refresh := middleware.RequireRefresh(authz)

	with := func(mw mux.MiddlewareFunc, fn http.HandlerFunc) http.Handler {
		return mw(fn)
	}

	// Health & metrics
	router.HandleFunc(routes.Health, h.Health.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, metrics.Handler()).Methods(http.MethodGet)

	// Auth
	router.HandleFunc(routes.Register, h.Auth.Register).Methods(http.MethodPost)
	router.HandleFunc(routes.Login, h.Auth.Login).Methods(http.MethodPost)
	router.Handle(routes.Refresh, with(refresh, h.Auth.Refresh)).Methods(http.MethodPost)
	router.Handle(routes.Logout, with(access, h.Auth.Logout)).Methods(http.MethodPost)
	router.Handle(routes.User, with(access, h.Auth.GetUser)).Methods(http.MethodGet)
	router.Handle(routes.User, with(fresh, h.Auth.DeleteUser)).Methods(http.MethodDelete)

	// Stores
	router.HandleFunc(routes.Stores, h.Stores.ListStores).Methods(http.MethodGet)
	router.Handle(routes.Stores, with(fresh, h.Stores.CreateStore)).Methods(http.MethodPost)
	router.HandleFunc(routes.Store, h.Stores.GetStore).Methods(http.MethodGet)
	router.Handle(routes.Store, with(admin, h.Stores.DeleteStore)).Methods(http.MethodDelete)

	// Items
	router.Handle(routes.Items, with(access, h.Items.ListItems)).Methods(http.MethodGet)
	router.Handle(routes.Items, with(fresh, h.Items.CreateItem)).Methods(http.MethodPost)
	router.Handle(routes.Item, with(access, h.Items.GetItem)).Methods(http.MethodGet)
	router.Handle(routes.Item, with(access, h.Items.UpdateItem)).Methods(http.MethodPut)
	router.Handle(routes.Item, with(admin, h.Items.DeleteItem)).Methods(http.MethodDelete)

	// Tags
	router.HandleFunc(routes.StoreTags, h.Tags.ListStoreTags).Methods(http.MethodGet)
	router.Handle(routes.StoreTags, with(access, h.Tags.CreateStoreTag)).Methods(http.MethodPost)
	router.HandleFunc(routes.Tag, h.Tags.GetTag).Methods(http.MethodGet)
	router.Handle(routes.Tag, with(admin, h.Tags.DeleteTag)).Methods(http.MethodDelete)
	router.Handle(routes.ItemTag, with(access, h.Tags.LinkItem)).Methods(http.MethodPost)
	router.Handle(routes.ItemTag, with(access, h.Tags.UnlinkItem)).Methods(http.MethodDelete)

	return router
}
