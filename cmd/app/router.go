package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"contentboard/internal/actor"
	handlers "contentboard/internal/handler"
	"contentboard/internal/logger"
	"contentboard/internal/middleware"
)

// NewRouter registers every route with its guard and wraps the router in
// logging, CORS and token parsing.
func NewRouter(h *handlers.Handlers, tokens middleware.TokenParser, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	admin := middleware.RequireRole(actor.RoleAdmin)
	selfOrAdmin := middleware.RequireSelfOrAdmin("id")

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.TablesHandler).Methods(http.MethodGet)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", h.RefreshToken).Methods(http.MethodPost)
	auth.Handle("/logout", middleware.RequireAuth(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/me", middleware.RequireAuth(http.HandlerFunc(h.GetCurrentUser))).Methods(http.MethodGet)

	api.Handle("/users/{id}", selfOrAdmin(http.HandlerFunc(h.GetUser))).Methods(http.MethodGet)
	api.Handle("/users/{id}", selfOrAdmin(http.HandlerFunc(h.UpdateUser))).Methods(http.MethodPut)
	api.Handle("/users/{id}", selfOrAdmin(http.HandlerFunc(h.DeleteUser))).Methods(http.MethodDelete)

	api.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet)
	api.Handle("/tags", admin(http.HandlerFunc(h.CreateTag))).Methods(http.MethodPost)
	api.HandleFunc("/tags/{id}", h.GetTag).Methods(http.MethodGet)
	api.Handle("/tags/{id}", admin(http.HandlerFunc(h.UpdateTag))).Methods(http.MethodPut)
	api.Handle("/tags/{id}", admin(http.HandlerFunc(h.DeleteTag))).Methods(http.MethodDelete)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.Handle("/posts", admin(http.HandlerFunc(h.CreatePost))).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.Handle("/posts/{id}", admin(http.HandlerFunc(h.UpdatePost))).Methods(http.MethodPatch)
	api.Handle("/posts/{id}", admin(http.HandlerFunc(h.DeletePost))).Methods(http.MethodDelete)
	api.Handle("/posts/{id}/images/{gallery}", admin(http.HandlerFunc(h.AttachImage))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return middleware.Chain(
		r,
		middleware.AuthMiddleware(tokens),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware(log),
	)
}
