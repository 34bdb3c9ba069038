package matching

import (
	"github.com/gorilla/mux"

	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/candidates", handler.GetCandidates).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")
	api.HandleFunc("/requests", handler.CreateRequest).Methods("POST")
	api.HandleFunc("/requests/{id}/respond", handler.RespondToRequest).Methods("POST")
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
}
