package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"returns-backend/internal/handlers"
	"returns-backend/internal/middleware"
	"returns-backend/internal/realtime"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	returnHandler *handlers.ReturnHandler,
	ncrHandler *handlers.NCRHandler,
	adminActionLogHandler *handlers.AdminActionLogHandler,
	healthHandler *handlers.HealthHandler,
	hub *realtime.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Change feed. Browsers cannot set Authorization headers on
	// websocket upgrades, and the feed carries no record data, so it
	// stays outside the auth middleware.
	r.HandleFunc("/ws", hub.ServeWS)

	// Return workflow
	returnsAPI := r.PathPrefix("/api/returns").Subrouter()
	returnsAPI.Use(authMiddleware.Authenticate)
	returnsAPI.HandleFunc("", returnHandler.ListReturns).Methods("GET")
	returnsAPI.HandleFunc("", returnHandler.CreateReturn).Methods("POST")
	returnsAPI.HandleFunc("/document", returnHandler.DocumentReturns).Methods("POST")
	returnsAPI.HandleFunc("/{id}", returnHandler.GetReturn).Methods("GET")
	returnsAPI.HandleFunc("/{id}/receive", returnHandler.ReceiveReturn).Methods("POST")
	returnsAPI.HandleFunc("/{id}/grade", returnHandler.GradeReturn).Methods("POST")
	returnsAPI.HandleFunc("/{id}/complete", returnHandler.CompleteReturn).Methods("POST")

	// NCR reports. Mutation needs the quality or admin role; deletion
	// is admin only.
	ncrAPI := r.PathPrefix("/api/ncr").Subrouter()
	ncrAPI.Use(authMiddleware.Authenticate)
	ncrAPI.HandleFunc("", ncrHandler.ListNCRs).Methods("GET")
	ncrAPI.HandleFunc("", authMiddleware.RequireRole("quality", "admin")(http.HandlerFunc(ncrHandler.CreateNCR)).ServeHTTP).Methods("POST")
	ncrAPI.HandleFunc("/allocate-number", authMiddleware.RequireRole("quality", "admin")(http.HandlerFunc(ncrHandler.AllocateNumber)).ServeHTTP).Methods("POST")
	ncrAPI.HandleFunc("/{id}", ncrHandler.GetNCR).Methods("GET")
	ncrAPI.HandleFunc("/{id}", authMiddleware.RequireRole("quality", "admin")(http.HandlerFunc(ncrHandler.UpdateNCR)).ServeHTTP).Methods("PATCH")
	ncrAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(ncrHandler.DeleteNCR)).ServeHTTP).Methods("DELETE")
	ncrAPI.HandleFunc("/{id}/close", authMiddleware.RequireRole("quality", "admin")(http.HandlerFunc(ncrHandler.CloseNCR)).ServeHTTP).Methods("POST")
	ncrAPI.HandleFunc("/{id}/return-draft", ncrHandler.ReturnDraft).Methods("GET")
	ncrAPI.HandleFunc("/{id}/pdf", ncrHandler.RenderPDF).Methods("GET")

	// User administration
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/{id}/toggle-active", userHandler.ToggleUserStatus).Methods("PATCH")

	// Audit trail
	logsAPI := r.PathPrefix("/api/admin-logs").Subrouter()
	logsAPI.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	logsAPI.HandleFunc("", adminActionLogHandler.ListActionLogs).Methods("GET")

	return r
}
