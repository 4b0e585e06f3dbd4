package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"returns-backend/internal/auth"
	"returns-backend/internal/cache"
	"returns-backend/internal/config"
	"returns-backend/internal/database"
	"returns-backend/internal/db"
	"returns-backend/internal/handlers"
	"returns-backend/internal/health"
	h "returns-backend/internal/http"
	"returns-backend/internal/middleware"
	"returns-backend/internal/monitoring"
	"returns-backend/internal/realtime"
	"returns-backend/internal/repositories"
	"returns-backend/internal/services"
	"returns-backend/migrations"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool, migrations.FS, ".")
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("[Server] Migrations failed: %v", err)
	}

	// Redis is optional; everything degrades to direct DB reads.
	if err := cache.Init(); err != nil {
		log.Printf("[Server] Redis unavailable, caching disabled: %v", err)
	} else {
		log.Printf("[Server] Redis cache connected")
	}

	// Repositories
	returnRepo := repositories.NewReturnRepository(pool)
	ncrRepo := repositories.NewNCRRepository(pool)
	counterRepo := repositories.NewCounterRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	adminActionRepo := repositories.NewAdminActionLogRepository(pool)

	// Realtime change feed
	hub := realtime.NewHub()

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	userService := services.NewUserService(userRepo, jwtManager)
	allocator := services.NewAllocatorService(counterRepo)
	returnService := services.NewReturnService(returnRepo, hub)
	ncrService := services.NewNCRService(ncrRepo, hub)
	pdfService := services.NewDocumentPDFService(os.Getenv("THAI_FONT_PATH"))
	archiveService, err := services.NewArchiveService(ctx, cfg)
	if err != nil {
		log.Printf("[Server] Archive disabled: %v", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	returnHandler := handlers.NewReturnHandler(returnService, pdfService, archiveService, adminActionRepo)
	ncrHandler := handlers.NewNCRHandler(ncrService, allocator, pdfService, archiveService, adminActionRepo)
	adminActionLogHandler := handlers.NewAdminActionLogHandler(adminActionRepo)
	healthChecker := health.NewHealthChecker(pool)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		userHandler,
		returnHandler,
		ncrHandler,
		adminActionLogHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	// Side monitoring server with host stats
	go func() {
		monitor := monitoring.NewMonitoringServer(pool, 9090)
		if err := monitor.Start(); err != nil {
			log.Printf("[Server] Monitoring server stopped: %v", err)
		}
	}()

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[Server] Listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("[Server] %v", err)
	}
}
