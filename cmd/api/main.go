package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/backend"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/cache"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/handler"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/matcher"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/middleware"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/repository"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/config"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/optimistic"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/services"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	log.Println("Connected to Redis successfully")

	entityCache := cache.NewRedisCache(redisClient)
	platformBackend := backend.NewClient(cfg.BackendBaseURL, cfg.BackendAPIToken)
	scorer := matcher.NewClient(cfg.ScorerBaseURL, cfg.ScorerAPIToken)

	controller := optimistic.NewController(
		entityCache,
		services.NewListRefresher(entityCache, platformBackend),
		cfg.MutationTimeout,
	)

	enquiryService := services.NewEnquiryService(entityCache, platformBackend, controller, repo)
	assignmentService := services.NewAssignmentService(entityCache, platformBackend, controller, repo, repo)
	matchService := services.NewMatchService(entityCache, platformBackend, scorer)

	enquiryHandler := handler.NewEnquiryHandler(enquiryService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	matchHandler := handler.NewMatchHandler(matchService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireRole([]string{"ADMIN"}, h)
	}

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/health/ready", healthHandler.Ready)
	mux.HandleFunc("/health/live", healthHandler.Live)
	mux.Handle("/metrics", promhttp.Handler())

	// Enquiry review workflow
	mux.Handle("GET /api/admin/therapist-enquiries", admin(enquiryHandler.List))
	mux.Handle("PUT /api/admin/therapist-enquiries/{id}/status", admin(enquiryHandler.UpdateStatus))
	mux.Handle("PUT /api/admin/therapist-enquiries/{id}/tier", admin(enquiryHandler.UpdateTier))
	mux.Handle("POST /api/admin/create-therapist-account", admin(enquiryHandler.CreateAccount))
	mux.Handle("POST /api/admin/reset-therapist-password", admin(enquiryHandler.ResetPassword))

	// Assignment workflow
	mux.Handle("GET /api/admin/clients", admin(assignmentHandler.ListClients))
	mux.Handle("GET /api/admin/therapists", admin(assignmentHandler.ListTherapists))
	mux.Handle("POST /api/admin/ai-recommendations", admin(matchHandler.Recommendations))
	mux.Handle("POST /api/admin/assign-therapist", admin(assignmentHandler.Assign))
	mux.Handle("POST /api/admin/revoke-assignment", admin(assignmentHandler.Revoke))
	mux.Handle("GET /api/admin/status-history/{entityId}", admin(assignmentHandler.History))

	root := middleware.CORSMiddleware(cfg.AllowedOrigins)(mux)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, root); err != nil {
		log.Fatalf("Could not start server: %s\n", err)
	}
}
