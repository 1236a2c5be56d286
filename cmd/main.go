package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/forklift-safety/internal/auth"
	"github.com/ukydev/forklift-safety/internal/cache"
	"github.com/ukydev/forklift-safety/internal/config"
	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/handlers"
	"github.com/ukydev/forklift-safety/internal/middleware"
	"github.com/ukydev/forklift-safety/internal/models"
	"github.com/ukydev/forklift-safety/internal/session"
	"github.com/ukydev/forklift-safety/internal/watch"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.DatabaseName)
	sessions := &db.MongoSessionCollection{Collection: database.Collection("sessions")}
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	checks := &db.MongoCheckCollection{Collection: database.Collection("checks")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	telemetry := &db.MongoTelemetryCollection{Collection: database.Collection("telemetry")}
	incidents := &db.MongoIncidentCollection{Collection: database.Collection("incidents")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	var tokens *cache.TokenStore
	if redisClient, err := cache.Connect(); err != nil {
		log.WithError(err).Warn("Redis unavailable, token refresh disabled")
	} else {
		tokens = cache.NewTokenStore(redisClient, cfg.RefreshTTL)
		defer redisClient.Close()
	}

	lifecycle := session.NewService(sessions, vehicles, checks, telemetry)

	if cfg.MQTTBroker != "" {
		mqttClient, err := watch.Connect(cfg.MQTTBroker, "forklift-safety-server")
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		watcher := watch.New(mqttClient, lifecycle, telemetry, cfg.TelemetryTopic, cfg.SafetyTopic)
		if err := watcher.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start safety watcher")
		}
		defer watcher.Stop()
	} else {
		log.Warn("MQTT_BROKER not set, automated session closure disabled")
	}

	authHandler := handlers.NewAuthHandler(authService, users, tokens)
	sessionHandler := handlers.NewSessionHandler(lifecycle)
	vehicleHandler := handlers.NewVehicleHandler(vehicles)
	checkHandler := handlers.NewCheckHandler(checks)
	incidentHandler := handlers.NewIncidentHandler(incidents)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()
	requireAdmin := authMiddleware.RequireRole(models.RoleAdmin)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)

	mux.HandleFunc("/api/sessions/start", sessionHandler.StartSession)
	mux.HandleFunc("/api/sessions/end", sessionHandler.EndSession)
	mux.HandleFunc("/api/sessions/current", sessionHandler.CurrentSession)
	mux.HandleFunc("/api/sessions/history", sessionHandler.SessionHistory)
	mux.HandleFunc("/api/sessions/user", sessionHandler.SessionsByUser)
	mux.Handle("/api/sessions", requireAdmin(http.HandlerFunc(sessionHandler.ListSessions)))

	mux.Handle("/api/vehicles/create", requireAdmin(http.HandlerFunc(vehicleHandler.CreateVehicle)))
	mux.Handle("/api/vehicles/status", requireAdmin(http.HandlerFunc(vehicleHandler.SetVehicleStatus)))
	mux.HandleFunc("/api/vehicles", vehicleHandler.ListVehicles)
	mux.HandleFunc("/api/vehicles/get", vehicleHandler.GetVehicle)
	mux.HandleFunc("/api/vehicles/active-session", sessionHandler.ActiveSessionForVehicle)
	mux.HandleFunc("/api/vehicles/last-session", sessionHandler.LastSessionForVehicle)

	mux.HandleFunc("/api/checks", checkHandler.ListChecks)
	mux.HandleFunc("/api/checks/submit", checkHandler.SubmitCheck)

	mux.HandleFunc("/api/incidents", incidentHandler.ListIncidents)
	mux.HandleFunc("/api/incidents/report", incidentHandler.ReportIncident)

	handler := rateLimiter.RateLimit(120, 60)(authMiddleware.Authenticate(mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Server stopped")
}
