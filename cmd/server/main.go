package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sidenote-sync-server/internal/config"
	"sidenote-sync-server/internal/github"
	"sidenote-sync-server/internal/handler"
	"sidenote-sync-server/internal/middleware"
	"sidenote-sync-server/internal/repository"
	"sidenote-sync-server/internal/service"
	"sidenote-sync-server/internal/websocket"
	"sidenote-sync-server/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Env)

	client, err := kivik.New("couch", cfg.Database.URL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to CouchDB")
	}

	ctx := context.Background()
	exists, err := client.DBExists(ctx, cfg.Database.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to check database existence")
	}

	if !exists {
		if err := client.CreateDB(ctx, cfg.Database.Name); err != nil {
			log.Fatal().Err(err).Msg("failed to create database")
		}
		log.Info().Str("db", cfg.Database.Name).Msg("created database")
	}

	settingsRepo := repository.NewSettingsRepository(client, cfg.Database.Name)
	snapshotRepo := repository.NewSnapshotRepository(client, cfg.Database.Name)
	if err := repository.EnsureSyncRunIndex(ctx, client, cfg.Database.Name); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare sync history")
	}
	syncRunRepo := repository.NewSyncRunRepository(client, cfg.Database.Name, cfg.Sync.HistoryKeep, log)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnections,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
		log,
	)
	wsCtx, stopWS := context.WithCancel(ctx)
	go wsManager.Run(wsCtx)

	authService, err := service.NewAuthService(cfg.Auth.Password, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid API_PASSWORD")
	}

	syncService := service.NewSyncService(
		service.NewConfigResolver(settingsRepo),
		service.GitHubRemoteFactory(github.WithBaseURL(cfg.GitHub.APIBaseURL)),
		log,
	)

	autoSync := service.NewAutoSyncer(syncService, snapshotRepo, settingsRepo, wsManager, cfg.Sync.Debounce, log)
	autoSync.SetHistory(syncRunRepo)
	if err := autoSync.RestoreStatus(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore last sync time")
	}
	autoSync.Start()

	snapshotService := service.NewSnapshotService(snapshotRepo, autoSync)
	settingsService := service.NewSettingsService(settingsRepo)

	wsManager.SetMessageHandler(handler.NewWebSocketMessageHandler(wsManager, autoSync))

	authHandler := handler.NewAuthHandler(authService)
	snapshotHandler := handler.NewSnapshotHandler(snapshotService, log)
	settingsHandler := handler.NewSettingsHandler(settingsService, log)
	syncHandler := handler.NewSyncHandler(autoSync, syncRunRepo)
	wsHandler := handler.NewWebSocketHandler(wsManager, authService, log)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/snapshot", snapshotHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/snapshot", snapshotHandler.Put).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}", snapshotHandler.GetNote).Methods("GET", "OPTIONS")

	protected.HandleFunc("/settings", settingsHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/settings", settingsHandler.Update).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/sync/now", syncHandler.SyncNow).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/status", syncHandler.Status).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/history", syncHandler.History).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	// WriteTimeout covers a manual sync, which holds the request open for the
	// whole remote round trip.
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("starting sidenote sync server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	autoSync.Stop()
	stopWS()

	log.Info().Msg("server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"sidenote-sync-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Sidenote Sync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/token":"POST","/api/v1/snapshot":"GET, PUT (protected)","/api/v1/settings":"GET, PUT (protected)","/api/v1/sync/now":"POST (protected)","/api/v1/sync/status":"GET (protected)","/api/v1/sync/history":"GET (protected)","/api/v1/notes/{id}":"GET (protected)","/ws":"websocket"}}`))
}
