package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fandyandika/miqra/internal/api"
	"github.com/fandyandika/miqra/internal/cache"
	"github.com/fandyandika/miqra/internal/localstore"
	"github.com/fandyandika/miqra/internal/realtime"
	"github.com/fandyandika/miqra/internal/remote"
	"github.com/fandyandika/miqra/internal/service"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zapLogger.Fatal("Invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	store := newLocalStore(cfg, zapLogger)
	defer store.Close()

	remoteClient := remote.New(cfg.Remote)
	bus := cache.NewBus()

	hasanatService, err := service.NewHasanatService(cfg.LetterCountsPath)
	if err != nil {
		zapLogger.Fatal("Failed to load letter counts", zap.Error(err))
	}

	streakService := service.NewStreakService(remoteClient, loc)
	syncManager := service.NewSyncManager(store, remoteClient, streakService, bus, cfg.Sync.Interval)
	checkinService := service.NewCheckinService(store, remoteClient, syncManager, loc)

	syncManager.Start()
	defer syncManager.Close()

	subscriber := realtime.New(cfg.Remote.RealtimeURL, bus)
	defer subscriber.Close()

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewCheckinRoutes(a, checkinService)
	api.NewStreakRoutes(a, streakService)
	api.NewHasanatRoutes(a, hasanatService)
	api.NewSyncRoutes(a, syncManager)
	api.NewSessionRoutes(a, subscriber)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

// newLocalStore selects the durable store, falling back to the
// in-memory one when no path is configured or the database cannot be
// opened. In fallback mode offline capture is best-effort only.
func newLocalStore(cfg *Config, zapLogger *zap.Logger) service.LocalQueue {
	now := func() int64 { return time.Now().UnixMilli() }

	if cfg.LocalStore.Path == "" {
		zapLogger.Warn("no local store path configured, using in-memory queue")
		return localstore.NewMemory(now)
	}

	store, err := localstore.NewSQLite(cfg.LocalStore, now)
	if err != nil {
		zapLogger.Warn("local database unavailable, using in-memory queue", zap.Error(err))
		return localstore.NewMemory(now)
	}
	return store
}
