package main

import (
	"context"
	"strings"

	"anoa.com/softdesk/internal/bootstrap"
	"anoa.com/softdesk/internal/config"
	"anoa.com/softdesk/internal/memstore"
	searchService "anoa.com/softdesk/internal/modules/search/service"
	"anoa.com/softdesk/internal/server"
	"anoa.com/softdesk/pkg/cache"
	"anoa.com/softdesk/pkg/database"
	"anoa.com/softdesk/pkg/logger"
	"anoa.com/softdesk/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("failed to load config: %v", err)
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Setup()

	ctx := context.Background()

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Warnf("redis unavailable, rate limits disabled: %v", err)
		redisClient = nil
	}

	var repos server.Repositories
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Log.Warn("using in-memory store, data is lost on restart")
		repos = server.NewMemoryRepositories(memstore.New())
	default:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		if err := bootstrap.Migrate(db); err != nil {
			logger.Log.Fatalf("migration failed: %v", err)
		}
		repos = server.NewGormRepositories(db, redisClient)
	}

	if cfg.SeedUserEmail != "" {
		if err := bootstrap.SeedUser(ctx, repos.Users, cfg.SeedUserEmail, cfg.SeedUserPassword); err != nil {
			logger.Log.Fatalf("failed to seed user: %v", err)
		}
	}

	var meili searchService.MeiliSearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		meili = searchService.NewMeiliSearchService(meiliClient)
	}

	srv := server.NewServer(cfg, repos, redisClient, meili)

	logger.Log.WithField("port", cfg.Port).Info("server starting")
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatalf("server exited with error: %v", err)
	}
}
