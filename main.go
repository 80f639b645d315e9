package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/auth"
	"github.com/horoscape/horoscape-engine/pkg/config"
	"github.com/horoscape/horoscape-engine/pkg/database"
	"github.com/horoscape/horoscape-engine/pkg/generators"
	"github.com/horoscape/horoscape-engine/pkg/handlers"
	"github.com/horoscape/horoscape-engine/pkg/logging"
	"github.com/horoscape/horoscape-engine/pkg/middleware"
	"github.com/horoscape/horoscape-engine/pkg/repositories"
	"github.com/horoscape/horoscape-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run over database/sql; the pgx stdlib driver shares the
	// same connection settings as the pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		_ = migrationDB.Close()
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	userRepo := repositories.NewUserRepository(db)
	segmentRepo := repositories.NewSegmentRepository(db)
	ruleRepo := repositories.NewRuleRepository(db)
	themeRepo := repositories.NewThemeRepository(db)
	styleRepo := repositories.NewStyleRepository(db)
	dailyRepo := repositories.NewDailyContentRepository(db)

	textGen, err := generators.NewAnthropicTextGenerator(&generators.TextConfig{
		APIKey:    cfg.TextGen.APIKey,
		Model:     cfg.TextGen.Model,
		MaxTokens: cfg.TextGen.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create text generator", zap.Error(err))
	}

	imgGen, err := generators.NewOpenAIImageGenerator(&generators.ImageConfig{
		APIKey: cfg.ImageGen.APIKey,
		Model:  cfg.ImageGen.Model,
		Size:   cfg.ImageGen.Size,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create image generator", zap.Error(err))
	}

	configService := services.NewDailyConfigService(segmentRepo, ruleRepo, themeRepo, styleRepo, logger)
	contentService := services.NewContentService(
		userRepo, dailyRepo, styleRepo, configService,
		services.NewSeededSampler(time.Now().UnixNano()), textGen, imgGen, logger)

	authMiddleware := auth.NewMiddleware(cfg.Auth.SigningKey, cfg.Auth.EnableVerification, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProfileHandler(userRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDailyContentHandler(contentService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting horoscape-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
