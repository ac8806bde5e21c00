package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-admin/api/swagger"
	"github.com/noah-isme/course-admin/internal/handler"
	"github.com/noah-isme/course-admin/internal/middleware"
	"github.com/noah-isme/course-admin/internal/models"
	"github.com/noah-isme/course-admin/internal/repository"
	"github.com/noah-isme/course-admin/internal/service"
	"github.com/noah-isme/course-admin/pkg/cache"
	"github.com/noah-isme/course-admin/pkg/config"
	"github.com/noah-isme/course-admin/pkg/database"
	"github.com/noah-isme/course-admin/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-admin/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-admin/pkg/middleware/requestid"
)

// @title Course Admin API
// @version 1.0.0
// @description Course catalog backend for the course form client
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	mintFor := flag.Int64("mint-token", 0, "print a signed token for the given instructor id and exit")
	mintRole := flag.String("role", string(models.RoleInstructor), "role used with -mint-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})
	if *mintFor > 0 {
		token, err := tokens.Issue(*mintFor, models.UserRole(*mintRole))
		if err != nil {
			log.Fatalf("failed to mint token: %v", err)
		}
		fmt.Println(token)
		return
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelBoot()

	db, err := database.NewPostgres(bootCtx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		logr.Info("migrations applied")
	}

	var redisClient *redis.Client
	if cfg.Courses.CacheEnabled {
		redisClient, err = cache.NewRedis(bootCtx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, course cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Courses.CacheTTL, logr, redisClient != nil)
	courseSvc := service.NewCourseService(repository.NewCourseRepository(db), cacheSvc, metrics, validator.New(), logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	metricsHandler := handler.NewMetricsHandler(metrics, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := cacheRepo.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes := handler.CourseRoutes{Courses: handler.NewCourseHandler(courseSvc)}
	if cfg.JWT.Enabled {
		routes.Auth = middleware.JWT(tokens)
	} else {
		logr.Warn("authentication disabled, course mutations are open")
	}
	handler.RegisterCourseRoutes(r.Group(cfg.APIPrefix), routes)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
