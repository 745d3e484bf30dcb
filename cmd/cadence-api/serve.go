package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/config"
	"github.com/JonnyWalker81/cadence/backend/internal/handlers"
	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/metrics"
	"github.com/JonnyWalker81/cadence/backend/internal/middleware"
	"github.com/JonnyWalker81/cadence/backend/internal/prediction"
	"github.com/JonnyWalker81/cadence/backend/internal/repository"
	"github.com/JonnyWalker81/cadence/backend/internal/service"
	"github.com/JonnyWalker81/cadence/backend/pkg/supabase"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

// shutdownTimeout bounds how long in-flight requests may run after SIGTERM
const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if port != "" {
		cfg.Server.Port = port
	}

	log := logger.NewSlogLogger(cfg.Logging.LoggerConfig())
	logger.SetDefault(log)

	engineCfg, err := cfg.Prediction.EngineConfig()
	if err != nil {
		return err
	}

	log.Info("starting cadence api server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL),
		logger.Float64("decay_factor", engineCfg.DecayFactor),
		logger.Float64("half_life_days", prediction.HalfLife(engineCfg.DecayFactor)),
		logger.String("timezone", engineCfg.Location.String()),
		logger.Duration("model_cache_ttl", cfg.Prediction.CacheTTL),
	)

	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	eventRepo := repository.NewEventRepository(supabaseClient)

	var recorder *metrics.Recorder
	var observer service.PredictionObserver
	if cfg.Metrics.Enabled {
		recorder = metrics.New()
		observer = recorder
	}

	engine := prediction.NewEngine(engineCfg)
	modelCache := prediction.NewModelCache(cfg.Prediction.CacheTTL)
	predictionService := service.NewPredictionService(eventRepo, engine, modelCache, cfg.Prediction.LookbackDays, observer)
	sessionService := service.NewSessionService(eventRepo, predictionService)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(log))
	router.Use(middleware.Logger())
	if recorder != nil {
		router.Use(middleware.Metrics(recorder))
	}
	router.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, "general")
		defer limiter.Stop()
		router.Use(limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"env":           cfg.Server.Env,
			"cached_models": modelCache.Len(),
		})
	})

	if recorder != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(recorder.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(supabaseClient))
	{
		v1.GET("/sessions", sessionHandler.GetSessions)
		v1.POST("/sessions", sessionHandler.CreateSession)
		v1.PATCH("/sessions/:id", sessionHandler.UpdateSession)

		v1.GET("/predictions/next", predictionHandler.GetNextSession)
		v1.GET("/predictions/insights", predictionHandler.GetInsights)
		v1.GET("/predictions/model", predictionHandler.GetModel)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
