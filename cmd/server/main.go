package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"fittrack/fitness-app/internal/api"
	"fittrack/fitness-app/internal/config"
	"fittrack/fitness-app/internal/email"
	"fittrack/fitness-app/internal/generator"
	"fittrack/fitness-app/internal/logging"
	"fittrack/fitness-app/internal/metrics"
	"fittrack/fitness-app/internal/repository"
	"fittrack/fitness-app/internal/repository/memory"
	"fittrack/fitness-app/internal/repository/mongo"
	"fittrack/fitness-app/internal/service"
	"fittrack/fitness-app/internal/storage"
)

const (
	sessionSweepInterval = 5 * time.Minute
	sessionMaxIdle       = 3 * time.Hour
	limiterIdle          = 10 * time.Minute
)

// @title FitTrack API
// @version 1.0
// @description API for fitness profiles, generated workout plans, live workout sessions and history.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	hostname, _ := os.Hostname()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.Logging.File,
		LogToStdout:      cfg.Logging.Stdout,
		LogLevel:         cfg.Logging.Level,
		LogFormatJSON:    cfg.Logging.JSON,
		Environment:      cfg.Logging.Environment,
		SentryDSN:        cfg.Logging.SentryDSN,
		SentryServerName: hostname,
	})
	log.Infoln("starting FitTrack server ...")

	if cfg.JWT.Secret == "" {
		log.Fatalln("jwt.secret must be set (JWT_SECRET)")
	}

	// --- Persistence ---
	var store *repository.Store
	switch cfg.Database.Driver {
	case "memory":
		log.Warnln("using in-memory storage, data is lost on restart")
		store = memory.NewStore()
	default:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("could not connect to MongoDB: %s", err)
		}
		defer func() {
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Errorf("failed to disconnect MongoDB: %s", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.Infof("connected to MongoDB database %s", cfg.Database.Name)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			mongo.EnsureIndexes(ctx, appDB)
			log.Debugln("index creation completed")
		}()
		store = mongo.NewStore(appDB)
	}

	// --- Object storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %s", err)
		}
	} else {
		log.Infoln("object storage disabled, exercise videos are unavailable")
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("fittrack", "server", reg)

	strategy := generator.New(cfg.Completion, func(operation string, _ error) {
		metricsManager.CounterGenerationFallback.WithLabelValues(operation).Inc()
	})

	// --- Services ---
	blocklist := service.NewTokenBlocklist(0, nil)
	setupStatus := service.NewSetupStatusService(store.Profiles, cfg.SetupCache.SizeBytes, cfg.SetupCache.TTL)
	mailer := email.NewService(cfg.Mail)
	if !mailer.IsEnabled() {
		log.Warnln("mail is not configured, new accounts are confirmed without a mailed link")
	}

	authService := service.NewAuthService(store.Users, mailer, blocklist, service.AuthConfig{
		Secret:                 cfg.JWT.Secret,
		Expiration:             cfg.JWT.Expiration,
		VerificationExpiration: cfg.JWT.VerificationExpiration,
		BaseURL:                cfg.Mail.BaseURL,
	}, nil)
	exerciseService := service.NewExerciseService(store.Exercises, fileStorage, nil)
	sessionService := service.NewSessionService(store, metricsManager, service.SessionOptions{})
	defer sessionService.Close()

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	added, err := exerciseService.SeedDefaults(seedCtx)
	seedCancel()
	if err != nil {
		log.Errorf("failed to seed the exercise catalog: %s", err)
	} else if added > 0 {
		log.Infof("seeded %d default exercises", added)
	}

	services := api.Services{
		Auth:        authService,
		Profile:     service.NewProfileService(store.Profiles, setupStatus, nil),
		SetupStatus: setupStatus,
		Exercise:    exerciseService,
		Plan:        service.NewPlanService(store, strategy, metricsManager),
		Session:     sessionService,
		History:     service.NewHistoryService(store, strategy),
		Demo:        service.NewDemoService(store, nil, time.Now().UnixNano()),
	}

	// --- HTTP ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	opts := api.RouterOptions{
		Metrics:  metricsManager,
		Gatherer: reg,
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.PerSecond > 0 && cfg.RateLimit.AuthPerMinute > 0 {
		opts.Limiter = api.NewRateLimiter(rate.Every(time.Second/time.Duration(cfg.RateLimit.PerSecond)), cfg.RateLimit.Burst, limiterIdle)
		opts.AuthLimiter = api.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit.AuthPerMinute)), cfg.RateLimit.AuthPerMinute, limiterIdle)
	}
	api.SetupRoutes(router, services, opts)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if evicted := sessionService.EvictIdle(sessionMaxIdle); evicted > 0 {
					log.Infof("evicted %d idle workout sessions", evicted)
				}
			}
		}
	}()

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSig := <-quit
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)

	stopSweep()
	<-sweepDone

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}

	log.Infoln("server exiting")
}
