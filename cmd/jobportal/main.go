package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/jobportal/internal/jobportal/auth"
	"github.com/gartstein/jobportal/internal/jobportal/config"
	"github.com/gartstein/jobportal/internal/jobportal/controller"
	"github.com/gartstein/jobportal/internal/jobportal/db"
	"github.com/gartstein/jobportal/internal/jobportal/events"
	"github.com/gartstein/jobportal/internal/jobportal/handlers"
	"github.com/gartstein/jobportal/internal/jobportal/ratelimit"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	configPath := config.DefaultPath
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		// The logger level comes from the config.
		fallback, _ := zap.NewProduction()
		fallback.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	repo, err := db.NewRepository(cfg.Database(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic, cfg.EventQueueSize)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AuditGroupID != "" {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroupID, cfg.Topic, logger)
		consumer.RegisterHandler(events.AuditRecorder(repo, logger))
		consumer.Start(ctx)
		defer func() {
			cancel()
			consumer.Close()
		}()
	}

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		counter, err := ratelimit.NewRedisCounter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer counter.Close()
		limiter = ratelimit.NewLimiter(counter, cfg.RateLimitPerMinute, logger)
	}

	services := controller.New(repo, producer, logger)
	gateway, err := handlers.NewGateway(services, limiter, logger)
	if err != nil {
		logger.Fatal("failed to register HTTP routes", zap.Error(err))
	}

	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterHTTPHandler(gateway.Handler(cfg.JWTSecret))

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
