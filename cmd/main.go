package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/repflow/internal/config"
	"github.com/mansoorceksport/repflow/internal/logging"
	"github.com/mansoorceksport/repflow/internal/server"
	"github.com/mansoorceksport/repflow/internal/telemetry"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const (
	janitorInterval = time.Minute
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.Setup(logging.SetupParams{
		Level:    cfg.Log.Level,
		JSON:     cfg.Log.JSON,
		FileName: cfg.Log.FileName,
		Stdout:   true,
	})

	log.Info("Starting RepFlow Guided Workout Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    otlpHeaders(cfg.OTEL),
		URLPath:        cfg.OTEL.URLPath,
		Insecure:       cfg.OTEL.Insecure,
		SampleRatio:    cfg.OTEL.SampleRatio,
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Warnf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(flushCtx); err != nil {
			log.Warnf("Error shutting down OpenTelemetry: %v", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	mongoClient, err := connectMongo(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Info("✓ MongoDB connected")

	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()
	log.Info("✓ Redis connected")

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     mongoClient.Database(cfg.MongoDB.Database),
		RedisClient: redisClient,
		Metrics:     metrics,
	})

	go app.Guided.RunJanitor(ctx, janitorInterval, cfg.Guided.IdleTimeout)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down gracefully...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
	}()

	log.Infof("🚀 Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Errorf("Server stopped: %v", err)
	}

	// Flushes the final snapshot of every live session to Redis.
	stop()
	app.Guided.Close()
	log.Info("✓ Guided sessions saved")
}

// otlpHeaders builds the Grafana Cloud Basic auth header from instanceId:apiToken.
// A local collector needs none.
func otlpHeaders(cfg config.OTELConfig) map[string]string {
	if cfg.InstanceID == "" && cfg.Token == "" {
		return nil
	}
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.InstanceID + ":" + cfg.Token))
	return map[string]string{"Authorization": "Basic " + creds}
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
		opts.SetMonitor(otelmongo.NewMonitor())
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
