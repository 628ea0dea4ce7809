package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"change-audit/internal/config"
	"change-audit/internal/metrics"
	"change-audit/internal/publisher"
	"change-audit/internal/repository"
	"change-audit/internal/server"
	"change-audit/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	log.Info("Starting database migration...")
	m, err := migrate.New(cfg.DB.MigrationsPath, cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not create migrate instance")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.WithField("error", err).Fatal("Could not apply migration")
	}
	log.Info("Database migration finished successfully.")

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.WithField("error", err).Fatal("Could not ping the database")
	}
	log.Info("Successfully connected to the PostgreSQL database.")

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Create repositories
	configurationRepository := repository.NewPostgresConfigurationRepository(db)

	var sink service.AuditSink
	switch cfg.Audit.Sink {
	case config.SinkKafka:
		kafkaSink, err := publisher.NewAuditSink(cfg.Kafka.BootstrapServers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create Kafka audit sink")
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	case config.SinkPostgres:
		sink = repository.NewPostgresAuditLogRepository(db)
	default:
		log.WithField("sink", cfg.Audit.Sink).Fatal("Unknown audit sink")
	}

	// Create services
	policyCache := service.NewPolicyCache(cfg.Audit.PolicyCacheSize, cfg.Audit.PolicyCacheTTL)
	resolver := service.NewPolicyResolver(configurationRepository, policyCache, appMetrics)
	writer := service.NewAuditWriter(sink, appMetrics)
	interceptor := service.NewInterceptor(resolver, writer, service.Options{
		StopOnWriteError: cfg.Audit.StopOnWriteError,
		AtomicBatch:      cfg.Audit.AtomicBatch,
	}, appMetrics)

	log.WithFields(log.Fields{
		"sink":                cfg.Audit.Sink,
		"stop_on_write_error": cfg.Audit.StopOnWriteError,
		"atomic_batch":        cfg.Audit.AtomicBatch,
		"policy_cache_size":   cfg.Audit.PolicyCacheSize,
	}).Info("Audit interceptor configured")

	// Create server
	srv := server.NewServer(interceptor, db)

	// Setup Echo
	e := echo.New()
	e.HideBanner = true

	e.GET("/health", srv.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/mutations", srv.InterceptMutation)

	go func() {
		log.WithField("port", cfg.Port).Info("Change audit service is starting with Echo")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err).Fatal("Echo server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down change audit service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithField("error", err).Error("Echo server shutdown failed")
	}
}
