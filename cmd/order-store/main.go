package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/internal/events"
	"github.com/alfajarsadiq/admincontrol/internal/orderstore"
	"github.com/alfajarsadiq/admincontrol/internal/wsfeed"
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg := orderstore.LoadConfig()

	var repo orderstore.Repository
	switch cfg.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		for i := 0; i < 30; i++ {
			if err := db.Ping(); err == nil {
				logger.Info("Database connection established")
				break
			}
			logger.Info("Waiting for database...")
			time.Sleep(2 * time.Second)
		}

		pg := orderstore.NewPostgresRepository(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			logger.WithError(err).Fatal("Failed to create tables")
		}
		repo = pg

	case "memory":
		repo = orderstore.NewMemoryRepository()

	default:
		logger.WithField("backend", cfg.Backend).Fatal("Unknown store backend")
	}

	service := orderstore.NewService(repo, logger)

	if cfg.Backend == "memory" {
		seedDemoData(service, cfg, logger)
	}

	if cfg.KafkaBrokers != "" {
		producer, err := events.NewKafkaProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
		service.SetEventPublisher(producer)
	} else {
		logger.Info("KAFKA_BROKERS not set, event publishing disabled")
	}

	hub := wsfeed.NewHub(logger)
	go hub.Run()
	service.SetStatusFeed(hub)

	handler := orderstore.NewHandler(service, logger)
	router := handler.Router()
	router.Handle("/ws", hub).Methods("GET")
	router.Use(loggingMiddleware(logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.Backend,
		}).Info("Starting order store")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

// seedDemoData gives memory mode a usable catalog so the dashboard works out
// of the box.
func seedDemoData(service *orderstore.Service, cfg orderstore.Config, logger *logrus.Logger) {
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, "Administrator", cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin account")
	}

	for _, name := range []string{"Asha", "Ravi"} {
		if _, err := service.CreateSalesperson(ctx, name, "changeme"); err != nil {
			logger.WithError(err).Fatal("Failed to seed salesperson")
		}
	}

	products := []struct{ name, units string }{
		{"Basmati Rice 5kg", "bags"},
		{"Sunflower Oil 1L", "bottles"},
		{"Chakki Atta 10kg", "bags"},
	}
	for _, p := range products {
		if _, err := service.CreateProduct(ctx, p.name, p.units); err != nil {
			logger.WithError(err).Fatal("Failed to seed product")
		}
	}

	logger.Info("Seeded demo data for memory backend")
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).Milliseconds(),
			}).Info("Request completed")
		})
	}
}
