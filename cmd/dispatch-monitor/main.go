// dispatch-monitor tails the order lifecycle topics and keeps running tallies
// of created, dispatched, delivered, and deleted orders. Operations keep it on
// a side screen during delivery hours.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/internal/events"
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	groupID := getEnv("MONITOR_GROUP_ID", "dispatch-monitor-group")

	tally := newTally(logger)

	consumer, err := events.NewKafkaConsumer(kafkaBrokers, groupID, tally, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create lifecycle consumer")
	}
	defer consumer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Consumer stopped")
		}
	}()

	logger.Info("Dispatch monitor started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tally.print()
		case <-ctx.Done():
			logger.Info("Shutting down dispatch monitor...")
			tally.print()
			return
		}
	}
}

type tally struct {
	mu         sync.Mutex
	created    int
	dispatched int
	delivered  int
	deleted    int
	logger     *logrus.Logger
}

func newTally(logger *logrus.Logger) *tally {
	return &tally{logger: logger}
}

func (t *tally) HandleOrderCreated(event events.OrderCreatedEvent) error {
	t.mu.Lock()
	t.created++
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"order_id":    event.OrderID,
		"salesperson": event.Salesperson,
		"company":     event.CompanyName,
	}).Info("Order created")
	return nil
}

func (t *tally) HandleStatusChanged(event events.StatusChangedEvent) error {
	t.mu.Lock()
	switch event.To {
	case models.StatusDispatched:
		t.dispatched++
	case models.StatusDelivered:
		t.delivered++
	}
	t.mu.Unlock()

	fields := logrus.Fields{
		"order_id": event.OrderID,
		"from":     event.From,
		"to":       event.To,
	}
	if event.DriverName != "" {
		fields["driver"] = event.DriverName
		fields["vehicle"] = event.VehicleName
	}
	t.logger.WithFields(fields).Info("Order status changed")
	return nil
}

func (t *tally) HandleOrderDeleted(event events.OrderDeletedEvent) error {
	t.mu.Lock()
	t.deleted++
	t.mu.Unlock()

	t.logger.WithField("order_id", event.OrderID).Warn("Order deleted")
	return nil
}

func (t *tally) print() {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Printf("\n=== Lifecycle Tally (%s) ===\n", time.Now().Format(time.RFC3339))
	fmt.Printf("Created:    %d\n", t.created)
	fmt.Printf("Dispatched: %d\n", t.dispatched)
	fmt.Printf("Delivered:  %d\n", t.delivered)
	fmt.Printf("Deleted:    %d\n", t.deleted)
	fmt.Printf("============================\n\n")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
