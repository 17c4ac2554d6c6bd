package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// KafkaProducer publishes lifecycle events. It satisfies the store service's
// EventPublisher interface.
type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaProducer(brokers string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *KafkaProducer) PublishOrderCreated(order *models.Order) error {
	return p.publish(OrderCreatedTopic, order.OrderID, OrderCreatedEvent{
		OrderID:      order.OrderID,
		Salesperson:  order.Salesperson,
		CompanyName:  order.CompanyName,
		DeliveryDate: order.DeliveryDate,
		ItemCount:    len(order.Items),
		CreatedAt:    order.CreatedAt,
		EventTime:    time.Now(),
	})
}

func (p *KafkaProducer) PublishStatusChanged(order *models.Order, from models.Status) error {
	topic := statusTopic(order.Status)
	if topic == "" {
		return fmt.Errorf("no topic for status %s", order.Status)
	}
	event := StatusChangedEvent{
		OrderID:     order.OrderID,
		From:        from,
		To:          order.Status,
		Salesperson: order.Salesperson,
		EventTime:   time.Now(),
	}
	if order.DispatchInfo != nil {
		event.DriverName = order.DispatchInfo.DriverName
		event.VehicleName = order.DispatchInfo.VehicleName
	}
	return p.publish(topic, order.OrderID, event)
}

func (p *KafkaProducer) PublishOrderDeleted(orderID string) error {
	return p.publish(OrderDeletedTopic, orderID, OrderDeletedEvent{
		OrderID:   orderID,
		EventTime: time.Now(),
	})
}

func (p *KafkaProducer) publish(topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("Failed to send message to Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"order_id":  key,
	}).Info("Event published to Kafka")
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
