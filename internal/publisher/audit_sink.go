package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"change-audit/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

const deliveryTimeout = 10 * time.Second

// AuditSink appends audit entries to a Kafka topic, one message per entry.
type AuditSink struct {
	producer *kafka.Producer
	topic    string
}

func NewAuditSink(bootstrapServers, topic string) (*AuditSink, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  bootstrapServers,
		"enable.idempotence": true,
		"acks":               "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("topic", topic).Info("Audit Kafka producer created successfully")

	return &AuditSink{producer: p, topic: topic}, nil
}

// Insert publishes the entry and waits for its delivery report.
func (s *AuditSink) Insert(ctx context.Context, entry domain.AuditEntry) error {
	msg, err := buildMessage(s.topic, entry)
	if err != nil {
		return err
	}

	// Left open: a late delivery report after a timeout must not hit a closed channel.
	deliveryChan := make(chan kafka.Event, 1)

	if err := s.producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		log.WithFields(log.Fields{
			"entity":    entry.EntityName,
			"record_id": entry.RecordID,
			"field":     entry.FieldName,
			"offset":    m.TopicPartition.Offset.String(),
		}).Debug("Audit entry delivered")
		return nil
	case <-time.After(deliveryTimeout):
		return fmt.Errorf("delivery timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildMessage keys the message by record id so every entry of one record
// lands on the same partition.
func buildMessage(topic string, entry domain.AuditEntry) (*kafka.Message, error) {
	if entry.CreatedOn.IsZero() {
		entry.CreatedOn = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(entry.RecordID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: "entityname", Value: []byte(entry.EntityName)},
			{Key: "operation", Value: []byte(entry.Operation)},
		},
	}, nil
}

func (s *AuditSink) Close() {
	log.Info("Closing audit Kafka producer...")
	s.producer.Flush(15 * 1000)
	s.producer.Close()
}
