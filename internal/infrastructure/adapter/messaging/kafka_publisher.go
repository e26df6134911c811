package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/messaging"
	"github.com/segmentio/kafka-go"
)

// Config represents Kafka producer configuration
type Config struct {
	Brokers      []string      `mapstructure:"kafka_brokers"`
	Topic        string        `mapstructure:"kafka_topic"`
	WriteTimeout time.Duration `mapstructure:"kafka_write_timeout"`
	RequiredAcks int           `mapstructure:"kafka_required_acks"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("at least one kafka broker is required")
	}
	if c.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

// KafkaPublisher implements the event publisher port on top of a Kafka writer.
// Each Publish is a single synchronous delivery attempt; retries belong to
// the caller.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger coreport.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher
func NewKafkaPublisher(config *Config, logger coreport.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: config.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
		// The caller owns retry policy; a failed write must surface immediately
		MaxAttempts: 1,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  config.Topic,
		logger: logger,
	}
}

// Publish sends a single transaction event keyed by its business transaction
// ID so all events for one transaction land on the same partition
func (p *KafkaPublisher) Publish(ctx context.Context, event entity.TransactionEvent) (*messaging.PublishAck, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotSerializable, err.Error())
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return nil, p.classifyWriteError(event.TransactionID, err)
	}

	p.logger.Debug("Event published", map[string]any{
		"transaction_id": event.TransactionID,
		"topic":          p.topic,
		"status":         event.Status,
	})

	return &messaging.PublishAck{
		Topic: p.topic,
	}, nil
}

// classifyWriteError maps transport failures onto the domain delivery errors
func (p *KafkaPublisher) classifyWriteError(transactionID string, err error) error {
	p.logger.Warn("Kafka write failed", map[string]any{
		"transaction_id": transactionID,
		"topic":          p.topic,
		"error":          err.Error(),
	})

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %s", errs.ErrChannelTimeout, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", errs.ErrChannelTimeout, err.Error())
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return fmt.Errorf("%w: %s", errs.ErrChannelUnavailable, err.Error())
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %s", errs.ErrChannelUnavailable, err.Error())
	}

	return fmt.Errorf("%w: %s", errs.ErrChannelUnavailable, err.Error())
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
