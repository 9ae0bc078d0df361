package relay

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/GlebRadaev/gofood/internal/domain"
)

//go:generate mockgen -source=publisher.go -destination=mock_publisher.go -package=relay

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish keys the message by order id so a hash balancer keeps every order on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(event.OrderID)),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "version", Value: []byte(domain.EventVersion)},
		},
	})
}

// NewKafkaWriter builds a writer for the order events topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
