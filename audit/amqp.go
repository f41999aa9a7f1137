package audit

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/octabyte/dietician-client/utils"
)

// AMQPConfig configures the publisher side of the audit pipeline.
type AMQPConfig struct {
	// URI is the RabbitMQ connection URI, credentials included.
	URI string
	// Exchange to publish to; empty means the default exchange.
	Exchange string
	// RoutingKey for audit events, e.g. "audit.auth".
	RoutingKey string
}

// AMQPSink publishes events as persistent JSON messages.
type AMQPSink struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	config AMQPConfig
}

func NewAMQPSink(cfg AMQPConfig) (*AMQPSink, error) {
	conn, err := amqp.Dial(cfg.URI)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &AMQPSink{conn: conn, ch: ch, config: cfg}, nil
}

func (s *AMQPSink) Emit(ctx context.Context, event Event) error {
	body, err := utils.StructToBytes(event)
	if err != nil {
		return err
	}

	message := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.Timestamp,
		Type:         string(event.Type),
	}

	return s.ch.PublishWithContext(
		ctx,
		s.config.Exchange,
		s.config.RoutingKey,
		false, // mandatory
		false, // immediate
		message,
	)
}

func (s *AMQPSink) Close() error {
	return s.conn.Close()
}
