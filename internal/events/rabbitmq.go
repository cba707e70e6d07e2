package events

import (
	"context"
	"fmt"
	"time"

	"cab_booking/internal/config"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Channel is the part of *amqp091.Channel the publisher needs
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// RabbitPublisher forwards bus events to a topic exchange, routed by event type
type RabbitPublisher struct {
	ch       Channel
	exchange string
	timeout  time.Duration
	logger   zerolog.Logger
}

// ConnectRabbitMQ dials the broker with retries and opens a channel
func ConnectRabbitMQ(cfg config.RabbitMQConfig, logger zerolog.Logger) (*amqp091.Connection, *amqp091.Channel, error) {
	var conn *amqp091.Connection
	var ch *amqp091.Channel
	var err error

	for i := 0; i < 5; i++ {
		conn, err = amqp091.Dial(cfg.URL)
		if err == nil {
			ch, err = conn.Channel()
			if err == nil {
				return conn, ch, nil
			}
			conn.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("RabbitMQ not ready, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
}

// NewRabbitPublisher declares the exchange and returns a publisher over ch
func NewRabbitPublisher(ch Channel, exchange string, logger zerolog.Logger) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{
		ch:       ch,
		exchange: exchange,
		timeout:  5 * time.Second,
		logger:   logger,
	}, nil
}

// Handle publishes one event; it is meant to be passed to EventBus.SubscribeAll
func (p *RabbitPublisher) Handle(event *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         event.Payload,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.CreatedAt,
			Type:         event.Type,
		})
	if err != nil {
		p.logger.Error().Err(err).Str("event", event.Type).Msg("Failed to publish event")
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close closes the underlying channel
func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}
