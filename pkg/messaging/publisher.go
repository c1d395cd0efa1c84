// Package messaging publishes ledger events to RabbitMQ.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends an encoded message with a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg Message) error
	Close() error
}

// Message is a broker-agnostic envelope.
type Message struct {
	ID            string
	Type          string
	CorrelationID string
	Body          []byte
	Timestamp     time.Time
}

// AMQPPublisher publishes persistent JSON messages to a durable direct exchange and
// reconnects lazily after connection loss.
type AMQPPublisher struct {
	url      string
	exchange string
	logger   *zap.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AMQPPublisher{url: url, exchange: exchange, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	p.conn = conn
	p.channel = channel
	return nil
}

// Publish sends msg, reconnecting once if the previous connection dropped.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	err := p.publish(ctx, routingKey, msg)
	if err != nil && isConnectionError(err) {
		p.logger.Warn("amqp connection lost, reconnecting", zap.Error(err))
		p.closeLocked()
		if cerr := p.connect(); cerr != nil {
			return cerr
		}
		err = p.publish(ctx, routingKey, msg)
	}
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     msg.ID,
		Type:          msg.Type,
		CorrelationId: msg.CorrelationID,
		Timestamp:     ts,
		Body:          msg.Body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}

// NoopPublisher discards messages; used when events are disabled.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, string, Message) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection refused", "connection closed", "connection reset", "broken pipe", "eof", "channel/connection is not open"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
