package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookheaven/internal/models"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ProductEventsQueue is the durable queue product events are published to.
const ProductEventsQueue = "product_events"

// Channel is the subset of *amqp.Channel the client uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel Channel
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the product
// events queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	client, err := NewClientWithChannel(ch, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	client.conn = conn
	return client, nil
}

// NewClientWithChannel builds a Client on an already open channel.
func NewClientWithChannel(ch Channel, logger *zap.Logger) (*Client, error) {
	if _, err := declareQueue(ch); err != nil {
		return nil, err
	}
	logger.Info("RabbitMQ channel ready", zap.String("queue", ProductEventsQueue))
	return &Client{channel: ch, logger: logger}, nil
}

func declareQueue(ch Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		ProductEventsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", ProductEventsQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// publish sends a persistent JSON message to the queue named by routingKey
// through the default exchange.
func (c *Client) publish(routingKey, msgType string, body []byte, ts time.Time) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	return c.channel.Publish(
		"",         // default exchange
		routingKey, // queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         msgType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ts,
		})
}

// PublishProductEvent publishes event to the product events queue. The event
// type travels in the message Type too, so consumers can route without
// decoding the body.
func (c *Client) PublishProductEvent(event models.ProductEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}
	if err := c.publish(ProductEventsQueue, event.Type, body, event.OccurredAt); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	c.logger.Debug("product event published", zap.String("type", event.Type), zap.String("product_id", event.ProductID))
	return nil
}

// ConsumeProductEvents decodes deliveries from the product events queue and
// hands them to handler in a background goroutine. Successful deliveries are
// acked; decoding or handler failures are nacked, and only handler failures
// are requeued.
func (c *Client) ConsumeProductEvents(handler func(models.ProductEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}
	queue, err := declareQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
		c.logger.Info("product event consumer stopped")
	}()
	return nil
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(models.ProductEvent) error) {
	var event models.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error("dropping undecodable product event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if err := handler(event); err != nil {
		c.logger.Warn("product event handler failed, requeueing", zap.String("type", event.Type), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}
