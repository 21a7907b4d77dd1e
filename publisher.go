package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEvent is published after a write has been committed.
type ExpenseEvent struct {
	Type      string    `json:"type"`
	ExpenseID int64     `json:"expense_id"`
	Category  *string   `json:"category,omitempty"`
	Amount    *string   `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event ExpenseEvent) error
	Close() error
}

// nopPublisher is used when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ExpenseEvent) error { return nil }
func (nopPublisher) Close() error                                { return nil }

// RabbitMQPublisher is an implementation of EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQPublisher(url, queueName string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queue, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &RabbitMQPublisher{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// Publish sends the event to the queue through the default exchange.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event ExpenseEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		"",           // default exchange
		p.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	slog.DebugContext(ctx, "Published expense event",
		"type", event.Type,
		"expense_id", event.ExpenseID,
		"queue", p.queue.Name)
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// newPublisher returns a RabbitMQ publisher when a broker is configured.
func newPublisher(cfg *Config) (EventPublisher, error) {
	if cfg.AMQPURL == "" {
		return nopPublisher{}, nil
	}
	return NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPQueue)
}
