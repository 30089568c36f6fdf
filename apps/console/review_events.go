package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	reviewExchangeName = "citydesk.reviews"
	reviewExchangeKind = "topic"
)

// reviewDecision is one completed review, published as an event and mailed
// as a digest.
type reviewDecision struct {
	Kind           ReviewKind `json:"kind"`
	TargetID       int        `json:"targetId"`
	Title          string     `json:"title"`
	Action         string     `json:"action"`
	PreviousStatus string     `json:"previousStatus"`
	Status         string     `json:"status"`
	WaterLevel     string     `json:"waterLevel,omitempty"`
	Note           string     `json:"note,omitempty"`
	Reviewer       string     `json:"reviewer"`
	RequestID      string     `json:"requestId,omitempty"`
	DecidedAt      time.Time  `json:"decidedAt"`
}

// routingKey is review.<kind>.<status>, e.g. review.flood_report.approved.
func (d reviewDecision) routingKey() string {
	status := strings.ToLower(d.Status)
	if d.Action != "review" {
		status = d.Action
	}
	return fmt.Sprintf("review.%s.%s", d.Kind, status)
}

type reviewEventPublisher interface {
	Publish(ctx context.Context, decision reviewDecision) error
	Close() error
}

type amqpReviewPublisher struct {
	conn *amqp.Connection

	mu      sync.Mutex
	channel *amqp.Channel
}

func newAMQPReviewPublisher(url string) (*amqpReviewPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(reviewExchangeName, reviewExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &amqpReviewPublisher{conn: conn, channel: ch}, nil
}

func (p *amqpReviewPublisher) Publish(ctx context.Context, decision reviewDecision) error {
	body, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal review decision: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(
		ctx,
		reviewExchangeName,
		decision.routingKey(),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    decision.DecidedAt,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish review decision: %w", err)
	}
	return nil
}

func (p *amqpReviewPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// recordReviewDecision runs the side effects of a successful review. Neither
// can fail the review; errors are logged.
func (a *App) recordReviewDecision(ctx context.Context, decision reviewDecision) {
	if a.events != nil {
		if err := a.events.Publish(ctx, decision); err != nil {
			a.log.Warn("publish review event failed", "kind", decision.Kind, "id", decision.TargetID, "error", err)
		} else {
			a.log.Info("review event published", "routing_key", decision.routingKey(), "id", decision.TargetID)
		}
	}
	a.notifyReviewDecision(ctx, decision)
}
