package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one message body. A returned error rejects the
// message without requeue.
type HandlerFunc func(ctx context.Context, body []byte) error

// Consumer reads a durable queue and keeps reconnecting until its context
// is cancelled.
type Consumer struct {
	URL     string
	Queue   string
	Handler HandlerFunc
	Log     *log.Logger

	// Prefetch bounds unacknowledged deliveries; 0 means 50.
	Prefetch int
	// MaxBackoff caps the reconnect delay; 0 means 30s.
	MaxBackoff time.Duration
}

// Run dials the broker and consumes until ctx is done. Dial failures back
// off exponentially from one second up to MaxBackoff.
func (c *Consumer) Run(ctx context.Context) error {
	logger := c.Log
	if logger == nil {
		logger = log.Default()
	}
	maxBackoff := c.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logger.Warn("dial failed", "err", err, "retry_in", backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = time.Second
		logger.Info("connected", "queue", c.Queue)

		err = c.consumeLoop(ctx, conn, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("consume loop ended, reconnecting", "err", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	prefetch := c.Prefetch
	if prefetch <= 0 {
		prefetch = 50
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		logger.Warn("set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handler(ctx, d.Body); err != nil {
				logger.Error("handle message failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	cur *= 2
	if cur > max {
		return max
	}
	return cur
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
