package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinebook/internal/model"
)

// Publisher sends persistent JSON messages to RabbitMQ. It dials per
// publish, which is plenty for one message per purchase and keeps the
// server free of a long lived connection to babysit.
type Publisher struct {
	URL string
	Log *log.Logger
}

// defaultDialTimeout bounds connect and handshake when the caller's
// context carries no deadline.
const defaultDialTimeout = 5 * time.Second

// dialTimeout derives the connect timeout from ctx so a broker that does
// not answer cannot hold the caller past its deadline.
func dialTimeout(ctx context.Context) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}
	if d := time.Until(dl); d < defaultDialTimeout {
		return d
	}
	return defaultDialTimeout
}

func NewPublisher(url string, logger *log.Logger) *Publisher {
	return &Publisher{URL: url, Log: logger}
}

// PublishTicketEmail publishes msg to the ticket.email queue.
func (p *Publisher) PublishTicketEmail(ctx context.Context, msg model.TicketEmail) error {
	return p.Publish(ctx, TicketEmailQueue, msg)
}

// Publish declares queue (durable) and publishes v as JSON on the default
// exchange. Errors are logged and returned; callers decide whether they
// matter.
func (p *Publisher) Publish(ctx context.Context, queue string, v interface{}) error {
	logger := p.Log
	if logger == nil {
		logger = log.Default()
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := dialTimeout(ctx)
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		logger.Warn("rabbitmq dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("rabbitmq channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		logger.Warn("rabbitmq queue declare failed", "queue", queue, "err", err)
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		logger.Warn("rabbitmq publish failed", "queue", queue, "err", err)
		return err
	}
	logger.Debug("published", "queue", queue, "bytes", len(body))
	return nil
}
