package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/model"
)

// TicketNotifier hands a purchased ticket to the email pipeline.
type TicketNotifier interface {
	NotifyTicket(ctx context.Context, msg model.TicketEmail) error
}

// TicketPublisher is the subset of the queue publisher used here.
type TicketPublisher interface {
	PublishTicketEmail(ctx context.Context, msg model.TicketEmail) error
}

// NewTicketNotifier picks the notifier for the configured mode.
func NewTicketNotifier(cfg config.Config, pub TicketPublisher) TicketNotifier {
	switch cfg.NotifyMode {
	case config.NotifyHTTP:
		return NewHTTPNotifier(cfg.NotifyURL, nil)
	case config.NotifyNone:
		return NoopNotifier{}
	default:
		return QueueNotifier{Publisher: pub}
	}
}

// QueueNotifier publishes straight to the ticket.email queue.
type QueueNotifier struct {
	Publisher TicketPublisher
}

func (n QueueNotifier) NotifyTicket(ctx context.Context, msg model.TicketEmail) error {
	return n.Publisher.PublishTicketEmail(ctx, msg)
}

// HTTPNotifier POSTs the ticket JSON to an email endpoint and forgets
// about it: the response status and body are ignored, only a failure to
// deliver the request is reported.
type HTTPNotifier struct {
	URL    string
	Client *http.Client
}

func NewHTTPNotifier(url string, client *http.Client) *HTTPNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPNotifier{URL: url, Client: client}
}

func (n *HTTPNotifier) NotifyTicket(ctx context.Context, msg model.TicketEmail) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NoopNotifier drops every ticket.
type NoopNotifier struct{}

func (NoopNotifier) NotifyTicket(context.Context, model.TicketEmail) error { return nil }
