// Package queue carries ticket emails over RabbitMQ: the payload format, a
// publisher used by the HTTP server and a reconnecting consumer used by the
// email worker.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinebook/internal/model"
)

// TicketEmailQueue is the durable queue ticket emails travel on.
const TicketEmailQueue = "ticket.email"

// DecodeTicketEmail parses a queue message body. Messages without a
// recipient or seats are rejected so the consumer can drop them.
func DecodeTicketEmail(body []byte) (model.TicketEmail, error) {
	var msg model.TicketEmail
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal: %w", err)
	}
	if strings.TrimSpace(msg.Email) == "" {
		return msg, errors.New("ticket email without recipient")
	}
	if len(msg.Seats) == 0 {
		return msg, errors.New("ticket email without seats")
	}
	return msg, nil
}
