// Package mailer renders and sends ticket confirmation emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/queue"
	"github.com/iliyamo/cinebook/internal/utils"
)

//go:embed templates/ticket.html
var templates embed.FS

var ticketTmpl = template.Must(template.ParseFS(templates, "templates/ticket.html"))

// Sender delivers built messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer turns ticket payloads into HTML emails.
type Mailer struct {
	From   string
	Sender Sender
	Log    *log.Logger
}

// New returns a Mailer that sends through the configured SMTP server.
func New(cfg config.MailConfig, logger *log.Logger) *Mailer {
	return &Mailer{
		From:   cfg.From,
		Sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		Log:    logger,
	}
}

type ticketView struct {
	FilmName  string
	Cinema    string
	Time      string
	Seats     string
	Total     string
	OrderCode string
	HasQR     bool
}

// Build renders the email for msg. When the message carries an order code
// the ticket QR code is attached as a PNG.
func (m *Mailer) Build(msg model.TicketEmail) (*gomail.Message, error) {
	view := ticketView{
		FilmName:  msg.FilmName,
		Cinema:    msg.Cinema,
		Time:      msg.Time,
		Seats:     strings.Join(msg.Seats, ", "),
		Total:     utils.FormatVND(msg.TotalPrice),
		OrderCode: msg.OrderCode,
	}

	var qr []byte
	if msg.OrderCode != "" {
		png, err := utils.QRCodePNG(msg.OrderCode, utils.TicketQRSize)
		if err != nil {
			return nil, fmt.Errorf("ticket qr: %w", err)
		}
		qr = png
		view.HasQR = true
	}

	var body bytes.Buffer
	if err := ticketTmpl.Execute(&body, view); err != nil {
		return nil, fmt.Errorf("render ticket email: %w", err)
	}

	gm := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	gm.SetHeader("From", m.From)
	gm.SetHeader("To", msg.Email)
	gm.SetHeader("Subject", "Your ticket for "+msg.FilmName)
	gm.SetBody("text/html", body.String())

	if qr != nil {
		name := "ticket-" + msg.OrderCode + ".png"
		gm.Attach(name, gomail.Rename(name), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(qr))
			return err
		}))
	}
	return gm, nil
}

// Send builds and delivers one ticket email.
func (m *Mailer) Send(_ context.Context, msg model.TicketEmail) error {
	gm, err := m.Build(msg)
	if err != nil {
		return err
	}
	if err := m.Sender.DialAndSend(gm); err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}
	if m.Log != nil {
		m.Log.Info("ticket email sent", "to", msg.Email, "order", msg.OrderCode, "seats", len(msg.Seats))
	}
	return nil
}

// HandleMessage is the queue handler of the email worker.
func (m *Mailer) HandleMessage(ctx context.Context, body []byte) error {
	msg, err := queue.DecodeTicketEmail(body)
	if err != nil {
		return err
	}
	return m.Send(ctx, msg)
}
