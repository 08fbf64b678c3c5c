// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
)

// OrderNotifier is told about every completed checkout
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, recipient string) error
}

type mailSender func(ctx context.Context, to, subject, body string) error

type NotificationService struct {
	config *config.Config
	send   mailSender
}

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order!</h2>
	<p>Order <strong>{{.OrderNumber}}</strong> has been received and is being processed.</p>
	<table cellpadding="4">
		<tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
		{{range .Items}}
		<tr><td>{{.ProductName}}</td><td align="center">{{.Quantity}}</td><td align="right">${{.UnitPrice.StringFixed 2}}</td><td align="right">${{.Total.StringFixed 2}}</td></tr>
		{{end}}
	</table>
	<p>Subtotal: ${{.Subtotal.StringFixed 2}}<br>
	Tax: ${{.Tax.StringFixed 2}}<br>
	Shipping: ${{.Shipping.StringFixed 2}}<br>
	<strong>Total: ${{.Total.StringFixed 2}}</strong></p>
	{{with .ShippingAddress}}
	<p>Shipping to:<br>{{.FullName}}<br>{{.Line1}}{{if .Line2}}, {{.Line2}}{{end}}<br>{{.City}}, {{.State}} {{.PostalCode}}<br>{{.Country}}</p>
	{{end}}
	<a href="{{.OrderURL}}">View your order</a>
	<p>Best regards,<br>{{.StoreName}}</p>
</body>
</html>`

var orderConfirmation = template.Must(template.New("order_confirmation").Parse(orderConfirmationTemplate))

func NewNotificationService(cfg *config.Config) *NotificationService {
	s := &NotificationService{config: cfg}
	s.send = s.sendEmail
	return s
}

func (s *NotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order, recipient string) error {
	if recipient == "" {
		return nil
	}

	data := map[string]interface{}{
		"OrderNumber":     order.OrderNumber,
		"Items":           order.Items,
		"Subtotal":        order.Subtotal,
		"Tax":             order.Tax,
		"Shipping":        order.Shipping,
		"Total":           order.Total,
		"ShippingAddress": order.ShippingAddress,
		"OrderURL":        fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		"StoreName":       s.config.Email.FromName,
	}

	var buf bytes.Buffer
	if err := orderConfirmation.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := i18n.T(s.config.I18n.DefaultLocale, i18n.KeyEmailOrderSubject, order.OrderNumber)
	return s.send(ctx, recipient, subject, buf.String())
}

// sendEmail delivers one message over SMTP. The whole conversation, dial
// included, is bounded by ctx.
func (s *NotificationService) sendEmail(ctx context.Context, to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	host := s.config.Email.SMTPHost
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", net.JoinHostPort(host, s.config.Email.SMTPPort))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set SMTP deadline: %w", err)
		}
	}
	// Unblock any pending read or write when ctx is cancelled without a deadline
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if s.config.Email.SMTPUsername != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}
	}

	if err := client.Mail(s.config.Email.FromEmail); err != nil {
		return fmt.Errorf("SMTP MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}
