// Package mailer sends the operator notification for new orders.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/CodrCam/avalanchehour-shop/models"
)

// SMTPNotifier delivers a plain-text new-order email over SMTP.
type SMTPNotifier struct {
	addr string // host:port
	auth smtp.Auth
	from string
	to   []string
}

func NewSMTPNotifier(host, port, username, password, from string, to []string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{
		addr: host + ":" + port,
		auth: auth,
		from: from,
		to:   to,
	}
}

func (n *SMTPNotifier) NotifyNewOrder(order *models.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.to, ", "))
	fmt.Fprintf(&b, "Subject: New order %s\r\n\r\n", order.OrderID)
	fmt.Fprintf(&b, "Order %s for %s (%s)\r\n", order.OrderID, order.CustomerName, order.CustomerEmail)
	fmt.Fprintf(&b, "Total: $%s\r\n\r\n", decimal.NewFromInt(order.AmountCents).Div(decimal.NewFromInt(100)).StringFixed(2))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s (%s)\r\n", item.Qty, item.Name, item.SKU)
	}
	return smtp.SendMail(n.addr, n.auth, n.from, n.to, []byte(b.String()))
}
