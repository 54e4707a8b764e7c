package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"ecommerce-platform/internal/models"
)

// EmailConfig represents email notifier configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// EmailNotifier sends purchase confirmations over SMTP
type EmailNotifier struct {
	config   EmailConfig
	template *template.Template
}

// NewEmailNotifier creates an email notifier
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		config:   config,
		template: template.Must(template.New("confirmation").Parse(confirmationTemplate)),
	}
}

type confirmationData struct {
	RecipientName string
	Ticket        *models.Ticket
	Total         string
}

// Send emails the purchase confirmation for a ticket
func (n *EmailNotifier) Send(_ context.Context, email, name string, ticket *models.Ticket) error {
	if name == "" {
		name = email
	}

	var body bytes.Buffer
	err := n.template.Execute(&body, confirmationData{
		RecipientName: name,
		Ticket:        ticket,
		Total:         fmt.Sprintf("%.2f", ticket.AmountInCurrency()),
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	message := fmt.Sprintf("From: %s <%s>\r\n", n.config.FromName, n.config.FromEmail)
	message += fmt.Sprintf("To: %s\r\n", email)
	message += fmt.Sprintf("Subject: Order Confirmation %s\r\n", ticket.Code)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n\r\n"
	message += body.String()

	auth := smtp.PlainAuth("", n.config.SMTPUsername, n.config.SMTPPassword, n.config.SMTPHost)
	addr := fmt.Sprintf("%s:%s", n.config.SMTPHost, n.config.SMTPPort)

	if err := smtp.SendMail(addr, auth, n.config.FromEmail, []string{email}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

const confirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Thanks for your purchase, {{.RecipientName}}!</h2>
	<p>Your order <strong>{{.Ticket.Code}}</strong> has been received.</p>
	<table style="border-collapse: collapse; width: 100%;">
		<tr>
			<th style="text-align: left; border-bottom: 1px solid #ccc;">Item</th>
			<th style="text-align: right; border-bottom: 1px solid #ccc;">Qty</th>
			<th style="text-align: right; border-bottom: 1px solid #ccc;">Subtotal</th>
		</tr>
		{{range .Ticket.Items}}
		<tr>
			<td>{{.Title}}</td>
			<td style="text-align: right;">{{.Quantity}}</td>
			<td style="text-align: right;">{{.Subtotal}}</td>
		</tr>
		{{end}}
	</table>
	<p><strong>Total: {{.Total}}</strong></p>
	<p>Keep your ticket code to track your order.</p>
</body>
</html>`
