package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/invorahq/invora/internal/config"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// InvoiceNotifier emails clients a link to their invoice when it is sent.
type InvoiceNotifier struct {
	provider Provider
	baseURL  string
	tmpl     *template.Template
}

func NewInvoiceNotifier(provider Provider, cfg config.Config) (*InvoiceNotifier, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &InvoiceNotifier{
		provider: provider,
		baseURL:  cfg.PublicBaseURL,
		tmpl:     tmpl,
	}, nil
}

func (n *InvoiceNotifier) InvoiceSent(ctx context.Context, inv invoicedomain.Invoice, recipientEmail, publicToken string) error {
	var body bytes.Buffer
	err := n.tmpl.ExecuteTemplate(&body, "invoice_sent.html", map[string]any{
		"Number":    inv.Number,
		"Total":     fmt.Sprintf("%.2f %s", inv.Total, inv.Currency),
		"DueDate":   inv.DueDate.Format("2006-01-02"),
		"PublicURL": fmt.Sprintf("%s/public/invoices/%s", n.baseURL, publicToken),
	})
	if err != nil {
		return fmt.Errorf("render invoice email: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s", inv.Number)
	return n.provider.Send(ctx, []string{recipientEmail}, subject, body.String())
}
