// Package domain defines the public invoice sharing surface. Public views
// are read-only projections reachable by an opaque token, with no
// authentication and no tenant identifiers exposed.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for missing, disabled and expired tokens alike
// so callers cannot probe which of the three it was.
var ErrNotFound = errors.New("not_found")

var ErrInvoiceNotFound = errors.New("invoice_not_found")

// View is the safe projection of an invoice served to anonymous visitors.
// It carries no internal identifiers.
type View struct {
	Number   string `json:"number"`
	Status   string `json:"status"`
	Currency string `json:"currency"`

	CompanyName    string `json:"company_name"`
	CompanyTaxID   string `json:"company_tax_id,omitempty"`
	CompanyAddress string `json:"company_address,omitempty"`
	CompanyEmail   string `json:"company_email,omitempty"`

	ClientName string `json:"client_name"`

	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`

	Subtotal  float64 `json:"subtotal"`
	VATRate   float64 `json:"vat_rate"`
	VATAmount float64 `json:"vat_amount"`
	Total     float64 `json:"total"`

	Items []ViewItem `json:"items"`
}

type ViewItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// LinkResponse describes an active share link for the invoice owner.
type LinkResponse struct {
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type EnsureLinkRequest struct {
	InvoiceID string     `json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Service manages share links and serves public views.
type Service interface {
	// EnsureLink returns the invoice's share link, creating the token on
	// first use. The token is stable across calls until the link is
	// disabled and re-created.
	EnsureLink(ctx context.Context, req EnsureLinkRequest) (LinkResponse, error)
	DisableLink(ctx context.Context, invoiceID string) error

	GetByToken(ctx context.Context, token string) (*View, error)
	RenderPDF(ctx context.Context, token string) ([]byte, error)
}

// Renderer produces a PDF document for a public view.
type Renderer interface {
	Render(ctx context.Context, view View) ([]byte, error)
}
