package domain

import (
	"context"
	"errors"
	"time"

	"github.com/invorahq/invora/pkg/db/pagination"
)

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrClientNotFound    = errors.New("client_not_found")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
	ErrInvoiceNotDraft   = errors.New("invoice_not_draft")
	ErrInvoiceImmutable  = errors.New("invoice_immutable")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNoItems           = errors.New("invoice_items_required")
	ErrInvalidItem       = errors.New("invalid_invoice_item")
	ErrInvalidVATRate    = errors.New("invalid_vat_rate")
	ErrInvalidDueDate    = errors.New("invalid_due_date")
)

// ItemInput is a single line submitted by the caller. Line totals are
// computed server side and never accepted from input.
type ItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateInvoiceRequest struct {
	ClientID  string      `json:"client_id"`
	Items     []ItemInput `json:"items"`
	Currency  string      `json:"currency,omitempty"`
	VATRate   *float64    `json:"vat_rate,omitempty"`
	IssueDate *time.Time  `json:"issue_date,omitempty"`
	DueDate   *time.Time  `json:"due_date,omitempty"`
	DueInDays *int        `json:"due_in_days,omitempty"`
	SendNow   bool        `json:"send_now,omitempty"`
}

// UpdateInvoiceRequest carries partial edits. Nil fields are left untouched;
// a non-nil Items slice replaces all existing lines.
type UpdateInvoiceRequest struct {
	ClientID  *string      `json:"client_id,omitempty"`
	Items     *[]ItemInput `json:"items,omitempty"`
	Currency  *string      `json:"currency,omitempty"`
	VATRate   *float64     `json:"vat_rate,omitempty"`
	IssueDate *time.Time   `json:"issue_date,omitempty"`
	DueDate   *time.Time   `json:"due_date,omitempty"`
}

type ListInvoiceFilter struct {
	Status   InvoiceStatus
	ClientID string
}

type ListInvoicesResponse struct {
	Invoices []Invoice            `json:"invoices"`
	PageInfo *pagination.PageInfo `json:"page_info,omitempty"`
}

// Service exposes invoice operations. All methods except MarkOverdueDue are
// company scoped through the request context.
type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter ListInvoiceFilter, page pagination.Pagination) (*ListInvoicesResponse, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*Invoice, error)
	Delete(ctx context.Context, id string) error
	Send(ctx context.Context, id string) (*Invoice, error)
	MarkPaid(ctx context.Context, id string) (*Invoice, error)
	Cancel(ctx context.Context, id string) (*Invoice, error)

	// MarkOverdueDue flips every sent invoice whose due date has passed to
	// overdue and reports how many rows changed. Called by the scheduler.
	MarkOverdueDue(ctx context.Context, now time.Time) (int64, error)
}

// Notifier delivers an invoice to its recipient out of band. Delivery
// failures never roll back the status transition.
type Notifier interface {
	InvoiceSent(ctx context.Context, inv Invoice, recipientEmail, publicToken string) error
}
