// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Editable reports whether invoice fields may still change. Once paid or
// cancelled an invoice is immutable; deletion is a soft transition to
// cancelled and only allowed from draft.
func (s InvoiceStatus) Editable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent
}

// Invoice is a company-scoped invoice with a per-company sequential number.
// Monetary amounts are decimal values rounded to two places; the invariants
// total == round2(subtotal+vat_amount) and vat_amount ==
// round2(subtotal*vat_rate/100) hold on every persisted row.
type Invoice struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID       snowflake.ID      `gorm:"column:company_id;not null;index;uniqueIndex:ux_invoices_company_number" json:"company_id"`
	ClientID        snowflake.ID      `gorm:"column:client_id;not null;index" json:"client_id"`
	Number          string            `gorm:"not null;uniqueIndex:ux_invoices_company_number" json:"number"`
	Status          InvoiceStatus     `gorm:"type:text;not null;default:'draft'" json:"status"`
	Currency        string            `gorm:"type:text;not null;default:'GEL'" json:"currency"`
	VATRate         float64           `gorm:"column:vat_rate;not null;default:18" json:"vat_rate"`
	Subtotal        float64           `gorm:"not null;default:0" json:"subtotal"`
	VATAmount       float64           `gorm:"column:vat_amount;not null;default:0" json:"vat_amount"`
	Total           float64           `gorm:"not null;default:0" json:"total"`
	IssueDate       time.Time         `gorm:"column:issue_date;not null" json:"issue_date"`
	DueDate         time.Time         `gorm:"column:due_date;not null" json:"due_date"`
	SentAt          *time.Time        `gorm:"column:sent_at" json:"sent_at,omitempty"`
	PaidAt          *time.Time        `gorm:"column:paid_at" json:"paid_at,omitempty"`
	PublicToken     *string           `gorm:"column:public_token" json:"-"`
	PublicEnabled   bool              `gorm:"column:public_enabled;not null;default:false" json:"public_enabled"`
	PublicExpiresAt *time.Time        `gorm:"column:public_expires_at" json:"public_expires_at,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice. Items are replaced wholesale
// whenever an invoice's lines are edited.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID `gorm:"column:company_id;not null" json:"-"`
	InvoiceID   snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"column:unit_price;not null" json:"unit_price"`
	LineTotal   float64      `gorm:"column:line_total;not null" json:"line_total"`
	SortOrder   int          `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
