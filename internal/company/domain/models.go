// Package domain contains persistence models for company profiles.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Company is the tenant boundary: every client, invoice and item hangs off
// exactly one company, and the invoice counter is scoped to it.
type Company struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerUserID     snowflake.ID      `gorm:"column:owner_user_id;not null;uniqueIndex" json:"-"`
	Name            string            `gorm:"not null" json:"name"`
	TaxID           string            `gorm:"column:tax_id" json:"tax_id,omitempty"`
	Address         string            `gorm:"type:text" json:"address,omitempty"`
	Email           string            `gorm:"type:text" json:"email,omitempty"`
	DefaultCurrency string            `gorm:"column:default_currency;not null;default:'GEL'" json:"default_currency"`
	DefaultVATRate  float64           `gorm:"column:default_vat_rate;not null;default:18" json:"default_vat_rate"`
	InvoicePrefix   string            `gorm:"column:invoice_prefix;not null;default:'INV'" json:"invoice_prefix"`
	InvoiceCounter  int64             `gorm:"column:invoice_counter;not null;default:0" json:"invoice_counter"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }
