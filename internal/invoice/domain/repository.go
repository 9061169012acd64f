package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository persists invoices and their items. Every method takes an
// explicit *gorm.DB so the service can run writes inside one transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	DeleteItems(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) error
	Update(ctx context.Context, db *gorm.DB, inv *Invoice) error

	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) ([]InvoiceItem, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)

	// MarkOverdueDue flips sent invoices past due in one statement and
	// reports the number of rows changed.
	MarkOverdueDue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
