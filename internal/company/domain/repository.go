package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	FindByOwner(ctx context.Context, db *gorm.DB, ownerUserID snowflake.ID) (*Company, error)
	Update(ctx context.Context, db *gorm.DB, company *Company) error
	// IncrementInvoiceCounter bumps the per-company counter and returns the
	// new value. Callers must run it inside the invoice creation transaction
	// so the row lock serializes concurrent creations.
	IncrementInvoiceCounter(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
