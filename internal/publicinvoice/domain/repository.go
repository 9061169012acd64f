package domain

import (
	"context"

	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"gorm.io/gorm"
)

// Repository resolves share tokens to invoices. Disabled and expired links
// are filtered in the service, not here, so the service owns the uniform
// not-found behavior.
type Repository interface {
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*invoicedomain.Invoice, error)
}
