package repository

import (
	"context"

	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/internal/publicinvoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE public_token = ?`,
		token,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}
