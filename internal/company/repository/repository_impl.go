package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/company/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (
			id, owner_user_id, name, tax_id, address, email,
			default_currency, default_vat_rate, invoice_prefix, invoice_counter,
			metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.OwnerUserID,
		company.Name,
		company.TaxID,
		company.Address,
		company.Email,
		company.DefaultCurrency,
		company.DefaultVATRate,
		company.InvoicePrefix,
		company.InvoiceCounter,
		company.Metadata,
		company.CreatedAt,
		company.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM companies WHERE id = ?`,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) FindByOwner(ctx context.Context, db *gorm.DB, ownerUserID snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM companies WHERE owner_user_id = ?`,
		ownerUserID,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies SET
			name = ?, tax_id = ?, address = ?, email = ?,
			default_currency = ?, default_vat_rate = ?, invoice_prefix = ?,
			updated_at = ?
		 WHERE id = ?`,
		company.Name,
		company.TaxID,
		company.Address,
		company.Email,
		company.DefaultCurrency,
		company.DefaultVATRate,
		company.InvoicePrefix,
		company.UpdatedAt,
		company.ID,
	).Error
}

func (r *repo) IncrementInvoiceCounter(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	// UPDATE first so the row lock is held for the rest of the transaction;
	// the follow-up read then observes the bumped value.
	res := db.WithContext(ctx).Exec(
		`UPDATE companies SET invoice_counter = invoice_counter + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		id,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, errors.New("company row missing for counter increment")
	}

	var counter int64
	if err := db.WithContext(ctx).Raw(
		`SELECT invoice_counter FROM companies WHERE id = ?`,
		id,
	).Scan(&counter).Error; err != nil {
		return 0, err
	}
	return counter, nil
}
