package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/pkg/db/option"
	"github.com/invorahq/invora/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, company_id, client_id, number, status, currency, vat_rate,
			subtotal, vat_amount, total, issue_date, due_date,
			public_enabled, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.CompanyID,
		inv.ClientID,
		inv.Number,
		inv.Status,
		inv.Currency,
		inv.VATRate,
		inv.Subtotal,
		inv.VATAmount,
		inv.Total,
		inv.IssueDate,
		inv.DueDate,
		inv.PublicEnabled,
		inv.Metadata,
		inv.CreatedAt,
		inv.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM invoice_items WHERE company_id = ? AND invoice_id = ?`,
		companyID,
		invoiceID,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET
			client_id = ?, status = ?, currency = ?, vat_rate = ?,
			subtotal = ?, vat_amount = ?, total = ?,
			issue_date = ?, due_date = ?, sent_at = ?, paid_at = ?,
			public_token = ?, public_enabled = ?, public_expires_at = ?,
			metadata = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		inv.ClientID,
		inv.Status,
		inv.Currency,
		inv.VATRate,
		inv.Subtotal,
		inv.VATAmount,
		inv.Total,
		inv.IssueDate,
		inv.DueDate,
		inv.SentAt,
		inv.PaidAt,
		inv.PublicToken,
		inv.PublicEnabled,
		inv.PublicExpiresAt,
		inv.Metadata,
		inv.UpdatedAt,
		inv.CompanyID,
		inv.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoice_items WHERE company_id = ? AND invoice_id = ? ORDER BY sort_order ASC, id ASC`,
		companyID,
		invoiceID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) MarkOverdueDue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE status = ? AND due_date < ?`,
		domain.InvoiceStatusOverdue,
		now,
		domain.InvoiceStatusSent,
		now,
	)
	return res.RowsAffected, res.Error
}
