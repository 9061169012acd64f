package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/client/domain"
	"github.com/invorahq/invora/pkg/db/option"
	"github.com/invorahq/invora/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (
			id, company_id, client_type, name, email, phone, tax_id, address,
			metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.CompanyID,
		client.ClientType,
		client.Name,
		client.Email,
		client.Phone,
		client.TaxID,
		client.Address,
		client.Metadata,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM clients WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, error) {
	var clients []*domain.Client
	stmt := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("company_id = ?", companyID)
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.ClientType != "" {
		stmt = stmt.Where("client_type = ?", filter.ClientType)
	}
	if !filter.IncludeArchived {
		stmt = stmt.Where("archived_at IS NULL")
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET
			client_type = ?, name = ?, email = ?, phone = ?, tax_id = ?, address = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		client.ClientType,
		client.Name,
		client.Email,
		client.Phone,
		client.TaxID,
		client.Address,
		client.UpdatedAt,
		client.CompanyID,
		client.ID,
	).Error
}

func (r *repo) Archive(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients SET archived_at = ?, updated_at = ? WHERE company_id = ? AND id = ? AND archived_at IS NULL`,
		time.Now().UTC(),
		time.Now().UTC(),
		companyID,
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM clients WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Error
}

func (r *repo) CountInvoices(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices WHERE company_id = ? AND client_id = ?`,
		companyID,
		id,
	).Scan(&count).Error
	return count, err
}
