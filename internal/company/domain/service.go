package domain

import (
	"context"
	"errors"
)

type CreateCompanyRequest struct {
	OwnerUserID     string
	Name            string
	TaxID           string
	Address         string
	Email           string
	DefaultCurrency string
	DefaultVATRate  *float64
	InvoicePrefix   string
}

type UpdateCompanyRequest struct {
	Name            *string
	TaxID           *string
	Address         *string
	Email           *string
	DefaultCurrency *string
	DefaultVATRate  *float64
	InvoicePrefix   *string
}

type Service interface {
	Create(ctx context.Context, req CreateCompanyRequest) (Company, error)
	Get(ctx context.Context) (Company, error)
	Update(ctx context.Context, req UpdateCompanyRequest) (Company, error)
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidVATRate  = errors.New("invalid_vat_rate")
	ErrInvalidPrefix   = errors.New("invalid_prefix")
	ErrNotFound        = errors.New("not_found")
)
