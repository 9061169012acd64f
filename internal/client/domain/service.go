package domain

import (
	"context"
	"errors"

	"github.com/invorahq/invora/pkg/db/pagination"
)

type CreateClientRequest struct {
	ClientType string
	Name       string
	Email      string
	Phone      string
	TaxID      string
	Address    string
}

type UpdateClientRequest struct {
	ID         string
	ClientType *string
	Name       *string
	Email      *string
	Phone      *string
	TaxID      *string
	Address    *string
}

type ListClientRequest struct {
	PageToken       string
	PageSize        int
	Name            string
	ClientType      string
	IncludeArchived bool
}

type ListClientFilter struct {
	Name            string
	ClientType      string
	IncludeArchived bool
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(ctx context.Context, id string) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	// Delete archives a client that still has invoices and removes one that
	// has none.
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidClientType = errors.New("invalid_client_type")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrTaxIDRequired     = errors.New("tax_id_required")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
)
