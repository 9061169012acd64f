package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/company/domain"
	"github.com/invorahq/invora/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Currencies supported for invoicing.
var supportedCurrencies = map[string]bool{
	"GEL": true,
	"USD": true,
	"EUR": true,
}

const (
	defaultCurrency = "GEL"
	defaultVATRate  = 18.0
	defaultPrefix   = "INV"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerUserID))
	if err != nil || ownerID == 0 {
		return domain.Company{}, domain.ErrInvalidCompany
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	currency := strings.ToUpper(strings.TrimSpace(req.DefaultCurrency))
	if currency == "" {
		currency = defaultCurrency
	}
	if !supportedCurrencies[currency] {
		return domain.Company{}, domain.ErrInvalidCurrency
	}

	vatRate := defaultVATRate
	if req.DefaultVATRate != nil {
		if *req.DefaultVATRate < 0 || *req.DefaultVATRate > 100 {
			return domain.Company{}, domain.ErrInvalidVATRate
		}
		vatRate = *req.DefaultVATRate
	}

	prefix := strings.ToUpper(strings.TrimSpace(req.InvoicePrefix))
	if prefix == "" {
		prefix = defaultPrefix
	}
	if len(prefix) > 8 {
		return domain.Company{}, domain.ErrInvalidPrefix
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:              s.genID.Generate(),
		OwnerUserID:     ownerID,
		Name:            name,
		TaxID:           strings.TrimSpace(req.TaxID),
		Address:         strings.TrimSpace(req.Address),
		Email:           strings.TrimSpace(req.Email),
		DefaultCurrency: currency,
		DefaultVATRate:  vatRate,
		InvoicePrefix:   prefix,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &company); err != nil {
		return domain.Company{}, err
	}

	return company, nil
}

func (s *Service) Get(ctx context.Context) (domain.Company, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Company{}, domain.ErrInvalidCompany
	}

	company, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCompanyRequest) (domain.Company, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Company{}, domain.ErrInvalidCompany
	}

	company, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Company{}, domain.ErrInvalidName
		}
		company.Name = name
	}
	if req.TaxID != nil {
		company.TaxID = strings.TrimSpace(*req.TaxID)
	}
	if req.Address != nil {
		company.Address = strings.TrimSpace(*req.Address)
	}
	if req.Email != nil {
		company.Email = strings.TrimSpace(*req.Email)
	}
	if req.DefaultCurrency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.DefaultCurrency))
		if !supportedCurrencies[currency] {
			return domain.Company{}, domain.ErrInvalidCurrency
		}
		company.DefaultCurrency = currency
	}
	if req.DefaultVATRate != nil {
		if *req.DefaultVATRate < 0 || *req.DefaultVATRate > 100 {
			return domain.Company{}, domain.ErrInvalidVATRate
		}
		company.DefaultVATRate = *req.DefaultVATRate
	}
	if req.InvoicePrefix != nil {
		prefix := strings.ToUpper(strings.TrimSpace(*req.InvoicePrefix))
		if prefix == "" || len(prefix) > 8 {
			return domain.Company{}, domain.ErrInvalidPrefix
		}
		company.InvoicePrefix = prefix
	}

	company.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, company); err != nil {
		return domain.Company{}, err
	}

	return *company, nil
}

// IsSupportedCurrency reports whether invoices may be issued in the currency.
func IsSupportedCurrency(code string) bool {
	return supportedCurrencies[strings.ToUpper(strings.TrimSpace(code))]
}
