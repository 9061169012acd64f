package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/client/domain"
	"github.com/invorahq/invora/internal/tenantctx"
	"github.com/invorahq/invora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrInvalidCompany
	}

	clientType, err := parseClientType(req.ClientType)
	if err != nil {
		return domain.Client{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Client{}, domain.ErrInvalidEmail
	}

	taxID := strings.TrimSpace(req.TaxID)
	if clientType == domain.ClientTypeCompany && taxID == "" {
		return domain.Client{}, domain.ErrTaxIDRequired
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		ClientType: clientType,
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(req.Phone),
		TaxID:      taxID,
		Address:    strings.TrimSpace(req.Address),
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ListClientResponse{}, domain.ErrInvalidCompany
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	items, err := s.repo.List(ctx, s.db, companyID, domain.ListClientFilter{
		Name:            strings.TrimSpace(req.Name),
		ClientType:      strings.TrimSpace(req.ClientType),
		IncludeArchived: req.IncludeArchived,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(client *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	resp := domain.ListClientResponse{Clients: clients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrInvalidCompany
	}

	clientID, err := s.parseID(id)
	if err != nil {
		return domain.Client{}, err
	}

	client, err := s.repo.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *client, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.Client{}, domain.ErrInvalidCompany
	}

	clientID, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	client, err := s.repo.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if client == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.ClientType != nil {
		clientType, err := parseClientType(*req.ClientType)
		if err != nil {
			return domain.Client{}, err
		}
		client.ClientType = clientType
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Client{}, domain.ErrInvalidEmail
		}
		client.Email = email
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.TaxID != nil {
		client.TaxID = strings.TrimSpace(*req.TaxID)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}

	if client.ClientType == domain.ClientTypeCompany && client.TaxID == "" {
		return domain.Client{}, domain.ErrTaxIDRequired
	}

	client.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidCompany
	}

	clientID, err := s.parseID(id)
	if err != nil {
		return err
	}

	client, err := s.repo.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}

	invoices, err := s.repo.CountInvoices(ctx, s.db, companyID, clientID)
	if err != nil {
		return err
	}
	if invoices > 0 {
		return s.repo.Archive(ctx, s.db, companyID, clientID)
	}
	return s.repo.Delete(ctx, s.db, companyID, clientID)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseClientType(value string) (domain.ClientType, error) {
	switch domain.ClientType(strings.ToLower(strings.TrimSpace(value))) {
	case domain.ClientTypeIndividual, "":
		return domain.ClientTypeIndividual, nil
	case domain.ClientTypeCompany:
		return domain.ClientTypeCompany, nil
	default:
		return "", domain.ErrInvalidClientType
	}
}
