package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/invorahq/invora/internal/client/domain"
	"github.com/invorahq/invora/internal/clock"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	"github.com/invorahq/invora/internal/config"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/internal/observability/metrics"
	"github.com/invorahq/invora/internal/publicinvoice/domain"
	"github.com/invorahq/invora/internal/tenantctx"
	"github.com/invorahq/invora/pkg/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	Clock       clock.Clock
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
	CompanyRepo companydomain.Repository
	ClientRepo  clientdomain.Repository
	Renderer    domain.Renderer
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	clock       clock.Clock
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
	companyRepo companydomain.Repository
	clientRepo  clientdomain.Repository
	renderer    domain.Renderer
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("publicinvoice.service"),
		cfg:         p.Config,
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		companyRepo: p.CompanyRepo,
		clientRepo:  p.ClientRepo,
		renderer:    p.Renderer,
		metrics:     p.Metrics,
	}
}

func (s *Service) EnsureLink(ctx context.Context, req domain.EnsureLinkRequest) (domain.LinkResponse, error) {
	inv, err := s.ownedInvoice(ctx, req.InvoiceID)
	if err != nil {
		return domain.LinkResponse{}, err
	}
	if inv.Status == invoicedomain.InvoiceStatusCancelled {
		return domain.LinkResponse{}, domain.ErrInvoiceNotFound
	}

	if inv.PublicToken == nil {
		raw, err := token.New()
		if err != nil {
			return domain.LinkResponse{}, err
		}
		inv.PublicToken = &raw
	}
	inv.PublicEnabled = true
	if req.ExpiresAt != nil {
		expires := req.ExpiresAt.UTC()
		inv.PublicExpiresAt = &expires
	} else {
		// No expiry requested means the link does not expire. Without this a
		// re-ensure after the old expiry passed would hand out a dead link.
		inv.PublicExpiresAt = nil
	}
	inv.UpdatedAt = s.clock.Now()

	if err := s.invoiceRepo.Update(ctx, s.db, inv); err != nil {
		return domain.LinkResponse{}, err
	}

	return domain.LinkResponse{
		Token:     *inv.PublicToken,
		URL:       s.publicURL(*inv.PublicToken),
		ExpiresAt: inv.PublicExpiresAt,
	}, nil
}

func (s *Service) DisableLink(ctx context.Context, invoiceID string) error {
	inv, err := s.ownedInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !inv.PublicEnabled {
		return nil
	}

	inv.PublicEnabled = false
	inv.UpdatedAt = s.clock.Now()
	return s.invoiceRepo.Update(ctx, s.db, inv)
}

func (s *Service) GetByToken(ctx context.Context, raw string) (*domain.View, error) {
	inv, err := s.resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	view, err := s.buildView(ctx, inv)
	if err != nil {
		return nil, err
	}

	s.metrics.PublicView()
	return view, nil
}

func (s *Service) RenderPDF(ctx context.Context, raw string) ([]byte, error) {
	inv, err := s.resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	view, err := s.buildView(ctx, inv)
	if err != nil {
		return nil, err
	}

	s.metrics.PublicView()
	return s.renderer.Render(ctx, *view)
}

// resolve maps a raw token to a servable invoice. Every failure mode comes
// back as ErrNotFound.
func (s *Service) resolve(ctx context.Context, raw string) (*invoicedomain.Invoice, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 128 {
		return nil, domain.ErrNotFound
	}

	inv, err := s.repo.FindByToken(ctx, s.db, raw)
	if err != nil {
		return nil, err
	}
	if inv == nil || !inv.PublicEnabled {
		return nil, domain.ErrNotFound
	}
	if inv.PublicExpiresAt != nil && !inv.PublicExpiresAt.After(s.clock.Now()) {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (s *Service) buildView(ctx context.Context, inv *invoicedomain.Invoice) (*domain.View, error) {
	company, err := s.companyRepo.FindByID(ctx, s.db, inv.CompanyID)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, inv.CompanyID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	if company == nil || client == nil {
		return nil, domain.ErrNotFound
	}

	items, err := s.invoiceRepo.ListItems(ctx, s.db, inv.CompanyID, inv.ID)
	if err != nil {
		return nil, err
	}

	view := &domain.View{
		Number:         inv.Number,
		Status:         string(inv.Status),
		Currency:       inv.Currency,
		CompanyName:    company.Name,
		CompanyTaxID:   company.TaxID,
		CompanyAddress: company.Address,
		CompanyEmail:   company.Email,
		ClientName:     client.Name,
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Subtotal:       inv.Subtotal,
		VATRate:        inv.VATRate,
		VATAmount:      inv.VATAmount,
		Total:          inv.Total,
		Items:          make([]domain.ViewItem, 0, len(items)),
	}
	for _, it := range items {
		view.Items = append(view.Items, domain.ViewItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return view, nil
}

func (s *Service) ownedInvoice(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return nil, domain.ErrInvoiceNotFound
	}

	inv, err := s.invoiceRepo.FindByID(ctx, s.db, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) publicURL(raw string) string {
	return fmt.Sprintf("%s/public/invoices/%s", s.cfg.PublicBaseURL, raw)
}
