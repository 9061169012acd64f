package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/invorahq/invora/internal/client/domain"
	"github.com/invorahq/invora/internal/clock"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	companyservice "github.com/invorahq/invora/internal/company/service"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
	"github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/internal/invoice/number"
	"github.com/invorahq/invora/internal/observability/metrics"
	"github.com/invorahq/invora/internal/tenantctx"
	dbpkg "github.com/invorahq/invora/pkg/db"
	"github.com/invorahq/invora/pkg/db/pagination"
	"github.com/invorahq/invora/pkg/money"
	"github.com/invorahq/invora/pkg/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultDueDays = 14

	// Retries absorb the number race when two transactions read the same
	// counter value before either commits.
	createAttempts = 3
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CompanyRepo companydomain.Repository
	ClientRepo  clientdomain.Repository
	Credits     creditsdomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
	Notifier    domain.Notifier  `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	companyRepo companydomain.Repository
	clientRepo  clientdomain.Repository
	credits     creditsdomain.Service
	metrics     *metrics.Metrics
	notifier    domain.Notifier
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invoice.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		companyRepo: p.CompanyRepo,
		clientRepo:  p.ClientRepo,
		credits:     p.Credits,
		metrics:     p.Metrics,
		notifier:    p.Notifier,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return nil, domain.ErrClientNotFound
	}

	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrInvalidCompany
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, companyID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = company.DefaultCurrency
	}
	if !companyservice.IsSupportedCurrency(currency) {
		return nil, domain.ErrInvalidCurrency
	}

	vatRate := company.DefaultVATRate
	if req.VATRate != nil {
		vatRate = *req.VATRate
	}
	if vatRate < 0 || vatRate > 100 {
		return nil, domain.ErrInvalidVATRate
	}

	now := s.clock.Now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = req.IssueDate.UTC()
	}

	dueDate := issueDate.AddDate(0, 0, defaultDueDays)
	if req.DueDate != nil {
		dueDate = req.DueDate.UTC()
	} else if req.DueInDays != nil {
		if *req.DueInDays < 0 {
			return nil, domain.ErrInvalidDueDate
		}
		dueDate = issueDate.AddDate(0, 0, *req.DueInDays)
	}
	if dueDate.Before(issueDate) {
		return nil, domain.ErrInvalidDueDate
	}

	amounts := computeTotals(req.Items, vatRate)

	var inv *domain.Invoice
	for attempt := 0; attempt < createAttempts; attempt++ {
		inv = nil
		err = s.db.Transaction(func(tx *gorm.DB) error {
			seq, err := s.companyRepo.IncrementInvoiceCounter(ctx, tx, companyID)
			if err != nil {
				return err
			}

			candidate := &domain.Invoice{
				ID:        s.genID.Generate(),
				CompanyID: companyID,
				ClientID:  clientID,
				Number:    number.Build(company.InvoicePrefix, issueDate.Year(), seq),
				Status:    domain.InvoiceStatusDraft,
				Currency:  currency,
				VATRate:   vatRate,
				Subtotal:  amounts.Subtotal,
				VATAmount: amounts.VATAmount,
				Total:     amounts.Total,
				IssueDate: issueDate,
				DueDate:   dueDate,
				Metadata:  datatypes.JSONMap{},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.repo.Insert(ctx, tx, candidate); err != nil {
				return err
			}
			if err := s.repo.InsertItems(ctx, tx, s.buildItems(candidate, req.Items, now)); err != nil {
				return err
			}

			// Last step inside the transaction: a failed credit take rolls
			// back the invoice and the counter bump together.
			if err := s.credits.Consume(ctx, tx, userID); err != nil {
				return err
			}

			inv = candidate
			return nil
		})
		if err == nil || !dbpkg.IsDuplicateKeyErr(err) {
			break
		}
		s.log.Warn("invoice number collision, retrying",
			zap.Int64("company_id", int64(companyID)),
			zap.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.InvoiceCreated(currency)
	s.log.Info("invoice created",
		zap.Int64("invoice_id", int64(inv.ID)),
		zap.String("number", inv.Number),
		zap.String("currency", currency),
	)

	if req.SendNow {
		sent, err := s.Send(ctx, inv.ID.String())
		if err != nil {
			return nil, err
		}
		return sent, nil
	}

	inv.Items, err = s.repo.ListItems(ctx, s.db, companyID, inv.ID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) buildItems(inv *domain.Invoice, inputs []domain.ItemInput, now time.Time) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			CompanyID:   inv.CompanyID,
			InvoiceID:   inv.ID,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   lineTotal(in),
			SortOrder:   i,
			CreatedAt:   now,
		})
	}
	return items
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return nil, domain.ErrInvoiceNotFound
	}

	inv, err := s.repo.FindByID(ctx, s.db, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	inv.Items, err = s.repo.ListItems(ctx, s.db, companyID, inv.ID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListInvoiceFilter, page pagination.Pagination) (*domain.ListInvoicesResponse, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	size := page.PageSize
	if size <= 0 {
		size = 25
	}

	rows, err := s.repo.List(ctx, s.db, companyID, filter, page)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, size, func(inv *domain.Invoice) string {
		cursor, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		return cursor
	})
	if len(rows) > size {
		rows = rows[:size]
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, inv := range rows {
		invoices = append(invoices, *inv)
	}
	return &domain.ListInvoicesResponse{Invoices: invoices, PageInfo: pageInfo}, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Editable() {
		return nil, domain.ErrInvoiceImmutable
	}

	if req.ClientID != nil {
		clientID, err := snowflake.ParseString(strings.TrimSpace(*req.ClientID))
		if err != nil || clientID == 0 {
			return nil, domain.ErrClientNotFound
		}
		client, err := s.clientRepo.FindByID(ctx, s.db, companyID, clientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.ErrClientNotFound
		}
		inv.ClientID = clientID
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if !companyservice.IsSupportedCurrency(currency) {
			return nil, domain.ErrInvalidCurrency
		}
		inv.Currency = currency
	}
	if req.VATRate != nil {
		if *req.VATRate < 0 || *req.VATRate > 100 {
			return nil, domain.ErrInvalidVATRate
		}
		inv.VATRate = *req.VATRate
	}
	if req.IssueDate != nil {
		inv.IssueDate = req.IssueDate.UTC()
	}
	if req.DueDate != nil {
		inv.DueDate = req.DueDate.UTC()
	}
	if inv.DueDate.Before(inv.IssueDate) {
		return nil, domain.ErrInvalidDueDate
	}

	var newItems []domain.InvoiceItem
	if req.Items != nil {
		if err := validateItems(*req.Items); err != nil {
			return nil, err
		}
		newItems = s.buildItems(inv, *req.Items, s.clock.Now())
	}

	// Totals are recomputed from the effective lines whenever anything that
	// feeds them changed, keeping the stored amounts consistent.
	effective := itemInputs(inv.Items)
	if req.Items != nil {
		effective = *req.Items
	}
	amounts := computeTotals(effective, inv.VATRate)
	inv.Subtotal = amounts.Subtotal
	inv.VATAmount = amounts.VATAmount
	inv.Total = amounts.Total
	inv.UpdatedAt = s.clock.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Items != nil {
			if err := s.repo.DeleteItems(ctx, tx, companyID, inv.ID); err != nil {
				return err
			}
			if err := s.repo.InsertItems(ctx, tx, newItems); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	inv.Items, err = s.repo.ListItems(ctx, s.db, companyID, inv.ID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete cancels a draft invoice and returns its credit. Anything past
// draft must go through Cancel, which keeps the credit spent.
func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidCompany
	}
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidCompany
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return domain.ErrInvoiceNotDraft
	}

	inv.Status = domain.InvoiceStatusCancelled
	inv.PublicEnabled = false
	inv.UpdatedAt = s.clock.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, inv); err != nil {
			return err
		}
		return s.credits.Refund(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info("invoice deleted",
		zap.Int64("invoice_id", int64(inv.ID)),
		zap.Int64("company_id", int64(companyID)),
	)
	return nil
}

func (s *Service) Send(ctx context.Context, id string) (*domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}

	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	inv.Status = domain.InvoiceStatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now
	if inv.PublicToken == nil {
		raw, err := token.New()
		if err != nil {
			return nil, err
		}
		inv.PublicToken = &raw
	}
	inv.PublicEnabled = true

	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}

	s.notify(ctx, inv, companyID)
	return inv, nil
}

func (s *Service) notify(ctx context.Context, inv *domain.Invoice, companyID snowflake.ID) {
	if s.notifier == nil || inv.PublicToken == nil {
		return
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, companyID, inv.ClientID)
	if err != nil || client == nil || client.Email == "" {
		return
	}
	if err := s.notifier.InvoiceSent(ctx, *inv, client.Email, *inv.PublicToken); err != nil {
		s.log.Warn("invoice delivery failed",
			zap.Int64("invoice_id", int64(inv.ID)),
			zap.Error(err),
		)
	}
}

func (s *Service) MarkPaid(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoiceStatusSent && inv.Status != domain.InvoiceStatusOverdue {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusOverdue:
	default:
		return nil, domain.ErrInvalidTransition
	}

	inv.Status = domain.InvoiceStatusCancelled
	inv.PublicEnabled = false
	inv.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) MarkOverdueDue(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.MarkOverdueDue(ctx, s.db, now)
	if err != nil {
		return 0, err
	}
	for i := int64(0); i < n; i++ {
		s.metrics.InvoiceMarkedOverdue()
	}
	if n > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return n, nil
}

func lineTotal(in domain.ItemInput) float64 {
	return money.LineTotal(in.Quantity, in.UnitPrice)
}

func itemInputs(items []domain.InvoiceItem) []domain.ItemInput {
	inputs := make([]domain.ItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, domain.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return inputs
}
