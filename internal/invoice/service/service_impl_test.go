package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	clientdomain "github.com/invorahq/invora/internal/client/domain"
	clientrepository "github.com/invorahq/invora/internal/client/repository"
	"github.com/invorahq/invora/internal/clock"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	companyrepository "github.com/invorahq/invora/internal/company/repository"
	"github.com/invorahq/invora/internal/config"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
	creditsrepository "github.com/invorahq/invora/internal/credits/repository"
	creditsservice "github.com/invorahq/invora/internal/credits/service"
	"github.com/invorahq/invora/internal/invoice/domain"
	invoicerepository "github.com/invorahq/invora/internal/invoice/repository"
	"github.com/invorahq/invora/internal/tenantctx"
	"github.com/invorahq/invora/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	clock     *clock.FakeClock
	userID    snowflake.ID
	companyID snowflake.ID
	clientID  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&companydomain.Company{},
		&clientdomain.Client{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&creditsdomain.UserCredits{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	plans, err := config.NewPlanCatalogHolder(log)
	require.NoError(t, err)

	creditsSvc := creditsservice.New(creditsservice.Params{
		DB:    db,
		Log:   log,
		Repo:  creditsrepository.Provide(),
		Plans: plans,
	})

	f := &fixture{
		db:        db,
		clock:     fake,
		userID:    node.Generate(),
		companyID: node.Generate(),
		clientID:  node.Generate(),
	}

	f.svc = New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Repo:        invoicerepository.Provide(),
		CompanyRepo: companyrepository.Provide(),
		ClientRepo:  clientrepository.Provide(),
		Credits:     creditsSvc,
	})

	now := fake.Now()
	require.NoError(t, db.Create(&companydomain.Company{
		ID:              f.companyID,
		OwnerUserID:     f.userID,
		Name:            "Tbilisi Web Studio",
		DefaultCurrency: "GEL",
		DefaultVATRate:  18,
		InvoicePrefix:   "INV",
		InvoiceCounter:  6,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error)
	require.NoError(t, db.Create(&clientdomain.Client{
		ID:         f.clientID,
		CompanyID:  f.companyID,
		ClientType: clientdomain.ClientTypeIndividual,
		Name:       "Giorgi Beridze",
		Email:      "giorgi@example.ge",
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error)
	require.NoError(t, db.Create(&creditsdomain.UserCredits{
		UserID:       f.userID,
		PlanCode:     "free",
		TotalCredits: 5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)

	return f
}

func (f *fixture) ctx() context.Context {
	ctx := tenantctx.WithUserID(context.Background(), f.userID)
	return tenantctx.WithCompanyID(ctx, f.companyID)
}

func (f *fixture) createDraft(t *testing.T) *domain.Invoice {
	t.Helper()
	inv, err := f.svc.Create(f.ctx(), domain.CreateInvoiceRequest{
		ClientID: f.clientID.String(),
		Items: []domain.ItemInput{
			{Description: "Design work", Quantity: 2, UnitPrice: 50},
			{Description: "Hosting", Quantity: 1, UnitPrice: 25},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)

	assert.Equal(t, "INV-2025-0007", inv.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, "GEL", inv.Currency)
	assert.InDelta(t, 125.00, inv.Subtotal, 1e-9)
	assert.InDelta(t, 22.50, inv.VATAmount, 1e-9)
	assert.InDelta(t, 147.50, inv.Total, 1e-9)
	assert.Len(t, inv.Items, 2)
	assert.InDelta(t, 100.00, inv.Items[0].LineTotal, 1e-9)

	var company companydomain.Company
	require.NoError(t, f.db.First(&company, "id = ?", f.companyID).Error)
	assert.EqualValues(t, 7, company.InvoiceCounter)

	var credits creditsdomain.UserCredits
	require.NoError(t, f.db.First(&credits, "user_id = ?", f.userID).Error)
	assert.Equal(t, 1, credits.UsedCredits)
}

func TestCreateInvoiceSequentialNumbers(t *testing.T) {
	f := newFixture(t)

	first := f.createDraft(t)
	second := f.createDraft(t)

	assert.Equal(t, "INV-2025-0007", first.Number)
	assert.Equal(t, "INV-2025-0008", second.Number)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		req     domain.CreateInvoiceRequest
		wantErr error
	}{
		{
			name:    "no items",
			req:     domain.CreateInvoiceRequest{ClientID: f.clientID.String()},
			wantErr: domain.ErrNoItems,
		},
		{
			name: "zero quantity",
			req: domain.CreateInvoiceRequest{
				ClientID: f.clientID.String(),
				Items:    []domain.ItemInput{{Description: "x", Quantity: 0, UnitPrice: 10}},
			},
			wantErr: domain.ErrInvalidItem,
		},
		{
			name: "negative price",
			req: domain.CreateInvoiceRequest{
				ClientID: f.clientID.String(),
				Items:    []domain.ItemInput{{Description: "x", Quantity: 1, UnitPrice: -1}},
			},
			wantErr: domain.ErrInvalidItem,
		},
		{
			name: "blank description",
			req: domain.CreateInvoiceRequest{
				ClientID: f.clientID.String(),
				Items:    []domain.ItemInput{{Description: "  ", Quantity: 1, UnitPrice: 1}},
			},
			wantErr: domain.ErrInvalidItem,
		},
		{
			name: "unknown client",
			req: domain.CreateInvoiceRequest{
				ClientID: snowflake.ID(99999).String(),
				Items:    []domain.ItemInput{{Description: "x", Quantity: 1, UnitPrice: 1}},
			},
			wantErr: domain.ErrClientNotFound,
		},
		{
			name: "unsupported currency",
			req: domain.CreateInvoiceRequest{
				ClientID: f.clientID.String(),
				Currency: "JPY",
				Items:    []domain.ItemInput{{Description: "x", Quantity: 1, UnitPrice: 1}},
			},
			wantErr: domain.ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateInvoiceCreditGate(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&creditsdomain.UserCredits{}).
		Where("user_id = ?", f.userID).
		Update("used_credits", 5).Error)

	_, err := f.svc.Create(f.ctx(), domain.CreateInvoiceRequest{
		ClientID: f.clientID.String(),
		Items:    []domain.ItemInput{{Description: "x", Quantity: 1, UnitPrice: 10}},
	})
	require.True(t, errors.Is(err, creditsdomain.ErrNoCredits))

	// The whole transaction rolled back: no invoice row and no counter bump.
	var invoiceCount int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&invoiceCount).Error)
	assert.Zero(t, invoiceCount)

	var company companydomain.Company
	require.NoError(t, f.db.First(&company, "id = ?", f.companyID).Error)
	assert.EqualValues(t, 6, company.InvoiceCounter)
}

func TestDeleteDraftRefundsCredit(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)

	require.NoError(t, f.svc.Delete(f.ctx(), inv.ID.String()))

	var credits creditsdomain.UserCredits
	require.NoError(t, f.db.First(&credits, "user_id = ?", f.userID).Error)
	assert.Zero(t, credits.UsedCredits)

	got, err := f.svc.GetByID(f.ctx(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, got.Status)
}

func TestDeleteNonDraftRejected(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)
	_, err := f.svc.Send(f.ctx(), inv.ID.String())
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx(), inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvoiceNotDraft)
}

func TestSendIssuesPublicToken(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)
	sent, err := f.svc.Send(f.ctx(), inv.ID.String())
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	require.NotNil(t, sent.PublicToken)
	assert.True(t, sent.PublicEnabled)

	// Sending twice is rejected.
	_, err = f.svc.Send(f.ctx(), inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)

	// draft cannot be marked paid
	_, err := f.svc.MarkPaid(f.ctx(), inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Send(f.ctx(), inv.ID.String())
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(f.ctx(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// paid invoices are immutable
	_, err = f.svc.Update(f.ctx(), inv.ID.String(), domain.UpdateInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvoiceImmutable)
	_, err = f.svc.Cancel(f.ctx(), inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateReplacesItemsAndRecomputesTotals(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)

	newItems := []domain.ItemInput{
		{Description: "Consulting", Quantity: 3, UnitPrice: 100},
	}
	updated, err := f.svc.Update(f.ctx(), inv.ID.String(), domain.UpdateInvoiceRequest{
		Items: &newItems,
	})
	require.NoError(t, err)

	assert.InDelta(t, 300.00, updated.Subtotal, 1e-9)
	assert.InDelta(t, 54.00, updated.VATAmount, 1e-9)
	assert.InDelta(t, 354.00, updated.Total, 1e-9)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Consulting", updated.Items[0].Description)
}

func TestUpdateVATRateRecomputes(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)

	zero := 0.0
	updated, err := f.svc.Update(f.ctx(), inv.ID.String(), domain.UpdateInvoiceRequest{
		VATRate: &zero,
	})
	require.NoError(t, err)

	assert.InDelta(t, 125.00, updated.Subtotal, 1e-9)
	assert.Zero(t, updated.VATAmount)
	assert.InDelta(t, 125.00, updated.Total, 1e-9)
}

func TestMarkOverdueDue(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)
	_, err := f.svc.Send(f.ctx(), inv.ID.String())
	require.NoError(t, err)

	// Not yet due.
	n, err := f.svc.MarkOverdueDue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(15 * 24 * time.Hour)
	n, err = f.svc.MarkOverdueDue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.svc.GetByID(f.ctx(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)

	// Overdue invoices can still be paid.
	paid, err := f.svc.MarkPaid(f.ctx(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)

	first := f.createDraft(t)
	f.createDraft(t)
	_, err := f.svc.Send(f.ctx(), first.ID.String())
	require.NoError(t, err)

	resp, err := f.svc.List(f.ctx(), domain.ListInvoiceFilter{
		Status: domain.InvoiceStatusSent,
	}, pagination.Pagination{PageSize: 25})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, first.ID, resp.Invoices[0].ID)
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)

	inv := f.createDraft(t)

	// Another company cannot see the invoice.
	otherCtx := tenantctx.WithCompanyID(
		tenantctx.WithUserID(context.Background(), snowflake.ID(4242)),
		snowflake.ID(4243),
	)
	_, err := f.svc.GetByID(otherCtx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
