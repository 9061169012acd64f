package service

import (
	"context"
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
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	invoicerepository "github.com/invorahq/invora/internal/invoice/repository"
	"github.com/invorahq/invora/internal/publicinvoice/domain"
	"github.com/invorahq/invora/internal/publicinvoice/repository"
	"github.com/invorahq/invora/internal/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, view domain.View) ([]byte, error) {
	return []byte("%PDF-1.7 " + view.Number), nil
}

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	clock     *clock.FakeClock
	userID    snowflake.ID
	companyID snowflake.ID
	invoiceID snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&companydomain.Company{},
		&clientdomain.Client{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	f := &fixture{
		db:        db,
		clock:     fake,
		userID:    node.Generate(),
		companyID: node.Generate(),
	}

	f.svc = New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Config:      config.Config{PublicBaseURL: "https://app.invora.ge"},
		Clock:       fake,
		Repo:        repository.Provide(),
		InvoiceRepo: invoicerepository.Provide(),
		CompanyRepo: companyrepository.Provide(),
		ClientRepo:  clientrepository.Provide(),
		Renderer:    stubRenderer{},
	})

	now := fake.Now()
	clientID := node.Generate()
	f.invoiceID = node.Generate()

	require.NoError(t, db.Create(&companydomain.Company{
		ID:              f.companyID,
		OwnerUserID:     f.userID,
		Name:            "Kutaisi Consulting",
		DefaultCurrency: "GEL",
		DefaultVATRate:  18,
		InvoicePrefix:   "INV",
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error)
	require.NoError(t, db.Create(&clientdomain.Client{
		ID:         clientID,
		CompanyID:  f.companyID,
		ClientType: clientdomain.ClientTypeCompany,
		Name:       "Black Sea Logistics",
		TaxID:      "405123456",
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error)
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:        f.invoiceID,
		CompanyID: f.companyID,
		ClientID:  clientID,
		Number:    "INV-2025-0001",
		Status:    invoicedomain.InvoiceStatusSent,
		Currency:  "GEL",
		VATRate:   18,
		Subtotal:  125.00,
		VATAmount: 22.50,
		Total:     147.50,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, 14),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&invoicedomain.InvoiceItem{
		ID:          node.Generate(),
		CompanyID:   f.companyID,
		InvoiceID:   f.invoiceID,
		Description: "Freight audit",
		Quantity:    1,
		UnitPrice:   125.00,
		LineTotal:   125.00,
		CreatedAt:   now,
	}).Error)

	return f
}

func (f *fixture) ctx() context.Context {
	ctx := tenantctx.WithUserID(context.Background(), f.userID)
	return tenantctx.WithCompanyID(ctx, f.companyID)
}

func TestEnsureLinkIsStable(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "https://app.invora.ge/public/invoices/"+first.Token, first.URL)

	second, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}

// Re-ensuring without an expiry clears a stale one, so the link the owner
// just asked for actually resolves.
func TestEnsureLinkClearsExpiredExpiry(t *testing.T) {
	f := newFixture(t)

	expires := f.clock.Now().Add(time.Hour)
	first, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{
		InvoiceID: f.invoiceID.String(),
		ExpiresAt: &expires,
	})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.GetByToken(context.Background(), first.Token)
	require.ErrorIs(t, err, domain.ErrNotFound)

	second, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
	assert.Nil(t, second.ExpiresAt)

	view, err := f.svc.GetByToken(context.Background(), second.Token)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0001", view.Number)
}

func TestGetByTokenReturnsSafeProjection(t *testing.T) {
	f := newFixture(t)

	link, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	require.NoError(t, err)

	view, err := f.svc.GetByToken(context.Background(), link.Token)
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-0001", view.Number)
	assert.Equal(t, "Kutaisi Consulting", view.CompanyName)
	assert.Equal(t, "Black Sea Logistics", view.ClientName)
	assert.InDelta(t, 147.50, view.Total, 1e-9)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Freight audit", view.Items[0].Description)
}

// Missing, disabled and expired tokens all come back as the same not-found
// error so a caller cannot tell which case it hit.
func TestUniformNotFound(t *testing.T) {
	f := newFixture(t)

	link, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	require.NoError(t, err)

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.svc.GetByToken(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := f.svc.GetByToken(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("disabled link", func(t *testing.T) {
		require.NoError(t, f.svc.DisableLink(f.ctx(), f.invoiceID.String()))
		_, err := f.svc.GetByToken(context.Background(), link.Token)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("expired link", func(t *testing.T) {
		expires := f.clock.Now().Add(time.Hour)
		_, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{
			InvoiceID: f.invoiceID.String(),
			ExpiresAt: &expires,
		})
		require.NoError(t, err)

		f.clock.Advance(2 * time.Hour)
		_, err = f.svc.GetByToken(context.Background(), link.Token)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRenderPDF(t *testing.T) {
	f := newFixture(t)

	link, err := f.svc.EnsureLink(f.ctx(), domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	require.NoError(t, err)

	doc, err := f.svc.RenderPDF(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "INV-2025-0001")
}

func TestEnsureLinkTenantScoped(t *testing.T) {
	f := newFixture(t)

	otherCtx := tenantctx.WithCompanyID(
		tenantctx.WithUserID(context.Background(), snowflake.ID(777)),
		snowflake.ID(778),
	)
	_, err := f.svc.EnsureLink(otherCtx, domain.EnsureLinkRequest{InvoiceID: f.invoiceID.String()})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
