package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/invorahq/invora/internal/client/domain"
	"github.com/invorahq/invora/internal/client/repository"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/internal/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	genID     *snowflake.Node
	companyID snowflake.ID
	ctx       context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Client{}, &invoicedomain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	companyID := node.Generate()
	userID := node.Generate()
	ctx := tenantctx.WithUserID(context.Background(), userID)
	ctx = tenantctx.WithCompanyID(ctx, companyID)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	return &fixture{
		db:        db,
		svc:       svc,
		genID:     node,
		companyID: companyID,
		ctx:       ctx,
	}
}

func TestCreateClient(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{
		Name:  "  Giorgi Beridze  ",
		Email: "giorgi@example.ge",
		Phone: "+995 555 123 456",
	})
	require.NoError(t, err)

	assert.Equal(t, "Giorgi Beridze", client.Name)
	assert.Equal(t, domain.ClientTypeIndividual, client.ClientType)
	assert.Equal(t, f.companyID, client.CompanyID)
	assert.NotZero(t, client.ID)
}

func TestCreateClientValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  domain.CreateClientRequest
		want error
	}{
		{
			name: "blank name",
			req:  domain.CreateClientRequest{Name: "   "},
			want: domain.ErrInvalidName,
		},
		{
			name: "bad email",
			req:  domain.CreateClientRequest{Name: "Nino", Email: "not-an-email"},
			want: domain.ErrInvalidEmail,
		},
		{
			name: "unknown client type",
			req:  domain.CreateClientRequest{Name: "Nino", ClientType: "charity"},
			want: domain.ErrInvalidClientType,
		},
		{
			name: "company without tax id",
			req:  domain.CreateClientRequest{Name: "Batumi Cargo LLC", ClientType: "company"},
			want: domain.ErrTaxIDRequired,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateCompanyClientWithTaxID(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{
		Name:       "Batumi Cargo LLC",
		ClientType: "company",
		TaxID:      "405123456",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientTypeCompany, client.ClientType)
	assert.Equal(t, "405123456", client.TaxID)
}

func TestGetClientScopedToCompany(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{Name: "Nino"})
	require.NoError(t, err)

	got, err := f.svc.GetByID(f.ctx, client.ID.String())
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)

	otherCtx := tenantctx.WithUserID(context.Background(), f.genID.Generate())
	otherCtx = tenantctx.WithCompanyID(otherCtx, f.genID.Generate())
	_, err = f.svc.GetByID(otherCtx, client.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateClient(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{Name: "Nino"})
	require.NoError(t, err)

	newName := "Nino Kapanadze"
	newEmail := "nino@example.ge"
	updated, err := f.svc.Update(f.ctx, domain.UpdateClientRequest{
		ID:    client.ID.String(),
		Name:  &newName,
		Email: &newEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nino Kapanadze", updated.Name)
	assert.Equal(t, "nino@example.ge", updated.Email)
}

func TestUpdateToCompanyRequiresTaxID(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{Name: "Nino"})
	require.NoError(t, err)

	companyType := "company"
	_, err = f.svc.Update(f.ctx, domain.UpdateClientRequest{
		ID:         client.ID.String(),
		ClientType: &companyType,
	})
	assert.ErrorIs(t, err, domain.ErrTaxIDRequired)

	taxID := "405123456"
	updated, err := f.svc.Update(f.ctx, domain.UpdateClientRequest{
		ID:         client.ID.String(),
		ClientType: &companyType,
		TaxID:      &taxID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientTypeCompany, updated.ClientType)
}

func TestDeleteClientWithoutInvoices(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{Name: "Nino"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, client.ID.String()))

	var count int64
	require.NoError(t, f.db.Model(&domain.Client{}).Where("id = ?", client.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteClientWithInvoicesArchives(t *testing.T) {
	f := newFixture(t)

	client, err := f.svc.Create(f.ctx, domain.CreateClientRequest{Name: "Nino"})
	require.NoError(t, err)

	invoice := invoicedomain.Invoice{
		ID:        f.genID.Generate(),
		CompanyID: f.companyID,
		ClientID:  client.ID,
		Number:    "INV-2025-0001",
		Status:    invoicedomain.InvoiceStatusDraft,
		Currency:  "GEL",
	}
	require.NoError(t, f.db.Create(&invoice).Error)

	require.NoError(t, f.svc.Delete(f.ctx, client.ID.String()))

	var archived domain.Client
	require.NoError(t, f.db.First(&archived, "id = ?", client.ID).Error)
	assert.NotNil(t, archived.ArchivedAt)

	resp, err := f.svc.List(f.ctx, domain.ListClientRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Clients)

	resp, err = f.svc.List(f.ctx, domain.ListClientRequest{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 1)
}

func TestListClientsFilters(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"Giorgi Beridze", "Nino Kapanadze", "Giorgi Maisuradze"} {
		_, err := f.svc.Create(f.ctx, domain.CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	resp, err := f.svc.List(f.ctx, domain.ListClientRequest{Name: "Giorgi"})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 2)

	resp, err = f.svc.List(f.ctx, domain.ListClientRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 3)
}

func TestClientRequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateClientRequest{Name: "Nino"})
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)
}
