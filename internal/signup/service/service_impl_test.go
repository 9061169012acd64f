package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/invorahq/invora/internal/auth/domain"
	authrepo "github.com/invorahq/invora/internal/auth/repository"
	"github.com/invorahq/invora/internal/clock"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	companyrepo "github.com/invorahq/invora/internal/company/repository"
	"github.com/invorahq/invora/internal/config"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
	creditsrepo "github.com/invorahq/invora/internal/credits/repository"
	creditssvc "github.com/invorahq/invora/internal/credits/service"
	"github.com/invorahq/invora/internal/signup/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&companydomain.Company{},
		&creditsdomain.UserCredits{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	plans, err := config.NewPlanCatalogHolder(zap.NewNop())
	require.NoError(t, err)

	credits := creditssvc.New(creditssvc.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  creditsrepo.Provide(),
		Plans: plans,
	})

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)),
		AuthRepo:    authrepo.Provide(),
		CompanyRepo: companyrepo.Provide(),
		Credits:     credits,
	})
	return svc, db
}

func TestRegisterProvisionsAccount(t *testing.T) {
	svc, db := newService(t)

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:       "  Anna@Example.GE ",
		Password:    "correct horse",
		FullName:    "Anna Japaridze",
		CompanyName: "Tbilisi Design Studio",
	})
	require.NoError(t, err)

	assert.Equal(t, "anna@example.ge", resp.User.Email)
	assert.Equal(t, "Tbilisi Design Studio", resp.Company.Name)
	assert.Equal(t, resp.User.ID, resp.Company.OwnerUserID)
	assert.Equal(t, "GEL", resp.Company.DefaultCurrency)
	assert.Equal(t, 18.0, resp.Company.DefaultVATRate)
	assert.Equal(t, "INV", resp.Company.InvoicePrefix)

	assert.Equal(t, "free", resp.Credits.PlanCode)
	assert.EqualValues(t, 5, resp.Credits.TotalCredits)
	assert.EqualValues(t, 0, resp.Credits.UsedCredits)

	var users, companies, grants int64
	require.NoError(t, db.Model(&authdomain.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&companydomain.Company{}).Count(&companies).Error)
	require.NoError(t, db.Model(&creditsdomain.UserCredits{}).Count(&grants).Error)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, companies)
	assert.EqualValues(t, 1, grants)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, db := newService(t)

	req := domain.RegisterRequest{
		Email:       "anna@example.ge",
		Password:    "correct horse",
		CompanyName: "Tbilisi Design Studio",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, authdomain.ErrUserExists)

	var users int64
	require.NoError(t, db.Model(&authdomain.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestRegisterValidation(t *testing.T) {
	svc, db := newService(t)

	cases := []struct {
		name string
		req  domain.RegisterRequest
		want error
	}{
		{
			name: "bad email",
			req:  domain.RegisterRequest{Email: "nope", Password: "correct horse", CompanyName: "Studio"},
			want: authdomain.ErrInvalidEmail,
		},
		{
			name: "short password",
			req:  domain.RegisterRequest{Email: "anna@example.ge", Password: "short", CompanyName: "Studio"},
			want: authdomain.ErrInvalidPassword,
		},
		{
			name: "missing company name",
			req:  domain.RegisterRequest{Email: "anna@example.ge", Password: "correct horse", CompanyName: "  "},
			want: companydomain.ErrInvalidName,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var users int64
	require.NoError(t, db.Model(&authdomain.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
