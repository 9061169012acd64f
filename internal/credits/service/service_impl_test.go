package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/invorahq/invora/internal/config"
	"github.com/invorahq/invora/internal/credits/domain"
	"github.com/invorahq/invora/internal/credits/repository"
	"github.com/invorahq/invora/internal/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserCredits{}))

	plans, err := config.NewPlanCatalogHolder(zap.NewNop())
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Plans: plans,
	}), db
}

func TestProvision(t *testing.T) {
	svc, _ := newService(t)

	userID := snowflake.ID(100)
	credits, err := svc.Provision(context.Background(), nil, userID, "free")
	require.NoError(t, err)

	assert.Equal(t, "free", credits.PlanCode)
	assert.Equal(t, 5, credits.TotalCredits)
	assert.Zero(t, credits.UsedCredits)

	_, err = svc.Provision(context.Background(), nil, userID, "no-such-plan")
	assert.ErrorIs(t, err, domain.ErrUnknownPlan)
}

func TestConsumeExhaustsAllowance(t *testing.T) {
	svc, _ := newService(t)

	userID := snowflake.ID(101)
	_, err := svc.Provision(context.Background(), nil, userID, "free")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Consume(context.Background(), nil, userID))
	}

	err = svc.Consume(context.Background(), nil, userID)
	assert.ErrorIs(t, err, domain.ErrNoCredits)
}

func TestConsumeUnlimitedPlanBypasses(t *testing.T) {
	svc, db := newService(t)

	userID := snowflake.ID(102)
	_, err := svc.Provision(context.Background(), nil, userID, "unlimited")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.Consume(context.Background(), nil, userID))
	}

	// Nothing is recorded against the counter on unlimited plans.
	var credits domain.UserCredits
	require.NoError(t, db.First(&credits, "user_id = ?", userID).Error)
	assert.Zero(t, credits.UsedCredits)
}

func TestRefundNeverGoesNegative(t *testing.T) {
	svc, db := newService(t)

	userID := snowflake.ID(103)
	_, err := svc.Provision(context.Background(), nil, userID, "free")
	require.NoError(t, err)

	require.NoError(t, svc.Consume(context.Background(), nil, userID))
	require.NoError(t, svc.Refund(context.Background(), nil, userID))
	require.NoError(t, svc.Refund(context.Background(), nil, userID))

	var credits domain.UserCredits
	require.NoError(t, db.First(&credits, "user_id = ?", userID).Error)
	assert.Zero(t, credits.UsedCredits)
}

func TestBalance(t *testing.T) {
	svc, _ := newService(t)

	userID := snowflake.ID(104)
	_, err := svc.Provision(context.Background(), nil, userID, "free")
	require.NoError(t, err)
	require.NoError(t, svc.Consume(context.Background(), nil, userID))

	ctx := tenantctx.WithUserID(context.Background(), userID)
	balance, err := svc.Balance(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Free", balance.PlanName)
	assert.Equal(t, 4, balance.Available)
	assert.False(t, balance.Unlimited)

	_, err = svc.Balance(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestChangePlanResetsAllowance(t *testing.T) {
	svc, _ := newService(t)

	userID := snowflake.ID(105)
	_, err := svc.Provision(context.Background(), nil, userID, "free")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Consume(context.Background(), nil, userID))
	}

	ctx := tenantctx.WithUserID(context.Background(), userID)
	balance, err := svc.ChangePlan(ctx, "starter")
	require.NoError(t, err)

	assert.Equal(t, "starter", balance.PlanCode)
	assert.Equal(t, 50, balance.TotalCredits)
	assert.Zero(t, balance.UsedCredits)
	assert.Equal(t, 50, balance.Available)

	_, err = svc.ChangePlan(ctx, "no-such-plan")
	assert.ErrorIs(t, err, domain.ErrUnknownPlan)
}

func TestUnlimitedBalanceReportsMinusOne(t *testing.T) {
	svc, _ := newService(t)

	userID := snowflake.ID(106)
	_, err := svc.Provision(context.Background(), nil, userID, "unlimited")
	require.NoError(t, err)

	ctx := tenantctx.WithUserID(context.Background(), userID)
	balance, err := svc.Balance(ctx)
	require.NoError(t, err)

	assert.True(t, balance.Unlimited)
	assert.Equal(t, -1, balance.Available)
}
