package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/config"
	"github.com/invorahq/invora/internal/credits/domain"
	obsmetrics "github.com/invorahq/invora/internal/observability/metrics"
	"github.com/invorahq/invora/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Plans   *config.PlanCatalogHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	plans   *config.PlanCatalogHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("credits.service"),
		repo:    p.Repo,
		plans:   p.Plans,
		metrics: p.Metrics,
	}
}

func (s *Service) Provision(ctx context.Context, db *gorm.DB, userID snowflake.ID, planCode string) (domain.UserCredits, error) {
	if userID == 0 {
		return domain.UserCredits{}, domain.ErrInvalidUser
	}
	if db == nil {
		db = s.db
	}

	plan, ok := s.plans.Lookup(planCode)
	if !ok {
		return domain.UserCredits{}, domain.ErrUnknownPlan
	}

	now := time.Now().UTC()
	credits := domain.UserCredits{
		UserID:       userID,
		PlanCode:     plan.Code,
		TotalCredits: plan.Credits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, db, &credits); err != nil {
		return domain.UserCredits{}, err
	}
	return credits, nil
}

func (s *Service) Balance(ctx context.Context) (domain.BalanceResponse, error) {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		return domain.BalanceResponse{}, domain.ErrInvalidUser
	}

	credits, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.BalanceResponse{}, err
	}
	if credits == nil {
		return domain.BalanceResponse{}, domain.ErrNotFound
	}

	return s.balanceFor(*credits), nil
}

func (s *Service) Consume(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	if db == nil {
		db = s.db
	}

	credits, err := s.repo.FindByUserID(ctx, db, userID)
	if err != nil {
		return err
	}
	if credits == nil {
		return domain.ErrNoCredits
	}

	if plan, ok := s.plans.Lookup(credits.PlanCode); ok && plan.Unlimited {
		return nil
	}

	consumed, err := s.repo.ConsumeOne(ctx, db, userID)
	if err != nil {
		return err
	}
	if !consumed {
		return domain.ErrNoCredits
	}

	s.metrics.CreditConsumed()
	return nil
}

func (s *Service) Refund(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	if db == nil {
		db = s.db
	}

	credits, err := s.repo.FindByUserID(ctx, db, userID)
	if err != nil {
		return err
	}
	if credits == nil {
		return nil
	}
	if plan, ok := s.plans.Lookup(credits.PlanCode); ok && plan.Unlimited {
		return nil
	}

	if err := s.repo.RefundOne(ctx, db, userID); err != nil {
		return err
	}
	s.metrics.CreditRefunded()
	return nil
}

func (s *Service) ChangePlan(ctx context.Context, planCode string) (domain.BalanceResponse, error) {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		return domain.BalanceResponse{}, domain.ErrInvalidUser
	}

	plan, ok := s.plans.Lookup(planCode)
	if !ok {
		return domain.BalanceResponse{}, domain.ErrUnknownPlan
	}

	credits, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.BalanceResponse{}, err
	}
	if credits == nil {
		return domain.BalanceResponse{}, domain.ErrNotFound
	}

	// TODO: charge through a payment provider before applying the plan.
	// Payments are mocked; the plan switch applies immediately.
	credits.PlanCode = plan.Code
	credits.TotalCredits = plan.Credits
	credits.UsedCredits = 0
	credits.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdatePlan(ctx, s.db, credits); err != nil {
		return domain.BalanceResponse{}, err
	}

	s.log.Info("plan changed",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.Code),
	)
	return s.balanceFor(*credits), nil
}

func (s *Service) balanceFor(credits domain.UserCredits) domain.BalanceResponse {
	plan, _ := s.plans.Lookup(credits.PlanCode)
	return domain.BalanceResponse{
		UserCredits: credits,
		PlanName:    planNameOr(plan.Name, credits.PlanCode),
		Unlimited:   plan.Unlimited,
		Available:   credits.Available(plan.Unlimited),
	}
}

func planNameOr(name, code string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return code
}
