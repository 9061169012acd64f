package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type BalanceResponse struct {
	UserCredits
	PlanName  string `json:"plan_name"`
	Unlimited bool   `json:"unlimited"`
	Available int    `json:"available"`
}

type Service interface {
	// Provision creates the credit row for a new user on the given plan.
	Provision(ctx context.Context, db *gorm.DB, userID snowflake.ID, planCode string) (UserCredits, error)
	Balance(ctx context.Context) (BalanceResponse, error)
	// Consume takes one credit inside the caller's transaction. It fails with
	// ErrNoCredits when the allowance is exhausted; unlimited plans bypass.
	Consume(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
	// Refund returns one credit, never driving used credits below zero.
	Refund(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
	// ChangePlan switches the plan and resets the allowance to the plan's
	// credit grant. Payment capture is mocked.
	ChangePlan(ctx context.Context, planCode string) (BalanceResponse, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrNoCredits   = errors.New("no_credits_remaining")
	ErrUnknownPlan = errors.New("unknown_plan")
	ErrNotFound    = errors.New("not_found")
)
