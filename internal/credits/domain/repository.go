package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, credits *UserCredits) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*UserCredits, error)
	// ConsumeOne performs a conditional single-statement decrement of the
	// allowance; it returns false when no credit was available.
	ConsumeOne(ctx context.Context, db *gorm.DB, userID snowflake.ID) (bool, error)
	// RefundOne increments the allowance back, floored at zero used credits.
	RefundOne(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
	UpdatePlan(ctx context.Context, db *gorm.DB, credits *UserCredits) error
}
