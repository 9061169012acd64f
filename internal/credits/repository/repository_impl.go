package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/credits/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, credits *domain.UserCredits) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_credits (user_id, plan_code, total_credits, used_credits, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		credits.UserID,
		credits.PlanCode,
		credits.TotalCredits,
		credits.UsedCredits,
		credits.CreatedAt,
		credits.UpdatedAt,
	).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.UserCredits, error) {
	var credits domain.UserCredits
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, plan_code, total_credits, used_credits, created_at, updated_at
		 FROM user_credits WHERE user_id = ?`,
		userID,
	).Scan(&credits).Error
	if err != nil {
		return nil, err
	}
	if credits.UserID == 0 {
		return nil, nil
	}
	return &credits, nil
}

// The gate and the decrement are one statement so two concurrent creations
// cannot both pass on the last credit.
func (r *repo) ConsumeOne(ctx context.Context, db *gorm.DB, userID snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE user_credits
		 SET used_credits = used_credits + 1, updated_at = ?
		 WHERE user_id = ? AND used_credits < total_credits`,
		time.Now().UTC(),
		userID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) RefundOne(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_credits
		 SET used_credits = used_credits - 1, updated_at = ?
		 WHERE user_id = ? AND used_credits > 0`,
		time.Now().UTC(),
		userID,
	).Error
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, credits *domain.UserCredits) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_credits
		 SET plan_code = ?, total_credits = ?, used_credits = ?, updated_at = ?
		 WHERE user_id = ?`,
		credits.PlanCode,
		credits.TotalCredits,
		credits.UsedCredits,
		credits.UpdatedAt,
		credits.UserID,
	).Error
}
