// Package domain contains the per-user invoice credit ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserCredits tracks the invoice allowance for one user. Except on unlimited
// plans, used credits never exceed total credits and never drop below zero.
type UserCredits struct {
	UserID       snowflake.ID `gorm:"column:user_id;primaryKey" json:"user_id"`
	PlanCode     string       `gorm:"column:plan_code;not null;default:'free'" json:"plan_code"`
	TotalCredits int          `gorm:"column:total_credits;not null;default:0" json:"total_credits"`
	UsedCredits  int          `gorm:"column:used_credits;not null;default:0" json:"used_credits"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UserCredits) TableName() string { return "user_credits" }

// Available returns the remaining allowance; unlimited plans report -1.
func (c UserCredits) Available(unlimited bool) int {
	if unlimited {
		return -1
	}
	remaining := c.TotalCredits - c.UsedCredits
	if remaining < 0 {
		return 0
	}
	return remaining
}
