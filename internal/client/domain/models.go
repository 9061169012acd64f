package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ClientType distinguishes individuals from registered companies; company
// clients must carry a tax identifier.
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeCompany    ClientType = "company"
)

type Client struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID  snowflake.ID      `gorm:"column:company_id;not null;index" json:"company_id"`
	ClientType ClientType        `gorm:"column:client_type;type:text;not null;default:'individual'" json:"client_type"`
	Name       string            `gorm:"not null" json:"name"`
	Email      string            `gorm:"type:text" json:"email,omitempty"`
	Phone      string            `gorm:"type:text" json:"phone,omitempty"`
	TaxID      string            `gorm:"column:tax_id" json:"tax_id,omitempty"`
	Address    string            `gorm:"type:text" json:"address,omitempty"`
	ArchivedAt *time.Time        `gorm:"column:archived_at" json:"archived_at,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
