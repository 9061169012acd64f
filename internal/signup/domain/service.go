// Package domain defines account provisioning. Registration creates the
// user, their company and the free-plan credit allowance as one unit.
package domain

import (
	"context"

	authdomain "github.com/invorahq/invora/internal/auth/domain"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
}

type RegisterResponse struct {
	User    authdomain.User           `json:"user"`
	Company companydomain.Company     `json:"company"`
	Credits creditsdomain.UserCredits `json:"credits"`
}

// Service provisions new accounts. A failure at any step rolls the whole
// registration back; there is never a user without a company or credits.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
}
