package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	companydomain "github.com/invorahq/invora/internal/company/domain"
)

func (s *Server) GetCompany(c *gin.Context) {
	company, err := s.companySvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

type updateCompanyRequest struct {
	Name            *string  `json:"name"`
	TaxID           *string  `json:"tax_id"`
	Address         *string  `json:"address"`
	Email           *string  `json:"email"`
	DefaultCurrency *string  `json:"default_currency"`
	DefaultVATRate  *float64 `json:"default_vat_rate"`
	InvoicePrefix   *string  `json:"invoice_prefix"`
}

func (s *Server) UpdateCompany(c *gin.Context) {
	var req updateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	company, err := s.companySvc.Update(c.Request.Context(), companydomain.UpdateCompanyRequest{
		Name:            req.Name,
		TaxID:           req.TaxID,
		Address:         req.Address,
		Email:           req.Email,
		DefaultCurrency: req.DefaultCurrency,
		DefaultVATRate:  req.DefaultVATRate,
		InvoicePrefix:   req.InvoicePrefix,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}
