package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/invorahq/invora/internal/client/domain"
)

type createClientRequest struct {
	ClientType string `json:"client_type" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	TaxID      string `json:"tax_id"`
	Address    string `json:"address"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		ClientType: req.ClientType,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		TaxID:      req.TaxID,
		Address:    req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

type listClientsQuery struct {
	PageToken       string `form:"page_token"`
	PageSize        int    `form:"page_size,default=25"`
	Name            string `form:"name"`
	ClientType      string `form:"client_type"`
	IncludeArchived bool   `form:"include_archived"`
}

func (s *Server) ListClients(c *gin.Context) {
	var q listClientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
		PageToken:       q.PageToken,
		PageSize:        q.PageSize,
		Name:            q.Name,
		ClientType:      q.ClientType,
		IncludeArchived: q.IncludeArchived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetClient(c *gin.Context) {
	client, err := s.clientSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

type updateClientRequest struct {
	ClientType *string `json:"client_type"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	TaxID      *string `json:"tax_id"`
	Address    *string `json:"address"`
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Update(c.Request.Context(), clientdomain.UpdateClientRequest{
		ID:         c.Param("id"),
		ClientType: req.ClientType,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		TaxID:      req.TaxID,
		Address:    req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
