package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	publicinvoicedomain "github.com/invorahq/invora/internal/publicinvoice/domain"
	"github.com/invorahq/invora/pkg/db/pagination"
)

type invoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitPrice   float64 `json:"unit_price"`
}

type createInvoiceRequest struct {
	ClientID  string               `json:"client_id" binding:"required"`
	Items     []invoiceItemRequest `json:"items" binding:"required"`
	Currency  string               `json:"currency"`
	VATRate   *float64             `json:"vat_rate"`
	IssueDate *time.Time           `json:"issue_date"`
	DueDate   *time.Time           `json:"due_date"`
	DueInDays *int                 `json:"due_in_days"`
	SendNow   bool                 `json:"send_now"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	inv, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		ClientID:  req.ClientID,
		Items:     toItemInputs(req.Items),
		Currency:  req.Currency,
		VATRate:   req.VATRate,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		DueInDays: req.DueInDays,
		SendNow:   req.SendNow,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": inv})
}

type listInvoicesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=25"`
	Status    string `form:"status"`
	ClientID  string `form:"client_id"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var q listInvoicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(),
		invoicedomain.ListInvoiceFilter{
			Status:   invoicedomain.InvoiceStatus(q.Status),
			ClientID: q.ClientID,
		},
		pagination.Pagination{PageToken: q.PageToken, PageSize: q.PageSize},
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

type updateInvoiceRequest struct {
	ClientID  *string               `json:"client_id"`
	Items     *[]invoiceItemRequest `json:"items"`
	Currency  *string               `json:"currency"`
	VATRate   *float64              `json:"vat_rate"`
	IssueDate *time.Time            `json:"issue_date"`
	DueDate   *time.Time            `json:"due_date"`
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := invoicedomain.UpdateInvoiceRequest{
		ClientID:  req.ClientID,
		Currency:  req.Currency,
		VATRate:   req.VATRate,
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
	}
	if req.Items != nil {
		items := toItemInputs(*req.Items)
		update.Items = &items
	}

	inv, err := s.invoiceSvc.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) SendInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	inv, err := s.invoiceSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

type ensurePublicLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Server) EnsurePublicLink(c *gin.Context) {
	var req ensurePublicLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	link, err := s.publicInvoiceSvc.EnsureLink(c.Request.Context(), publicinvoicedomain.EnsureLinkRequest{
		InvoiceID: c.Param("id"),
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (s *Server) DisablePublicLink(c *gin.Context) {
	if err := s.publicInvoiceSvc.DisableLink(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func toItemInputs(items []invoiceItemRequest) []invoicedomain.ItemInput {
	inputs := make([]invoicedomain.ItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, invoicedomain.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return inputs
}
