package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetPublicInvoice(c *gin.Context) {
	view, err := s.publicInvoiceSvc.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": view})
}

func (s *Server) GetPublicInvoicePDF(c *gin.Context) {
	doc, err := s.publicInvoiceSvc.RenderPDF(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "invoice.pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}
