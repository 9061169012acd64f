package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetCredits(c *gin.Context) {
	balance, err := s.creditsSvc.Balance(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": balance})
}

func (s *Server) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": s.plans.Current().Plans})
}

type upgradePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func (s *Server) UpgradePlan(c *gin.Context) {
	var req upgradePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	balance, err := s.creditsSvc.ChangePlan(c.Request.Context(), req.Plan)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": balance})
}
