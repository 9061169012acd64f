package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/invorahq/invora/internal/auth/domain"
	signupdomain "github.com/invorahq/invora/internal/signup/domain"
	"github.com/invorahq/invora/internal/tenantctx"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name" binding:"required"`
}

func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.signupsvc.Register(c.Request.Context(), signupdomain.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Start a session right away so the client does not need a second
	// round trip through /auth/login.
	session, _, rawToken, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sessions.Set(c, rawToken, session.ExpiresAt)

	c.JSON(http.StatusCreated, resp)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, user, rawToken, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, rawToken, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.GetUser(ctx, userID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"user": user}
	if company, err := s.companySvc.Get(ctx); err == nil {
		resp["company"] = company
	}
	if balance, err := s.creditsSvc.Balance(ctx); err == nil {
		resp["credits"] = balance
	}

	c.JSON(http.StatusOK, resp)
}
