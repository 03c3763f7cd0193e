package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stackit/internal/models"
)

func (s *Server) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Profile document next to the auth record. Registration stands even if
	// this write fails; the profile is only a directory entry.
	profile := models.UserProfile{ID: user.ID, Email: user.Email, CreatedAt: time.Now().UTC()}
	if err := s.store.From("users").Insert(c.Request.Context(), profile, nil); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("profile document write failed")
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          session.User,
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
	})
}

// Me returns the platform's view of the signed-in user.
func (s *Server) Me(c *gin.Context) {
	user, err := s.auth.GetUser(c.Request.Context(), tokenFrom(c))
	if err != nil {
		s.log.Warn().Err(err).Msg("user lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "user lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.auth.SignOut(c.Request.Context(), tokenFrom(c)); err != nil {
		s.log.Warn().Err(err).Msg("sign-out failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "sign-out failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.auth.Recover(c.Request.Context(), req.Email); err != nil {
		s.log.Warn().Err(err).Msg("password recovery failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send reset email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reset email sent"})
}

// ProviderRedirect hands the browser the third-party sign-in URL.
func (s *Server) ProviderRedirect(c *gin.Context) {
	provider := c.Param("name")
	redirectTo := c.Query("redirect_to")
	c.JSON(http.StatusOK, gin.H{"url": s.auth.ProviderAuthorizeURL(provider, redirectTo)})
}
