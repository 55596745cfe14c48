package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/recapp-backend/internal/usecase/auth"
)

type AuthHandler struct {
	verifier *auth.TokenVerifier
}

func NewAuthHandler(verifier *auth.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
	}
}

// DevTokenRequest represents a development token request
type DevTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// DevTokenResponse is the response structure
type DevTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// DevToken handles POST /auth/dev-token. Mounted only in development.
// @Summary Issue development token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body DevTokenRequest true "User to impersonate"
// @Success 200 {object} DevTokenResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/dev-token [post]
func (h *AuthHandler) DevToken(c *gin.Context) {
	var req DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, expiresAt, err := h.verifier.IssueDevToken(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DevTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}
