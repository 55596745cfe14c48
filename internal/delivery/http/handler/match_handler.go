package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/usecase/match"
)

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
}

func NewMatchHandler(matchUseCase *match.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

// MatchesResponse represents the ranked match list
type MatchesResponse struct {
	Matches []domain.Match `json:"matches"`
	Count   int            `json:"count"`
}

// GetMatches handles GET /matches/:user_id
// @Summary Get matches
// @Description Ranked workout partners for the caller, excluding friends and pending requests
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} MatchesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /matches/{user_id} [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	matches, err := h.matchUseCase.GetMatches(c.Request.Context(), caller, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MatchesResponse{Matches: matches, Count: len(matches)})
}

// ExplainMatch handles GET /matches/:user_id/explain/:other_user_id
// @Summary Explain match
// @Description Score breakdown and summary for a pair of users
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Param other_user_id path string true "Other user ID"
// @Success 200 {object} domain.MatchExplanation
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/{user_id}/explain/{other_user_id} [get]
func (h *MatchHandler) ExplainMatch(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	explanation, err := h.matchUseCase.ExplainMatch(c.Request.Context(), caller, c.Param("user_id"), c.Param("other_user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, explanation)
}
