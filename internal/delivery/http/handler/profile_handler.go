package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/recapp-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// CreateProfile handles POST /users/:user_id
// @Summary Create profile
// @Description Create the caller's profile at sign-up
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param request body profile.CreateProfileRequest true "Profile data"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users/{user_id} [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req profile.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.profileUseCase.CreateProfile(c.Request.Context(), caller, c.Param("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GetProfile handles GET /users/:user_id
// @Summary Get profile
// @Description Get a user's profile; contact details are only shown to the owner
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} domain.Profile
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{user_id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	p, err := h.profileUseCase.GetProfile(c.Request.Context(), caller, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// CompleteSurvey handles PUT /users/:user_id/survey
// @Summary Complete survey
// @Description Store onboarding survey answers and make the user matchable
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param request body profile.SurveyRequest true "Survey answers"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{user_id}/survey [put]
func (h *ProfileHandler) CompleteSurvey(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req profile.SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.profileUseCase.CompleteSurvey(c.Request.Context(), caller, c.Param("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateSports handles PATCH /users/:user_id/sports
// @Summary Update sports
// @Description Replace the user's sport set
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param request body profile.UpdateSportsRequest true "Sports"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{user_id}/sports [patch]
func (h *ProfileHandler) UpdateSports(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req profile.UpdateSportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.profileUseCase.UpdateSports(c.Request.Context(), caller, c.Param("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
