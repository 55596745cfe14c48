package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/gdugdh24/recapp-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/recapp-backend/internal/domain"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindUnauthorized:   http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindAlreadyExists:  http.StatusConflict,
	domain.KindAlreadyFriends: http.StatusConflict,
	domain.KindInvalidState:   http.StatusConflict,
	domain.KindTransient:      http.StatusServiceUnavailable,
	domain.KindInternal:       http.StatusInternalServerError,
}

// StatusFor maps an error onto its HTTP status.
func StatusFor(err error) int {
	if status, ok := kindStatus[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, ErrorResponse{
		Error:  string(kind),
		Detail: domain.DetailOf(err),
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  string(domain.KindValidation),
		Detail: bindDetail(err),
	})
}

func bindDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "sport":
		return fmt.Sprintf("%s: %v is not in the sports catalog", field, fe.Value())
	case "gym_level":
		return domain.ErrInvalidGymLevel.Detail
	case "workout_goal":
		return domain.ErrInvalidWorkoutGoal.Detail
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// callerID returns the authenticated user or writes a 401.
func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return "", false
	}
	return id, true
}
