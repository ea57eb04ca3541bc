// Package handlers provides HTTP handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/gin-gonic/gin"
)

// statusFor maps boundary errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrRoadmapNotFound),
		errors.Is(err, services.ErrPhaseOutOfRange),
		errors.Is(err, services.ErrStepOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMessageRequired),
		errors.Is(err, services.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrSysopDisabled):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// position reads the :phase and :step path parameters.
func position(c *gin.Context) (phaseIndex, stepIndex int, ok bool) {
	phaseIndex, err := strconv.Atoi(c.Param("phase"))
	if err != nil {
		return 0, 0, false
	}
	stepIndex, err = strconv.Atoi(c.Param("step"))
	if err != nil {
		return 0, 0, false
	}
	return phaseIndex, stepIndex, true
}
