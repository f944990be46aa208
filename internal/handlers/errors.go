package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondServiceError translates service-layer errors into HTTP responses.
// Business rejections carry their detail payloads; infrastructure failures
// collapse to a generic 500 with the fallback message.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var (
		insufficient *apperrors.InsufficientFundsError
		limit        *apperrors.LimitExceededError
		precondition *apperrors.PreconditionError
		appErr       *apperrors.AppError
	)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Resource not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    insufficient.Error(),
			"balance":  insufficient.Balance,
			"required": insufficient.Required,
		})
	case errors.As(err, &limit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     limit.Error(),
			"scope":     limit.Scope,
			"cap":       limit.Cap,
			"remaining": limit.Remaining,
			"resetsAt":  limit.ResetsAt.Format(time.RFC3339),
		})
	case errors.As(err, &precondition):
		c.JSON(http.StatusPreconditionFailed, gin.H{
			"error":   precondition.Error(),
			"missing": precondition.Missing,
		})
	case errors.As(err, &appErr):
		logger.Error(fallback, slog.String("error", appErr.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
