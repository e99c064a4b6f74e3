package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/services/valuation"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(c *gin.Context, statusCode int, message, code string) {
	c.JSON(statusCode, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps service errors onto HTTP responses. Anything not
// recognised is logged and reported generically.
func writeServiceError(c *gin.Context, logger *common.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrPortfolioNotFound):
		WriteErrorWithCode(c, http.StatusNotFound, "portfolio not found", "not_found")
	case errors.Is(err, models.ErrUnknownRange):
		WriteErrorWithCode(c, http.StatusBadRequest, err.Error(), "unknown_range")
	case errors.Is(err, models.ErrSnapshotExists):
		WriteErrorWithCode(c, http.StatusConflict, "snapshot already recorded today", "snapshot_exists")
	case errors.Is(err, models.ErrPricesUnavailable):
		WriteErrorWithCode(c, http.StatusServiceUnavailable, "live prices unavailable, try again later", "prices_unavailable")
	case errors.Is(err, valuation.ErrSuperseded), errors.Is(err, context.Canceled):
		// a newer query for the same view owns the result
		WriteErrorWithCode(c, http.StatusConflict, "query superseded", "superseded")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		WriteError(c, http.StatusInternalServerError, "unable to load portfolio")
	}
}
