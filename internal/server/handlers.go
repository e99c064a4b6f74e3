package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/services/valuation"
)

const defaultRange = models.Range1M

// chartRequest parses range, hover and benchmark from the query string.
// Writes a 400 and returns false on invalid input.
func chartRequest(c *gin.Context) (models.TimeRange, interfaces.ChartOptions, bool) {
	opts := interfaces.ChartOptions{Benchmark: true}

	rng := defaultRange
	if raw := c.Query("range"); raw != "" {
		parsed, err := models.ParseTimeRange(raw)
		if err != nil {
			WriteErrorWithCode(c, http.StatusBadRequest, err.Error(), "unknown_range")
			return "", opts, false
		}
		rng = parsed
	}

	if raw := c.Query("hover"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(c, http.StatusBadRequest, "hover must be an integer point index")
			return "", opts, false
		}
		opts.HoverIndex = &idx
	}

	if raw := c.Query("benchmark"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(c, http.StatusBadRequest, "benchmark must be true or false")
			return "", opts, false
		}
		opts.Benchmark = b
	}

	return rng, opts, true
}

// handleChart handles GET /api/portfolios/:id/chart.
func (s *Server) handleChart(c *gin.Context) {
	rng, opts, ok := chartRequest(c)
	if !ok {
		return
	}

	series, err := s.app.ValuationService.GetChart(c.Request.Context(), c.Param("id"), rng, opts)
	if err != nil {
		writeServiceError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// handleChartPNG handles GET /api/portfolios/:id/chart.png.
func (s *Server) handleChartPNG(c *gin.Context) {
	rng, opts, ok := chartRequest(c)
	if !ok {
		return
	}
	width, _ := strconv.Atoi(c.Query("width"))
	height, _ := strconv.Atoi(c.Query("height"))

	series, err := s.app.ValuationService.GetChart(c.Request.Context(), c.Param("id"), rng, opts)
	if err != nil {
		writeServiceError(c, s.logger, err)
		return
	}

	png, err := valuation.RenderChart(series, width, height)
	if err != nil {
		s.logger.Warn().Err(err).Str("portfolio", c.Param("id")).Msg("Chart render failed")
		WriteError(c, http.StatusInternalServerError, "unable to render chart")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// handleValue handles GET /api/portfolios/:id/value.
func (s *Server) handleValue(c *gin.Context) {
	v, err := s.app.ValuationService.GetCurrentValue(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// handleRecordSnapshot handles POST /api/portfolios/:id/snapshots.
func (s *Server) handleRecordSnapshot(c *gin.Context) {
	snap, err := s.app.ValuationService.RecordSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}
