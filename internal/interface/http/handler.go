package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrachart/astrachart/internal/domain/chart"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// Handler wires the HTTP transport to the chart service.
type Handler struct {
	chartSvc chart.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chartSvc chart.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chartSvc: chartSvc,
		logger:   logger.With("component", "http.handler"),
	}
}

// Render computes the position dataset for a request.
func (h *Handler) Render(c *gin.Context) {
	var req chart.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, timing, err := h.chartSvc.Positions(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "render_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"timing": timing,
	})
}

// RenderChartSpec computes positions and produces the drawable specification.
func (h *Handler) RenderChartSpec(c *gin.Context) {
	var req chart.SpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.chartSvc.ChartSpec(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "render_failed"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChart returns a previously generated chart specification.
func (h *Handler) GetChart(c *gin.Context) {
	spec, err := h.chartSvc.ArchivedSpec(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "chart_lookup_failed"))
		return
	}
	c.JSON(http.StatusOK, spec)
}

// ListWheels returns the stored wheel definitions.
func (h *Handler) ListWheels(c *gin.Context) {
	wheels, err := h.chartSvc.Wheels(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err, "wheel_lookup_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"wheels": wheels})
}

// GetWheel returns one wheel definition by slug.
func (h *Handler) GetWheel(c *gin.Context) {
	wheel, err := h.chartSvc.Wheel(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abortWithError(c, domainError(err, "wheel_lookup_failed"))
		return
	}
	c.JSON(http.StatusOK, wheel)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Info describes the service.
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "astrachart",
		"endpoints": []string{
			"POST /api/v1/render",
			"POST /api/v1/render/chartspec",
			"GET /api/v1/charts/:id",
			"GET /api/v1/wheels",
			"GET /api/v1/wheels/:slug",
			"GET /health",
		},
	})
}

// domainError maps domain error codes onto transport status codes.
func domainError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status = http.StatusBadRequest
		code = apperrors.CodeInvalidInput
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		status = http.StatusNotFound
		code = apperrors.CodeNotFound
	case apperrors.IsCode(err, apperrors.CodeCalculation):
		status = http.StatusUnprocessableEntity
		code = apperrors.CodeCalculation
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
