package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/service"
	"github.com/cvazquezfgc/planificacio-renovacio-via/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Planner is the service surface the handlers need
type Planner interface {
	DatasetState() string
	Refresh(ctx context.Context) (*models.DatasetInfo, error)
	Dataset(ctx context.Context) (*models.DatasetInfo, error)
	Sections(ctx context.Context) ([]string, error)
	Groups(ctx context.Context, section string, track int) ([]models.TrackRuns, error)
	Summary(ctx context.Context, section string) (*models.SectionSummary, error)
	Interval(ctx context.Context, section string, from, to int) (*models.WindowFigure, error)
	LineSummary(ctx context.Context) (*models.LineSummary, error)
	Stations(ctx context.Context, section string) ([]models.Station, error)
	Segments(ctx context.Context, filter models.SegmentFilter) (*models.SegmentPage, error)
	ExportWorkbook(ctx context.Context, w io.Writer) error
}

// RenovationHandler handles HTTP requests for the renovation plan
type RenovationHandler struct {
	service Planner
}

// NewRenovationHandler creates a new renovation handler
func NewRenovationHandler(service Planner) *RenovationHandler {
	return &RenovationHandler{service: service}
}

// Health handles GET /health
func (h *RenovationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"dataset": h.service.DatasetState(),
	})
}

// GetDataset handles GET /api/v1/dataset
func (h *RenovationHandler) GetDataset(c *gin.Context) {
	info, err := h.service.Dataset(c.Request.Context())
	if err != nil {
		serviceError(c, "Failed to get dataset", err)
		return
	}
	response.Success(c, info)
}

// RefreshDataset handles POST /api/v1/dataset/refresh
func (h *RenovationHandler) RefreshDataset(c *gin.Context) {
	info, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusBadGateway, "Failed to refresh dataset", err)
		return
	}
	response.Success(c, info)
}

// GetSections handles GET /api/v1/sections
func (h *RenovationHandler) GetSections(c *gin.Context) {
	sections, err := h.service.Sections(c.Request.Context())
	if err != nil {
		serviceError(c, "Failed to get sections", err)
		return
	}
	response.Success(c, sections)
}

// GetGroups handles GET /api/v1/sections/:section/groups
func (h *RenovationHandler) GetGroups(c *gin.Context) {
	var filter models.GroupFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	runs, err := h.service.Groups(c.Request.Context(), c.Param("section"), filter.Track)
	if err != nil {
		serviceError(c, "Failed to group segments", err)
		return
	}
	response.Success(c, runs)
}

// GetSummary handles GET /api/v1/sections/:section/summary
func (h *RenovationHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("section"))
	if err != nil {
		serviceError(c, "Failed to summarize section", err)
		return
	}
	response.Success(c, summary)
}

// GetInterval handles GET /api/v1/sections/:section/interval
func (h *RenovationHandler) GetInterval(c *gin.Context) {
	var filter models.IntervalFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	fig, err := h.service.Interval(c.Request.Context(), c.Param("section"), filter.From, filter.To)
	if err != nil {
		serviceError(c, "Failed to compute interval", err)
		return
	}
	response.Success(c, fig)
}

// GetLineSummary handles GET /api/v1/line/summary
func (h *RenovationHandler) GetLineSummary(c *gin.Context) {
	line, err := h.service.LineSummary(c.Request.Context())
	if err != nil {
		serviceError(c, "Failed to summarize line", err)
		return
	}
	response.Success(c, line)
}

// GetStations handles GET /api/v1/stations
func (h *RenovationHandler) GetStations(c *gin.Context) {
	var filter models.StationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	stations, err := h.service.Stations(c.Request.Context(), filter.Section)
	if err != nil {
		serviceError(c, "Failed to get stations", err)
		return
	}
	response.Success(c, stations)
}

// GetSegments handles GET /api/v1/segments
func (h *RenovationHandler) GetSegments(c *gin.Context) {
	var filter models.SegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	page, err := h.service.Segments(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, "Failed to get segments", err)
		return
	}
	response.Success(c, page)
}

// ExportWorkbook handles GET /api/v1/export.xlsx
func (h *RenovationHandler) ExportWorkbook(c *gin.Context) {
	info, err := h.service.Dataset(c.Request.Context())
	if err != nil {
		serviceError(c, "Failed to export workbook", err)
		return
	}

	// rendered in memory so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(c.Request.Context(), &buf); err != nil {
		serviceError(c, "Failed to export workbook", err)
		return
	}

	filename := "renovacio-" + info.LoadedAt.Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// serviceError maps service errors onto HTTP statuses
func serviceError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, service.ErrNoDataset):
		response.ServiceUnavailable(c, "No dataset loaded", err)
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, "Section not found", err)
	case errors.Is(err, service.ErrInvalidTrack), errors.Is(err, service.ErrInvalidInterval):
		response.BadRequest(c, "Invalid query parameters", err)
	default:
		response.InternalError(c, message, err)
	}
}
