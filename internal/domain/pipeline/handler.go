package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/beds"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/auth"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/pipeline", auth.RequireRole("admin", "physician"))
	g.POST("/run", h.Run)
}

// Run accepts ?grid_size=, ?strategy=, ?summary=true and ?format=xlsx.
func (h *Handler) Run(c echo.Context) error {
	var opts Options
	if q := c.QueryParam("grid_size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "grid_size must be an integer")
		}
		if n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, floorplan.ErrInvalidGridSize.Error())
		}
		opts.GridSize = n
	}
	if q := c.QueryParam("strategy"); q != "" {
		k, err := beds.ParseStrategy(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.Strategy = k
	}
	if q := c.QueryParam("summary"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "summary must be a boolean")
		}
		opts.Summary = b
	}

	var vitals []triage.PatientVitals
	if err := c.Bind(&vitals); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	report, err := h.svc.Run(c.Request().Context(), vitals, opts)
	switch {
	case err == nil:
	case errors.Is(err, floorplan.ErrInvalidGridSize),
		errors.Is(err, floorplan.ErrGridTooLarge),
		errors.Is(err, floorplan.ErrEntryBlocked),
		errors.Is(err, beds.ErrUnknownStrategy):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "pipeline run failed").SetInternal(err)
	}

	if c.QueryParam("format") == "xlsx" {
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, report); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "report export failed").SetInternal(err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="report-`+report.RunID.String()+`.xlsx"`)
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	}
	return c.JSON(http.StatusOK, report)
}
