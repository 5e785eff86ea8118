package beds

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/auth"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
)

// Ward is the configured floor: its size, wall cells and default strategy.
// MaxGridSize bounds size overrides; zero means floorplan.DefaultMaxSize.
type Ward struct {
	GridSize    int
	MaxGridSize int
	Walls       []floorplan.Bed
	Strategy    StrategyKind
}

// Layout builds the grid for size. Walls describe the configured ward only,
// so a different size gets a plain grid.
func (w Ward) Layout(size int) (*floorplan.Grid, error) {
	opts := []floorplan.GridOption{floorplan.WithMaxSize(w.MaxGridSize)}
	if size == w.GridSize && len(w.Walls) > 0 {
		opts = append(opts, floorplan.WithWalls(w.Walls...))
	}
	return floorplan.NewGrid(size, opts...)
}

type Handler struct {
	ward    Ward
	logger  zerolog.Logger
	metrics *metrics.Recorder
}

func NewHandler(ward Ward, logger zerolog.Logger, m *metrics.Recorder) *Handler {
	return &Handler{ward: ward, logger: logger, metrics: m}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/beds", auth.RequireRole("admin", "physician", "nurse"))
	g.POST("/allocate", h.Allocate)
}

// Allocate accepts ?grid_size= and ?strategy= overrides.
func (h *Handler) Allocate(c echo.Context) error {
	size := h.ward.GridSize
	if q := c.QueryParam("grid_size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "grid_size must be an integer")
		}
		size = n
	}

	kind := h.ward.Strategy
	if q := c.QueryParam("strategy"); q != "" {
		k, err := ParseStrategy(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		kind = k
	}
	strategy, err := NewStrategy(kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var patients []triage.ScoredPatient
	if err := c.Bind(&patients); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	grid, err := h.ward.Layout(size)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	alloc := NewAllocator(grid,
		WithStrategy(strategy),
		WithLogger(h.logger),
		WithMetrics(h.metrics),
	)
	out, err := alloc.Allocate(c.Request().Context(), patients)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, out)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "bed allocation failed").SetInternal(err)
	}
}
