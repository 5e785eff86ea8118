package schedule

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/auth"
)

type Handler struct {
	solver *Solver
}

func NewHandler(solver *Solver) *Handler {
	return &Handler{solver: solver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/schedule", h.Schedule, auth.RequireRole("admin", "physician"))
}

// Schedule answers 200 for both outcomes; an infeasible run is the
// {"error": ...} object.
func (h *Handler) Schedule(c echo.Context) error {
	var patients []triage.ScoredPatient
	if err := c.Bind(&patients); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.solver.Solve(c.Request().Context(), patients))
}
