package triage

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/auth"
)

type Handler struct {
	scorer *Scorer
}

func NewHandler(scorer *Scorer) *Handler {
	return &Handler{scorer: scorer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/triage", auth.RequireRole("admin", "physician", "nurse"))
	g.POST("/score", h.Score)
	g.POST("/score-batch", h.ScoreBatch)
}

func (h *Handler) Score(c echo.Context) error {
	var v PatientVitals
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ScoredPatient{PatientID: v.PatientID, Severity: h.scorer.Score(v)})
}

func (h *Handler) ScoreBatch(c echo.Context) error {
	var batch []PatientVitals
	if err := c.Bind(&batch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.scorer.ScoreBatch(batch))
}
