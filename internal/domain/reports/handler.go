package reports

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/immunitrack/immunitrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports", auth.RequireRole(auth.RoleAdmin, auth.RoleReporting))
	g.GET("/compliance", h.Compliance)
	g.GET("/defaulters", h.Defaulters)
	g.GET("/dropout", h.Dropout)
}

func (h *Handler) Compliance(c echo.Context) error {
	report, err := h.svc.ComplianceRate(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) Defaulters(c echo.Context) error {
	entries, err := h.svc.Defaulters(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*DefaulterEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Dropout serves both forms: with ?series= it reports one series, without it
// reports every multi-dose series in the catalog.
func (h *Handler) Dropout(c echo.Context) error {
	if series := c.QueryParam("series"); series != "" {
		report, err := h.svc.DropoutRate(c.Request().Context(), series)
		if err != nil {
			switch {
			case errors.Is(err, ErrSeriesNotFound):
				return echo.NewHTTPError(http.StatusBadRequest, "vaccine series not found")
			case errors.Is(err, ErrInvalidSeries):
				return echo.NewHTTPError(http.StatusBadRequest, "series has fewer than two doses")
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(http.StatusOK, report)
	}

	all, err := h.svc.AllDropoutRates(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if all == nil {
		all = []*DropoutReport{}
	}
	return c.JSON(http.StatusOK, all)
}
