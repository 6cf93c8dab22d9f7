package vaccination

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/immunitrack/immunitrack/internal/platform/auth"
	"github.com/immunitrack/immunitrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealthWorker, auth.RoleReporting))
	read.GET("/vaccinations/due", h.ListDue)
	read.GET("/vaccinations/:id", h.Get)
	read.GET("/children/:id/vaccinations", h.ListByChild)

	record := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealthWorker))
	record.POST("/vaccinations/:id/given", h.RecordGiven)
	record.POST("/vaccinations/:id/missed", h.RecordMissed)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListByChild(c echo.Context) error {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid child id")
	}
	items, err := h.svc.ListByChild(c.Request().Context(), childID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Vaccination{}
	}
	return c.JSON(http.StatusOK, items)
}

// givenRequest is the JSON body for POST /vaccinations/:id/given.
type givenRequest struct {
	ActualDate  string   `json:"actual_date"`
	BatchNumber *string  `json:"batch_number"`
	GeoLat      *float64 `json:"geo_lat"`
	GeoLong     *float64 `json:"geo_long"`
}

func (h *Handler) RecordGiven(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req givenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actual, err := time.Parse("2006-01-02", req.ActualDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "actual_date must be YYYY-MM-DD")
	}

	upd := GivenUpdate{
		ActualDate:  actual,
		BatchNumber: req.BatchNumber,
		GeoLat:      req.GeoLat,
		GeoLong:     req.GeoLong,
	}
	// The recording worker comes from the token, not the body.
	if sub := auth.UserIDFromContext(c.Request().Context()); sub != "" {
		if workerID, err := uuid.Parse(sub); err == nil {
			upd.HealthWorkerID = &workerID
		}
	}

	v, err := h.svc.RecordGiven(c.Request().Context(), id, upd)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) RecordMissed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.RecordMissed(c.Request().Context(), id)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListDue(c echo.Context) error {
	before := time.Now().UTC()
	if s := c.QueryParam("before"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "before must be YYYY-MM-DD")
		}
		before = parsed
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDue(c.Request().Context(), before, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
