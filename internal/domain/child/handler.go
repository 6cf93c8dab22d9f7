package child

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/immunitrack/immunitrack/internal/domain/facility"
	"github.com/immunitrack/immunitrack/internal/domain/vaccination"
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
	read.GET("/children", h.List)
	read.GET("/children/:id", h.Get)
	read.GET("/children/uid/:uid", h.GetByUID)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHealthWorker))
	write.POST("/children", h.Register)
	write.PUT("/children/:id", h.Update)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/children/:id", h.Delete)
}

// registerRequest is the JSON body for POST /children.
type registerRequest struct {
	FullName         string `json:"full_name"`
	Sex              string `json:"sex"`
	DateOfBirth      string `json:"date_of_birth"`
	PlaceOfBirth     string `json:"place_of_birth"`
	CaregiverName    string `json:"caregiver_name"`
	CaregiverContact string `json:"caregiver_contact"`
	CaregiverAddress string `json:"caregiver_address"`
	FacilityID       string `json:"facility_id"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}
	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid facility_id")
	}

	child := &Child{
		FullName:         req.FullName,
		Sex:              req.Sex,
		DateOfBirth:      dob,
		PlaceOfBirth:     req.PlaceOfBirth,
		CaregiverName:    req.CaregiverName,
		CaregiverContact: req.CaregiverContact,
		CaregiverAddress: req.CaregiverAddress,
		FacilityID:       facilityID,
	}

	if err := h.svc.Register(c.Request().Context(), child); err != nil {
		switch {
		case errors.Is(err, facility.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "facility not found")
		case errors.Is(err, vaccination.ErrDuplicateSchedule):
			return echo.NewHTTPError(http.StatusConflict, "schedule already exists for child")
		case errors.Is(err, ErrDuplicateUID):
			return echo.NewHTTPError(http.StatusConflict, "registration number collision, retry")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, child)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	child, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, child)
}

func (h *Handler) GetByUID(c echo.Context) error {
	child, err := h.svc.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, child)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	if fid := c.QueryParam("facility_id"); fid != "" {
		facilityID, err := uuid.Parse(fid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid facility_id")
		}
		items, total, err := h.svc.ListByFacility(c.Request().Context(), facilityID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// updateRequest is the JSON body for PUT /children/:id. Only caregiver
// details are writable.
type updateRequest struct {
	CaregiverName    string `json:"caregiver_name"`
	CaregiverContact string `json:"caregiver_contact"`
	CaregiverAddress string `json:"caregiver_address"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	child := &Child{
		ID:               id,
		CaregiverName:    req.CaregiverName,
		CaregiverContact: req.CaregiverContact,
		CaregiverAddress: req.CaregiverAddress,
	}
	if err := h.svc.Update(c.Request().Context(), child); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, child)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
