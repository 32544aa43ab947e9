package agenda

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReception))
	read.GET("/agenda/working-hours", h.GetWorkingHours)
	read.GET("/agenda/calendar", h.GetCalendar)
	read.GET("/appointments", h.ListAppointments)
	read.GET("/appointments/:id", h.GetAppointment)

	write := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReception))
	write.POST("/appointments", h.CreateAppointment)
	write.PUT("/appointments/:id", h.UpdateAppointment)
	write.DELETE("/appointments/:id", h.DeleteAppointment)
}

// GetWorkingHours returns the slot labels for one weekday, or the whole
// week when no weekday is given.
func (h *Handler) GetWorkingHours(c echo.Context) error {
	if raw := c.QueryParam("weekday"); raw != "" {
		weekday, err := strconv.Atoi(raw)
		if err != nil || weekday < 0 || weekday > 6 {
			return echo.NewHTTPError(http.StatusBadRequest, "weekday must be 0..6")
		}
		slots := WorkingHours(weekday)
		if slots == nil {
			slots = []string{}
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"weekday": weekday,
			"slots":   slots,
		})
	}
	week := WeekMap()
	out := make([][]string, len(week))
	for i, slots := range week {
		if slots == nil {
			slots = []string{}
		}
		out[i] = slots
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"week": out})
}

// GetCalendar builds the grid for a pivot date and zoom level. The
// pivot defaults to today; doctor_id may repeat to filter several
// doctors at once.
func (h *Handler) GetCalendar(c echo.Context) error {
	pivot := Today()
	if raw := c.QueryParam("pivot"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "pivot must be YYYY-MM-DD")
		}
		pivot = parsed
	}
	zoom := ParseZoom(c.QueryParam("zoom"))

	var doctorIDs []uuid.UUID
	for _, raw := range c.QueryParams()["doctor_id"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorIDs = append(doctorIDs, id)
	}

	days := h.svc.Calendar(zoom, pivot, doctorIDs)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"zoom":  zoom,
		"pivot": pivot.Format("2006-01-02"),
		"days":  days,
	})
}

// ListAppointments serves the flat listing; with patient_id it becomes
// that patient's history, most recent first.
func (h *Handler) ListAppointments(c echo.Context) error {
	if raw := c.QueryParam("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, err := h.svc.History(c.Request().Context(), patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, items)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPaged(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), d)
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, d)
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// mutationError maps domain errors onto HTTP statuses.
func mutationError(err error) error {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
	case errors.Is(err, ErrPlanRequired),
		errors.Is(err, ErrPlanOnFirstVisit),
		errors.Is(err, ErrPlanWrongPatient):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
