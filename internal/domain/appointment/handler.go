package appointment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/movicare/movicare/internal/platform/auth"
	"github.com/movicare/movicare/pkg/pagination"
)

type Handler struct {
	svc   *Service
	guard *auth.Guard
}

func NewHandler(svc *Service, guard *auth.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleSenior, auth.RoleFamily, auth.RoleCaregiver))
	readGroup.GET("/appointments", h.List)
	readGroup.GET("/appointments/timeline", h.Timeline)
	readGroup.GET("/appointments/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleSenior, auth.RoleFamily))
	writeGroup.POST("/appointments", h.Create)
	writeGroup.PUT("/appointments/:id", h.Update)
	writeGroup.DELETE("/appointments/:id", h.Delete)
}

// authorized loads an appointment and checks the viewer may access its owner.
func (h *Handler) authorized(c echo.Context) (*Appointment, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.guard.AuthorizeSenior(c, a.SeniorID); err != nil {
		return nil, err
	}
	return a, nil
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.guard.AuthorizeSenior(c, a.SeniorID); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	a, err := h.authorized(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	seniorID, err := uuid.Parse(c.QueryParam("senior_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid senior_id")
	}
	if err := h.guard.AuthorizeSenior(c, seniorID); err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBySenior(c.Request().Context(), seniorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Timeline(c echo.Context) error {
	seniorID, err := uuid.Parse(c.QueryParam("senior_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid senior_id")
	}
	if err := h.guard.AuthorizeSenior(c, seniorID); err != nil {
		return err
	}
	tl, err := h.svc.TimelineFor(c.Request().Context(), seniorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tl)
}

func (h *Handler) Update(c echo.Context) error {
	existing, err := h.authorized(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = existing.ID
	if err := h.svc.Update(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	a, err := h.authorized(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), a.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
