package medication

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
	readGroup.GET("/medications", h.List)
	readGroup.GET("/medications/pending", h.Pending)
	readGroup.GET("/medications/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleSenior, auth.RoleFamily))
	writeGroup.POST("/medications", h.Create)
	writeGroup.PUT("/medications/:id", h.Update)
	writeGroup.DELETE("/medications/:id", h.Delete)
	writeGroup.POST("/medications/:id/take", h.Take)
	writeGroup.POST("/medications/:id/snooze", h.Snooze)
}

// authorized loads a medication and checks the viewer may access its owner.
func (h *Handler) authorized(c echo.Context) (*Medication, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	if err := h.guard.AuthorizeSenior(c, m.SeniorID); err != nil {
		return nil, err
	}
	return m, nil
}

func (h *Handler) Create(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.guard.AuthorizeSenior(c, m.SeniorID); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	m, err := h.authorized(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
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

func (h *Handler) Pending(c echo.Context) error {
	seniorID, err := uuid.Parse(c.QueryParam("senior_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid senior_id")
	}
	if err := h.guard.AuthorizeSenior(c, seniorID); err != nil {
		return err
	}
	items, err := h.svc.PendingFor(c.Request().Context(), seniorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	existing, err := h.authorized(c)
	if err != nil {
		return err
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = existing.ID
	if err := h.svc.Update(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	m, err := h.authorized(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), m.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Take(c echo.Context) error {
	existing, err := h.authorized(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Take(c.Request().Context(), existing.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Snooze(c echo.Context) error {
	existing, err := h.authorized(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Snooze(c.Request().Context(), existing.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}
