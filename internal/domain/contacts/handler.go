package contacts

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
	readGroup.GET("/emergency-contacts", h.List)
	readGroup.GET("/emergency-contacts/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleSenior, auth.RoleFamily))
	writeGroup.POST("/emergency-contacts", h.Create)
	writeGroup.PUT("/emergency-contacts/:id", h.Update)
	writeGroup.DELETE("/emergency-contacts/:id", h.Delete)
	writeGroup.POST("/emergency-contacts/reorder", h.Reorder)
}

// authorized loads a contact and checks the viewer may access its owner.
func (h *Handler) authorized(c echo.Context) (*EmergencyContact, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	contact, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "contact not found")
	}
	if err := h.guard.AuthorizeSenior(c, contact.SeniorID); err != nil {
		return nil, err
	}
	return contact, nil
}

func (h *Handler) Create(c echo.Context) error {
	var contact EmergencyContact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.guard.AuthorizeSenior(c, contact.SeniorID); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *Handler) Get(c echo.Context) error {
	contact, err := h.authorized(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
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

func (h *Handler) Update(c echo.Context) error {
	existing, err := h.authorized(c)
	if err != nil {
		return err
	}
	var contact EmergencyContact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	contact.ID = existing.ID
	if err := h.svc.Update(c.Request().Context(), &contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *Handler) Delete(c echo.Context) error {
	contact, err := h.authorized(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), contact.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type reorderRequest struct {
	SeniorID uuid.UUID   `json:"senior_id"`
	IDs      []uuid.UUID `json:"ids"`
}

func (h *Handler) Reorder(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.guard.AuthorizeSenior(c, req.SeniorID); err != nil {
		return err
	}
	if err := h.svc.Reorder(c.Request().Context(), req.SeniorID, req.IDs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
