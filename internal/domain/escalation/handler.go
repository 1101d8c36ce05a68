package escalation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/movicare/movicare/internal/platform/auth"
)

type Handler struct {
	controller *Controller
	seq        *Sequencer
	guard      *auth.Guard
}

func NewHandler(controller *Controller, seq *Sequencer, guard *auth.Guard) *Handler {
	return &Handler{controller: controller, seq: seq, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// The button belongs to the senior; only they press it.
	press := api.Group("/panic", auth.RequireRole(auth.RoleSenior))
	press.POST("/press", h.Press)
	press.POST("/release", h.Release)
	press.POST("/cancel", h.Cancel)

	status := api.Group("/panic", auth.RequireRole(auth.RoleSenior, auth.RoleFamily, auth.RoleCaregiver))
	status.GET("/status", h.Status)
}

func (h *Handler) Press(c echo.Context) error {
	seniorID, err := auth.Viewer(c)
	if err != nil {
		return err
	}
	h.controller.PressStart(seniorID)
	return c.JSON(http.StatusAccepted, map[string]string{"state": string(h.controller.State(seniorID))})
}

func (h *Handler) Release(c echo.Context) error {
	seniorID, err := auth.Viewer(c)
	if err != nil {
		return err
	}
	if err := h.controller.PressEnd(c.Request().Context(), seniorID); err != nil {
		if errors.Is(err, ErrNotArming) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Cancel(c echo.Context) error {
	seniorID, err := auth.Viewer(c)
	if err != nil {
		return err
	}
	h.seq.Cancel(c.Request().Context(), seniorID)
	return c.NoContent(http.StatusNoContent)
}

// Status reports the panic and sequence state for one senior. Without a
// senior_id parameter it describes the viewer's own button; linked viewers
// pass the senior they watch.
func (h *Handler) Status(c echo.Context) error {
	seniorID, err := auth.Viewer(c)
	if err != nil {
		return err
	}
	if raw := c.QueryParam("senior_id"); raw != "" {
		seniorID, err = uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid senior_id")
		}
	}
	if err := h.guard.AuthorizeSenior(c, seniorID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"panic":    h.controller.State(seniorID),
		"sequence": h.seq.StatusFor(seniorID),
	})
}
