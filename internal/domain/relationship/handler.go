package relationship

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/movicare/movicare/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	group := api.Group("", auth.RequireRole(auth.RoleSenior, auth.RoleFamily, auth.RoleCaregiver))
	group.POST("/relationships/invite", h.Invite)
	group.POST("/relationships/accept", h.Accept)
	group.POST("/relationships/decline", h.Decline)
	group.DELETE("/relationships/:peer_id", h.Unlink)
	group.GET("/relationships/peers", h.Peers)
	group.GET("/relationships/pending", h.Pending)
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
	}
	return id, nil
}

type inviteRequest struct {
	TargetID uuid.UUID `json:"target_id"`
}

func (h *Handler) Invite(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	outcome, err := h.svc.Invite(c.Request().Context(), userID, req.TargetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"outcome": string(outcome)})
}

type decisionRequest struct {
	RequesterID uuid.UUID `json:"requester_id"`
}

func (h *Handler) Accept(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Accept(c.Request().Context(), req.RequesterID, userID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Decline(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Decline(c.Request().Context(), req.RequesterID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Unlink(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	peerID, err := uuid.Parse(c.Param("peer_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid peer_id")
	}
	if err := h.svc.Unlink(c.Request().Context(), userID, peerID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Peers(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	peers, err := h.svc.AcceptedPeersOf(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if peers == nil {
		peers = []uuid.UUID{}
	}
	return c.JSON(http.StatusOK, peers)
}

func (h *Handler) Pending(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.svc.PendingInboundOf(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Relationship{}
	}
	return c.JSON(http.StatusOK, items)
}
