package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PeerChecker reports whether two users share an accepted relationship.
// The relationship service satisfies this.
type PeerChecker interface {
	IsLinked(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// Guard decides whether the authenticated viewer may act on one senior's
// data: the senior themselves, an admin, or a viewer holding an accepted
// link to that senior. Role middleware still decides read versus write;
// the guard decides which senior.
type Guard struct {
	peers PeerChecker
}

func NewGuard(peers PeerChecker) *Guard {
	return &Guard{peers: peers}
}

// Viewer returns the authenticated user's ID for the request.
func Viewer(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
	}
	return id, nil
}

// AuthorizeSenior rejects the request unless the viewer may access the
// given senior's data.
func (g *Guard) AuthorizeSenior(c echo.Context, seniorID uuid.UUID) error {
	viewer, err := Viewer(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if viewer == seniorID || RoleFromContext(ctx) == RoleAdmin {
		return nil
	}
	linked, err := g.peers.IsLinked(ctx, viewer, seniorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !linked {
		return echo.NewHTTPError(http.StatusForbidden, "not linked to this senior")
	}
	return nil
}
