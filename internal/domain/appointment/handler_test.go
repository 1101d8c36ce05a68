package appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/movicare/movicare/internal/platform/auth"
)

type fakePeers struct {
	linked map[uuid.UUID]map[uuid.UUID]bool
}

func (f *fakePeers) IsLinked(_ context.Context, a, b uuid.UUID) (bool, error) {
	return f.linked[a][b], nil
}

func (f *fakePeers) link(a, b uuid.UUID) {
	if f.linked == nil {
		f.linked = make(map[uuid.UUID]map[uuid.UUID]bool)
	}
	for _, pair := range [][2]uuid.UUID{{a, b}, {b, a}} {
		if f.linked[pair[0]] == nil {
			f.linked[pair[0]] = make(map[uuid.UUID]bool)
		}
		f.linked[pair[0]][pair[1]] = true
	}
}

func newTestHandler() (*Handler, *fakePeers, *echo.Echo) {
	svc, _ := newTestService()
	peers := &fakePeers{}
	return NewHandler(svc, auth.NewGuard(peers)), peers, echo.New()
}

func asUser(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, viewer uuid.UUID, role auth.Role) echo.Context {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, viewer.String())
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestHandler_Create(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	body := `{"senior_id":"` + seniorID.String() + `","type":"gp","date":"2026-03-12","time":"09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, seniorID, auth.RoleSenior)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_Timeline(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	createAppt(t, h.svc, seniorID, "gp", "2026-03-12", "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?senior_id="+seniorID.String(), nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, seniorID, auth.RoleSenior)

	if err := h.Timeline(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Timeline_UnlinkedViewerForbidden(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	createAppt(t, h.svc, seniorID, "gp", "2026-03-12", "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?senior_id="+seniorID.String(), nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), auth.RoleCaregiver)

	err := h.Timeline(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unlinked caregiver, got %v", err)
	}
}

func TestHandler_Delete_UnlinkedViewerForbidden(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	a := createAppt(t, h.svc, seniorID, "gp", "2026-03-12", "09:00")

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), auth.RoleFamily)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	err := h.Delete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unlinked family member, got %v", err)
	}
	if _, err := h.svc.Get(context.Background(), a.ID); err != nil {
		t.Error("expected appointment untouched after rejected delete")
	}
}

func TestHandler_Get_LinkedViewerAllowed(t *testing.T) {
	h, peers, e := newTestHandler()
	seniorID := uuid.New()
	viewer := uuid.New()
	peers.link(viewer, seniorID)
	a := createAppt(t, h.svc, seniorID, "gp", "2026-03-12", "09:00")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, viewer, auth.RoleCaregiver)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
