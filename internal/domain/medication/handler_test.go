package medication

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
	svc, _, _ := newTestService(noon)
	peers := &fakePeers{}
	return NewHandler(svc, auth.NewGuard(peers)), peers, echo.New()
}

// asUser builds an echo context carrying the viewer's identity, the way the
// auth middleware would.
func asUser(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, viewer uuid.UUID, role auth.Role) echo.Context {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, viewer.String())
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestHandler_Create(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	body := `{"senior_id":"` + seniorID.String() + `","name":"Aspirin","dosage":"1 pill","scheduled_time":"09:00"}`
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

func TestHandler_Create_BadTime(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	body := `{"senior_id":"` + seniorID.String() + `","name":"Aspirin","scheduled_time":"9am"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, seniorID, auth.RoleSenior)

	if err := h.Create(c); err == nil {
		t.Error("expected error for malformed scheduled_time")
	}
}

func TestHandler_Take(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	m := createMed(t, h.svc, seniorID, "Aspirin", "09:00")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, seniorID, auth.RoleSenior)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	if err := h.Take(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Take_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), auth.RoleSenior)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.Take(c); err == nil {
		t.Error("expected error for unknown medication")
	}
}

func TestHandler_Pending(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	createMed(t, h.svc, seniorID, "Aspirin", "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?senior_id="+seniorID.String(), nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, seniorID, auth.RoleSenior)

	if err := h.Pending(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_List_UnlinkedViewerForbidden(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	createMed(t, h.svc, seniorID, "Aspirin", "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?senior_id="+seniorID.String(), nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), auth.RoleCaregiver)

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unlinked caregiver, got %v", err)
	}
}

func TestHandler_Take_UnlinkedViewerForbidden(t *testing.T) {
	h, _, e := newTestHandler()
	seniorID := uuid.New()
	m := createMed(t, h.svc, seniorID, "Aspirin", "09:00")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, uuid.New(), auth.RoleFamily)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	err := h.Take(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unlinked family member, got %v", err)
	}
	if stored, _ := h.svc.Get(context.Background(), m.ID); stored.LastTakenAt != 0 {
		t.Error("expected medication untouched after rejected take")
	}
}

func TestHandler_LinkedViewerReads(t *testing.T) {
	h, peers, e := newTestHandler()
	seniorID := uuid.New()
	viewer := uuid.New()
	peers.link(viewer, seniorID)
	createMed(t, h.svc, seniorID, "Aspirin", "09:00")

	req := httptest.NewRequest(http.MethodGet, "/?senior_id="+seniorID.String(), nil)
	rec := httptest.NewRecorder()
	c := asUser(e, req, rec, viewer, auth.RoleCaregiver)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// Routed end to end: the senior_id scoping must hold behind the real route
// registration, not just on direct handler calls.
func TestRoutes_ScopeBySenior(t *testing.T) {
	svc, _, _ := newTestService(noon)
	peers := &fakePeers{}
	h := NewHandler(svc, auth.NewGuard(peers))

	seniorID := uuid.New()
	m := createMed(t, svc, seniorID, "Aspirin", "09:00")

	serve := func(viewer uuid.UUID, role auth.Role, method, target string) int {
		e := echo.New()
		api := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				ctx := context.WithValue(c.Request().Context(), auth.UserIDKey, viewer.String())
				ctx = context.WithValue(ctx, auth.RoleKey, role)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
		})
		h.RegisterRoutes(api)
		req := httptest.NewRequest(method, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(uuid.New(), auth.RoleCaregiver, http.MethodGet, "/medications?senior_id="+seniorID.String()); code != http.StatusForbidden {
		t.Errorf("expected 403 for unlinked caregiver list, got %d", code)
	}
	if code := serve(uuid.New(), auth.RoleFamily, http.MethodPost, "/medications/"+m.ID.String()+"/take"); code != http.StatusForbidden {
		t.Errorf("expected 403 for unlinked family take, got %d", code)
	}
	if code := serve(seniorID, auth.RoleSenior, http.MethodGet, "/medications?senior_id="+seniorID.String()); code != http.StatusOK {
		t.Errorf("expected 200 for senior's own list, got %d", code)
	}

	viewer := uuid.New()
	peers.link(viewer, seniorID)
	if code := serve(viewer, auth.RoleFamily, http.MethodPost, "/medications/"+m.ID.String()+"/take"); code != http.StatusOK {
		t.Errorf("expected 200 for linked family take, got %d", code)
	}
}
