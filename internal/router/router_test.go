package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/config"
	"github.com/iliyamo/railway-ticketing/internal/handler"
	"github.com/iliyamo/railway-ticketing/internal/middleware"
	"github.com/iliyamo/railway-ticketing/internal/repository/memstore"
	"github.com/iliyamo/railway-ticketing/internal/service"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

const secret = "test-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir, err := station.Parse([]byte("stations:\n  - {id: 0, name: Beijing}\n  - {id: 1, name: Tianjin}\n  - {id: 2, name: Jinan}\n"), 100)
	if err != nil {
		t.Fatalf("station.Parse: %v", err)
	}
	b := memstore.New()
	engine := booking.NewEngine(booking.Config{MaxStations: 100, MaxPassingStations: 30, AdminPrivilege: 10, BusyThreshold: 1}, b, nil)
	users := service.NewUserService(b.Users, bcrypt.MinCost, 10)
	if err := users.EnsureAdmin(context.Background(), "root"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1}
	off := middleware.NewRouteCache(config.CacheConfig{}, nil)

	e := echo.New()
	RegisterRoutes(e, &handler.HealthHandler{Engine: engine})
	RegisterAuth(e, handler.NewAuthHandler(cfg, users, b.Tokens), secret)
	tickets := &handler.TicketHandler{Engine: engine, Dir: dir}
	RegisterPublic(e, tickets, &handler.RouteHandler{Engine: engine, Dir: dir}, &handler.StationHandler{Dir: dir}, off)
	RegisterCustomer(e, tickets, &handler.UserHandler{Users: users}, secret, off)
	RegisterAdmin(e, &handler.TrainHandler{Engine: engine, Dir: dir}, secret, 10)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func tokens(t *testing.T, resp map[string]any) (access, refresh string) {
	t.Helper()
	a, _ := resp["access"].(map[string]any)
	r, _ := resp["refresh"].(map[string]any)
	access, _ = a["token"].(string)
	refresh, _ = r["token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("no tokens in %v", resp)
	}
	return access, refresh
}

func TestTicketingFlow(t *testing.T) {
	e := newServer(t)

	code, resp := call(t, e, http.MethodPost, "/v1/auth/login", "", map[string]any{"id": 0, "password": "root"})
	if code != http.StatusOK {
		t.Fatalf("admin login: %d %v", code, resp)
	}
	adminTok, _ := tokens(t, resp)

	code, resp = call(t, e, http.MethodPost, "/v1/auth/register", "", map[string]any{"id": 7, "username": "alice", "password": "pw"})
	if code != http.StatusCreated {
		t.Fatalf("register: %d %v", code, resp)
	}
	userTok, _ := tokens(t, resp)

	train := map[string]any{
		"train_id": "G1", "seat_capacity": 2, "start_time": "08:00",
		"stations": []any{"Beijing", "Tianjin", 2}, "durations": []int{30, 40}, "prices": []int{10, 15},
	}
	if code, _ := call(t, e, http.MethodPost, "/v1/admin/trains", userTok, train); code != http.StatusForbidden {
		t.Fatalf("user adds train: %d", code)
	}
	if code, resp := call(t, e, http.MethodPost, "/v1/admin/trains", adminTok, train); code != http.StatusCreated {
		t.Fatalf("add train: %d %v", code, resp)
	}
	if code, _ := call(t, e, http.MethodPost, "/v1/admin/trains", adminTok, train); code != http.StatusConflict {
		t.Fatalf("duplicate train: %d", code)
	}
	code, resp = call(t, e, http.MethodPost, "/v1/admin/tickets/release", adminTok, map[string]any{"train_id": "G1", "date": "06-01"})
	if items, _ := resp["items"].([]any); code != http.StatusCreated || len(items) != 2 {
		t.Fatalf("release: %d %v", code, resp)
	}

	code, resp = call(t, e, http.MethodGet, "/v1/tickets/remaining?train_id=G1&departure=08:00_06-01&station=Beijing", "", nil)
	if code != http.StatusOK || resp["remaining_seats"] != float64(2) {
		t.Fatalf("remaining: %d %v", code, resp)
	}

	order := map[string]any{"train_id": "G1", "departure": "08:00_06-01", "station": "Beijing", "quantity": 3}
	code, resp = call(t, e, http.MethodPost, "/v1/tickets/buy", userTok, order)
	if code != http.StatusConflict || resp["outcome"] != "insufficient_inventory" {
		t.Fatalf("oversized buy: %d %v", code, resp)
	}
	order["quantity"] = 2
	code, resp = call(t, e, http.MethodPost, "/v1/tickets/buy", userTok, order)
	if code != http.StatusOK || resp["outcome"] != "fulfilled" {
		t.Fatalf("buy: %d %v", code, resp)
	}
	if trip, _ := resp["trip"].(map[string]any); trip["arrival_time"] != "08:30_06-01" {
		t.Fatalf("trip: %v", resp["trip"])
	}

	code, resp = call(t, e, http.MethodGet, "/v1/my-trips", userTok, nil)
	if items, _ := resp["items"].([]any); code != http.StatusOK || len(items) != 1 {
		t.Fatalf("my trips: %d %v", code, resp)
	}

	order["quantity"] = 1
	if code, resp := call(t, e, http.MethodPost, "/v1/tickets/refund", userTok, order); code != http.StatusOK {
		t.Fatalf("refund: %d %v", code, resp)
	}
	order["quantity"] = 5
	if code, resp := call(t, e, http.MethodPost, "/v1/tickets/refund", userTok, order); code != http.StatusNotFound || resp["outcome"] != "no_matching_trip" {
		t.Fatalf("oversized refund: %d %v", code, resp)
	}
	if code, _ := call(t, e, http.MethodPost, "/v1/tickets/buy", "", order); code != http.StatusUnauthorized {
		t.Fatalf("anonymous buy: %d", code)
	}

	code, resp = call(t, e, http.MethodPost, "/v1/admin/tickets/expire", adminTok, map[string]any{"train_id": "G1", "date": "06-01"})
	if code != http.StatusOK || resp["deleted"] != float64(2) {
		t.Fatalf("expire: %d %v", code, resp)
	}
}

func TestRouteQueries(t *testing.T) {
	e := newServer(t)
	_, resp := call(t, e, http.MethodPost, "/v1/auth/login", "", map[string]any{"id": 0, "password": "root"})
	adminTok, _ := tokens(t, resp)
	train := map[string]any{
		"train_id": "G1", "seat_capacity": 1,
		"stations": []any{0, 1, 2}, "durations": []int{30, 40}, "prices": []int{10, 15},
	}
	if code, resp := call(t, e, http.MethodPost, "/v1/admin/trains", adminTok, train); code != http.StatusCreated {
		t.Fatalf("add train: %d %v", code, resp)
	}

	tests := []struct {
		name string
		path string
		want int
		key  string
		val  any
	}{
		{"best by duration", "/v1/routes/best?from=Beijing&to=Jinan&by=duration", http.StatusOK, "cost", float64(70)},
		{"best by price", "/v1/routes/best?from=0&to=2", http.StatusOK, "cost", float64(25)},
		{"bad criterion", "/v1/routes/best?from=0&to=2&by=speed", http.StatusBadRequest, "", nil},
		{"connected", "/v1/routes/accessibility?from=0&to=2", http.StatusOK, "connected", true},
		{"isolated", "/v1/routes/accessibility?from=0&to=50", http.StatusOK, "connected", false},
		{"out of range", "/v1/routes/accessibility?from=0&to=500", http.StatusBadRequest, "", nil},
		{"unknown name", "/v1/routes?from=Atlantis&to=0", http.StatusBadRequest, "", nil},
		{"disconnected", "/v1/routes?from=0&to=50", http.StatusNotFound, "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := call(t, e, http.MethodGet, tc.path, "", nil)
			if code != tc.want {
				t.Fatalf("status = %d, want %d (%v)", code, tc.want, resp)
			}
			if tc.key != "" && resp[tc.key] != tc.val {
				t.Fatalf("%s = %v, want %v", tc.key, resp[tc.key], tc.val)
			}
		})
	}

	code, resp := call(t, e, http.MethodGet, "/v1/routes?from=Beijing&to=Jinan", "", nil)
	if items, _ := resp["items"].([]any); code != http.StatusOK || len(items) != 1 {
		t.Fatalf("display: %d %v", code, resp)
	}
	code, resp = call(t, e, http.MethodGet, "/v1/stations", "", nil)
	if items, _ := resp["items"].([]any); code != http.StatusOK || len(items) != 3 {
		t.Fatalf("stations: %d %v", code, resp)
	}
}

func TestAuthAndUsers(t *testing.T) {
	e := newServer(t)
	_, resp := call(t, e, http.MethodPost, "/v1/auth/register", "", map[string]any{"id": 7, "username": "alice", "password": "pw"})
	userTok, refresh := tokens(t, resp)

	if code, _ := call(t, e, http.MethodPost, "/v1/auth/login", "", map[string]any{"id": 7, "password": "bad"}); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}
	code, resp := call(t, e, http.MethodGet, "/v1/me", userTok, nil)
	if code != http.StatusOK || resp["user_id"] != float64(7) {
		t.Fatalf("me: %d %v", code, resp)
	}
	if code, _ := call(t, e, http.MethodGet, "/v1/users/7", userTok, nil); code != http.StatusOK {
		t.Fatalf("self lookup: %d", code)
	}
	if code, _ := call(t, e, http.MethodGet, "/v1/users/0", userTok, nil); code != http.StatusForbidden {
		t.Fatalf("admin lookup by user: %d", code)
	}
	if code, _ := call(t, e, http.MethodPut, "/v1/users/7/privilege", userTok, map[string]any{"privilege": 3}); code != http.StatusForbidden {
		t.Fatalf("self promotion: %d", code)
	}

	code, resp = call(t, e, http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh_token": refresh})
	if code != http.StatusOK {
		t.Fatalf("refresh: %d %v", code, resp)
	}
	_, rotated := tokens(t, resp)
	if code, _ := call(t, e, http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh_token": refresh}); code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token: %d", code)
	}
	if code, _ := call(t, e, http.MethodPost, "/v1/auth/logout", "", map[string]any{"refresh_token": rotated}); code != http.StatusNoContent {
		t.Fatalf("logout: %d", code)
	}
	if code, _ := call(t, e, http.MethodGet, "/healthz", "", nil); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
}
