package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit_tracker/internal/accounts"
	"visit_tracker/internal/config"
	"visit_tracker/internal/controllers"
	"visit_tracker/internal/directory"
	"visit_tracker/internal/feed"
	"visit_tracker/internal/middleware"
	"visit_tracker/internal/models"
	"visit_tracker/internal/visits"
)

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(config.Settings{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	_, err = accounts.Create(context.Background(), db, accounts.NewAdmin{Username: "desk1", Password: "desk-pass", Role: models.RoleAdmin})
	require.NoError(t, err)

	dir := directory.New(db)
	tokens := middleware.NewTokens("test-secret", time.Hour)
	auth := &controllers.AuthController{DB: db, Tokens: tokens}
	require.NoError(t, auth.EnsureSuperAdmin(context.Background(), "root", "root-pass"))

	router := SetupRouter(Dependencies{
		Tokens:  tokens,
		Auth:    auth,
		Visits:  &controllers.VisitController{Engine: visits.NewEngine(dir, visits.VehicleOrDriverID, visits.DefaultThreshold)},
		Drivers: &controllers.DriverController{Directory: dir},
		Feed:    &controllers.VisitFeedController{Hub: feed.NewHub()},
	})
	return &testAPI{router: router}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	w, out := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return out["token"].(string)
}

func visitBody(vehicle, driverID string) map[string]any {
	return map[string]any{
		"name":           "Ravi Kumar",
		"phone_number":   "9876543210",
		"dl_number":      "MH12 2001 1234567",
		"vehicle_number": vehicle,
		"driver_id":      driverID,
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w, out := api.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "desk1", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "desk1", "password": "desk-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["token"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"=")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	w, out = api.do(t, http.MethodGet, "/api/auth/me", out["token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", out["admin"].(map[string]any)["role"])
}

func TestVisits_RequireLogin(t *testing.T) {
	api := newTestAPI(t)

	w, out := api.do(t, http.MethodPost, "/api/visits", "", visitBody("MH12AB1234", "DRIVER-ABC123XYZ"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, out["error"])
}

func TestVisits_PaymentCycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "desk1", "desk-pass")

	for i, want := range []float64{1, 2, 3} {
		w, out := api.do(t, http.MethodPost, "/api/visits", token, visitBody("MH12AB1234", "DRIVER-ABC123XYZ"))
		require.Equal(t, http.StatusOK, w.Code, "visit %d: %s", i+1, w.Body.String())
		assert.Equal(t, want, out["visit_count"])
		assert.NotContains(t, out, "message")
	}

	w, out := api.do(t, http.MethodPost, "/api/visits", token, visitBody("MH12AB1234", "DRIVER-ABC123XYZ"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"message": "Pay the driver", "visit_count": float64(0)}, out)

	w, out = api.do(t, http.MethodPost, "/api/visits", token, visitBody("MH12AB1234", "DRIVER-ABC123XYZ"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["visit_count"])
}

func TestVisits_ValidationRejectsBadFormats(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "desk1", "desk-pass")

	tests := []struct {
		name  string
		field string
		value any
		msg   string
	}{
		{"phone", "phone_number", "12345", "Invalid phone number"},
		{"licence", "dl_number", "XX", "Invalid driving license number"},
		{"vehicle", "vehicle_number", "HELLO", "Invalid vehicle number"},
		{"location", "location", map[string]any{"type": "LineString", "coordinates": [][]float64{{0, 0}, {1, 1}}}, "Invalid location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := visitBody("MH12AB1234", "")
			body[tt.field] = tt.value

			w, out := api.do(t, http.MethodPost, "/api/visits", token, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, out["error"], tt.msg)
		})
	}

	w, out := api.do(t, http.MethodGet, "/api/drivers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["drivers"])
}

func TestVisits_VehicleNumberWithSpacesIsAccepted(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "desk1", "desk-pass")

	w, out := api.do(t, http.MethodPost, "/api/visits", token, visitBody("MH 12 AB 1234", ""))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), out["visit_count"])
}

func TestSearchAndList(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "desk1", "desk-pass")

	_, _ = api.do(t, http.MethodPost, "/api/visits", token, visitBody("MH12AB1234", "DRIVER-ABC123XYZ"))
	_, _ = api.do(t, http.MethodPost, "/api/visits", token, visitBody("KA01C9999", ""))

	w, out := api.do(t, http.MethodGet, "/api/drivers/search?query=DRIVER-ABC123XYZ", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MH12AB1234", out["driver"].(map[string]any)["vehicle_number"])

	w, out = api.do(t, http.MethodGet, "/api/drivers/search?query=KA01C9999", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `^DRIVER-[0-9A-Z]{9}$`, out["driver"].(map[string]any)["driver_id"])

	w, out = api.do(t, http.MethodGet, "/api/drivers/search?query=DRIVER-NOPE", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Driver not found.", out["error"])

	w, _ = api.do(t, http.MethodGet, "/api/drivers/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = api.do(t, http.MethodGet, "/api/drivers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	drivers := out["drivers"].([]any)
	require.Len(t, drivers, 2)
	assert.Equal(t, "MH12AB1234", drivers[0].(map[string]any)["vehicle_number"])
	assert.Equal(t, "KA01C9999", drivers[1].(map[string]any)["vehicle_number"])
}

func TestVisitHistory_SuperAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	desk := api.login(t, "desk1", "desk-pass")
	root := api.login(t, "root", "root-pass")

	body := visitBody("MH12AB1234", "DRIVER-ABC123XYZ")
	body["location"] = map[string]any{"type": "Point", "coordinates": []float64{73.8567, 18.5204}}
	w, _ := api.do(t, http.MethodPost, "/api/visits", desk, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, _ = api.do(t, http.MethodPost, "/api/visits", root, visitBody("MH12AB1234", "DRIVER-ABC123XYZ"))

	w, _ = api.do(t, http.MethodGet, "/api/drivers/1/visits", desk, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out := api.do(t, http.MethodGet, "/api/drivers/1/visits", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := out["events"].([]any)
	require.Len(t, events, 2)

	first := events[0].(map[string]any)
	assert.Equal(t, "created", first["kind"])
	assert.Equal(t, "desk1", first["recorded_by"])
	loc := first["location"].(map[string]any)
	assert.Equal(t, "Point", loc["type"])
	assert.Equal(t, []any{73.8567, 18.5204}, loc["coordinates"])

	second := events[1].(map[string]any)
	assert.Equal(t, "incremented", second["kind"])
	assert.Equal(t, "root", second["recorded_by"])
	assert.NotContains(t, second, "location")

	w, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/drivers/%s/visits", "abc"), root, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
