package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/kds"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/router"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.SetBcryptCost(4)
	os.Exit(m.Run())
}

type testApp struct {
	r     *gin.Engine
	db    *gorm.DB
	hub   *kds.Hub
	cache services.Cache
}

func newTestApp(t *testing.T, limiter *middlewares.RateLimiter) *testApp {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, database.SeedAdmin(db, "boss", "Secret@1"))

	if limiter == nil {
		limiter = middlewares.NewRateLimiter(1000, 1000)
	}
	cfg := &config.Config{CORSOrigin: "*", PublicBaseURL: "https://mesa.example"}
	hub := kds.NewHub()
	cache := services.NewMemoryCache()
	return &testApp{r: router.SetupRouter(db, cfg, cache, hub, limiter), db: db, hub: hub, cache: cache}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testApp) login(t *testing.T, path string, body gin.H) string {
	t.Helper()
	w := a.do(http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func (a *testApp) adminToken(t *testing.T) string {
	return a.login(t, "/api/auth/login", gin.H{"username": "boss", "password": "Secret@1", "isEmployee": false})
}

// createUser adds an account through the admin API and returns its id.
func (a *testApp) createUser(t *testing.T, admin string, body gin.H) string {
	t.Helper()
	w := a.do(http.MethodPost, "/api/admin/create-user", admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["data"].(map[string]interface{})["id"].(string)
}

func TestPing(t *testing.T) {
	app := newTestApp(t, nil)
	w := app.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, nil)
	for _, path := range []string{"/api/auth/login", "/api/auth/register", "/api/auth/request-registration"} {
		w := app.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
		resp := decode(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "Method Not Allowed", resp["error"])
	}
}

func TestNotFoundAndRecovery(t *testing.T) {
	app := newTestApp(t, nil)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/nothing", "", nil).Code)

	app.r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	w := app.do(http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", decode(t, w)["error"])
}

func TestRoleEnforcement(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)
	app.createUser(t, admin, gin.H{"username": "ana", "password": "Secret@1", "is_employee": true})
	app.createUser(t, admin, gin.H{"username": "Mesa 1", "password": "m1"})

	staff := app.login(t, "/api/auth/login", gin.H{"username": "ana", "password": "Secret@1", "isEmployee": true})
	table := app.login(t, "/api/auth/table-login", gin.H{"username": "Mesa 1"})

	cases := []struct {
		name, method, path, token string
		code                      int
	}{
		{"no token", http.MethodGet, "/api/orders/mine", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/orders/mine", "not-a-jwt", http.StatusUnauthorized},
		{"table on kitchen list", http.MethodGet, "/api/orders", table, http.StatusForbidden},
		{"table on admin", http.MethodGet, "/api/admin/users", table, http.StatusForbidden},
		{"employee on admin", http.MethodGet, "/api/admin/users", staff, http.StatusForbidden},
		{"employee places order", http.MethodPost, "/api/orders", staff, http.StatusForbidden},
		{"table resolves call", http.MethodPost, "/api/waiter-calls/x/resolve", table, http.StatusForbidden},
		{"table lists tables", http.MethodGet, "/api/tables", table, http.StatusForbidden},
		{"employee lists tables", http.MethodGet, "/api/tables", staff, http.StatusOK},
		{"admin lists tables", http.MethodGet, "/api/tables", admin, http.StatusOK},
		{"public menu", http.MethodGet, "/api/menu", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, app.do(tc.method, tc.path, tc.token, nil).Code)
		})
	}
}

func TestLogoutRevokesTokenOnly(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)
	app.createUser(t, admin, gin.H{"username": "Mesa 1", "password": "m1"})
	table := app.login(t, "/api/auth/table-login", gin.H{"username": "Mesa 1", "password": "m1"})

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/auth/logout", table, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/orders/mine", table, nil).Code)

	// the table stays occupied until an employee releases it
	w := app.do(http.MethodGet, "/api/sessions", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestApp(t, middlewares.NewRateLimiter(0.001, 2))
	body := gin.H{"username": "boss", "password": "wrong", "isEmployee": false}

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, app.do(http.MethodPost, "/api/auth/login", "", body).Code)

	// other endpoints are not throttled
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/menu", "", nil).Code)
}

func TestEndToEndOrderFlow(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	w := app.do(http.MethodPost, "/api/admin/menu", admin, gin.H{"name": "Pastel", "price": 12.5, "category": "Salgados"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	menuID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	anaID := app.createUser(t, admin, gin.H{"username": "ana", "password": "Secret@1", "is_employee": true})
	tableID := app.createUser(t, admin, gin.H{"username": "Mesa 5", "password": "m5"})

	// QR login with the slug issued at creation
	w = app.do(http.MethodGet, "/api/admin/users", admin, nil)
	var slug string
	for _, u := range decode(t, w)["data"].([]interface{}) {
		if u.(map[string]interface{})["id"] == tableID {
			slug = u.(map[string]interface{})["slug"].(string)
		}
	}
	require.NotEmpty(t, slug)
	table := app.login(t, "/api/auth/slug-login", gin.H{"slug": slug})
	staff := app.login(t, "/api/auth/login", gin.H{"username": "ana", "password": "Secret@1", "isEmployee": true})

	w = app.do(http.MethodPost, "/api/orders", table, gin.H{
		"items":          []gin.H{{"menu_item_id": menuID, "quantity": 2, "price": 12.5}},
		"total":          25,
		"payment_method": "cartao_credito",
		"observations":   "sem cebola",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	for _, step := range []string{"accept", "ready", "complete"} {
		w = app.do(http.MethodPost, "/api/orders/"+orderID+"/"+step, staff, nil)
		require.Equal(t, http.StatusOK, w.Code, step+": "+w.Body.String())
	}
	assert.Equal(t, "completed", decode(t, w)["data"].(map[string]interface{})["status"])

	require.Equal(t, http.StatusCreated, app.do(http.MethodPost, "/api/waiter-calls", table, nil).Code)
	w = app.do(http.MethodGet, "/api/waiter-calls", staff, nil)
	assert.Len(t, decode(t, w)["data"], 1)

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/tables/"+tableID+"/hide-orders", staff, nil).Code)
	w = app.do(http.MethodGet, "/api/orders/mine", table, nil)
	assert.Empty(t, decode(t, w)["data"])

	w = app.do(http.MethodGet, "/api/admin/performance", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	perf := decode(t, w)["data"].([]interface{})
	require.Len(t, perf, 1)
	assert.Equal(t, anaID, perf[0].(map[string]interface{})["userId"])
	assert.EqualValues(t, 25, perf[0].(map[string]interface{})["totalRevenue"])

	w = app.do(http.MethodGet, "/api/admin/reports/daily", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, report["totalOrders"])

	require.Equal(t, http.StatusOK, app.do(http.MethodDelete, "/api/tables/"+tableID+"/session", staff, nil).Code)
	w = app.do(http.MethodGet, "/api/tables", staff, nil)
	tables := decode(t, w)["data"].([]interface{})
	require.Len(t, tables, 1)
	assert.Equal(t, false, tables[0].(map[string]interface{})["occupied"])
}

func TestRegistrationApprovalFlow(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	w := app.do(http.MethodPost, "/api/auth/request-registration", "", gin.H{
		"username": "joao", "phone": "11987654321", "password": "Strong@123", "userType": "employee",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	login := gin.H{"username": "joao", "password": "Strong@123", "isEmployee": true}
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/auth/login", "", login).Code)

	w = app.do(http.MethodGet, "/api/admin/registrations", admin, nil)
	pending := decode(t, w)["data"].([]interface{})
	require.Len(t, pending, 1)
	id := pending[0].(map[string]interface{})["id"].(string)

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/admin/registrations/"+id+"/approve", admin, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/auth/login", "", login).Code)
}

func TestWebSocketFeed(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)
	app.createUser(t, admin, gin.H{"username": "ana", "password": "Secret@1", "is_employee": true})
	app.createUser(t, admin, gin.H{"username": "Mesa 8", "password": "m8"})
	w := app.do(http.MethodPost, "/api/admin/menu", admin, gin.H{"name": "Pastel", "price": 10, "category": "Salgados"})
	menuID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	staff := app.login(t, "/api/auth/login", gin.H{"username": "ana", "password": "Secret@1", "isEmployee": true})
	table := app.login(t, "/api/auth/table-login", gin.H{"username": "Mesa 8"})

	monitor := services.NewChangeMonitor(app.db, app.hub,
		services.NewOrderService(app.db),
		services.NewSessionService(app.db, app.cache),
		services.NewWaiterCallService(app.db),
		services.NewMenuService(app.db, app.cache),
	)
	monitor.CheckChanges(ctx())

	srv := httptest.NewServer(app.r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + staff

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return app.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	w = app.do(http.MethodPost, "/api/orders", table, gin.H{
		"items": []gin.H{{"menu_item_id": menuID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"orders"}, monitor.CheckChanges(ctx()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string            `json:"event"`
		Data  []json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, kds.EventOrders, msg.Event)
	assert.Len(t, msg.Data, 1)
}

func ctx() context.Context {
	return context.Background()
}
