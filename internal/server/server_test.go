package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopfront/internal/auth"
	"github.com/matthieukhl/shopfront/internal/cart"
	"github.com/matthieukhl/shopfront/internal/catalog"
	"github.com/matthieukhl/shopfront/internal/config"
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/matthieukhl/shopfront/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	term        string
	recommended bool
	created     catalog.ProductInput
	products    []models.Product
}

func (f *fakeCatalog) Search(ctx context.Context, term string, recommended bool) ([]models.Product, error) {
	f.term, f.recommended = term, recommended
	return f.products, nil
}

func (f *fakeCatalog) Create(ctx context.Context, in catalog.ProductInput) (models.Product, error) {
	if in.Name == "" || in.Price == nil {
		return models.Product{}, catalog.ErrMissingFields
	}
	f.created = in
	return models.Product{ID: 1, Name: in.Name, Price: *in.Price, Tags: in.Tags}, nil
}

func (f *fakeCatalog) Update(ctx context.Context, in catalog.ProductInput) (models.Product, error) {
	return models.Product{}, catalog.ErrNotFound
}

func (f *fakeCatalog) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return catalog.ErrMissingID
	}
	return nil
}

type fakeOrders struct {
	userID int64
	lines  []models.CartLine
	err    error
}

func (f *fakeOrders) Create(ctx context.Context, userID int64, lines []models.CartLine) (orders.Placement, error) {
	f.userID, f.lines = userID, lines
	if f.err != nil {
		return orders.Placement{}, f.err
	}
	if len(lines) == 0 {
		return orders.Placement{}, orders.ErrEmptyCart
	}
	prices := map[int64]decimal.Decimal{1: decimal.RequireFromString("10.00")}
	return orders.Placement{OrderID: 77, Priced: orders.PriceLines(lines, prices)}, nil
}

func (f *fakeOrders) List(ctx context.Context) ([]models.Order, error) { return []models.Order{}, nil }

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if !orders.ValidStatus(status) {
		return orders.ErrInvalidStatus
	}
	return nil
}

func (f *fakeOrders) Advance(ctx context.Context, orderID int64) (string, error) {
	return models.OrderStatusPaid, nil
}

func (f *fakeOrders) Delete(ctx context.Context, orderID int64) error { return orders.ErrNotFound }

type fakeAccounts struct {
	tokens map[string]int64
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) (auth.Session, error) {
	if username != "alice" || password != "s3cret" {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	return auth.Session{Token: "tok-alice", UserID: 1, Username: "alice"}, nil
}

func (f *fakeAccounts) Register(ctx context.Context, username, email, password, key string) (int64, error) {
	if key != "open-sesame" {
		return 0, auth.ErrInvalidKey
	}
	return 9, nil
}

func (f *fakeAccounts) Resolve(ctx context.Context, token string) (int64, error) {
	id, found := f.tokens[token]
	if !found {
		return 0, auth.ErrInvalidToken
	}
	return id, nil
}

func (f *fakeAccounts) Logout(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type testEnv struct {
	srv     *Server
	catalog *fakeCatalog
	orders  *fakeOrders
	carts   *cart.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		catalog: &fakeCatalog{},
		orders:  &fakeOrders{},
		carts:   cart.NewService(cart.NewRedisStore(client, time.Hour)),
	}
	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"*"}},
		Session: config.SessionConfig{Secret: "test-secret", CookieName: "shopfront_session", MaxAge: 3600},
	}
	deps := Deps{
		Catalog: env.catalog,
		Carts:   env.carts,
		Orders:  env.orders,
		Auth:    &fakeAccounts{tokens: map[string]int64{"tok-bob": 2}},
		Redis:   func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	env.srv = NewServer(cfg, deps, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return env
}

type reqOpt func(*http.Request)

func withCookies(cookies []*http.Cookie) reqOpt {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPreflight(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodOptions, "/orders", nil,
		withHeader("Origin", "http://shop.local"),
		withHeader("Access-Control-Request-Method", "POST"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "http://shop.local", w.Header().Get("Access-Control-Allow-Origin"))

	w = env.do(t, http.MethodOptions, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestUnknownRouteIsJSON(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	w = env.do(t, http.MethodPatch, "/products", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestCartFollowsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/cart", map[string]any{"product_id": 10, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = env.do(t, http.MethodPost, "/api/cart", map[string]any{"product_id": "10", "quantity": 3}, withCookies(cookies))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/cart", nil, withCookies(cookies))
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{map[string]any{"product_id": float64(10), "quantity": float64(5)}}, body["data"])

	w = env.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, []any{}, decode(t, w)["data"])
}

func TestCartRemove(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/cart", map[string]any{"product_id": 1})
	cookies := w.Result().Cookies()
	env.do(t, http.MethodPost, "/cart", map[string]any{"product_id": 2}, withCookies(cookies))

	w = env.do(t, http.MethodDelete, "/cart", map[string]any{"product_id": 1}, withCookies(cookies))
	assert.Equal(t, []any{map[string]any{"product_id": float64(2), "quantity": float64(1)}}, decode(t, w)["data"])

	w = env.do(t, http.MethodDelete, "/cart", nil, withCookies(cookies))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["data"])
}

func TestCreateOrder_FromSessionCart(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/cart", map[string]any{"product_id": 1, "quantity": 3})
	cookies := w.Result().Cookies()
	env.do(t, http.MethodPost, "/cart", map[string]any{"product_id": 404}, withCookies(cookies))

	w = env.do(t, http.MethodPost, "/orders", map[string]any{"user_id": "5"}, withCookies(cookies))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(77), body["order_id"])
	assert.Equal(t, "30.00", body["total_amount"])
	assert.Equal(t, []any{float64(404)}, body["skipped_product_ids"])
	assert.Equal(t, int64(5), env.orders.userID)

	w = env.do(t, http.MethodGet, "/cart", nil, withCookies(cookies))
	assert.Equal(t, []any{}, decode(t, w)["data"])
}

func TestCreateOrder_BodyCartAndToken(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"user_id": 5,
		"cart":    []map[string]any{{"product_id": 1, "quantity": 1}},
	}
	w := env.do(t, http.MethodPost, "/orders", body, withHeader("Authorization", "Bearer tok-bob"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(2), env.orders.userID)
	assert.Equal(t, []models.CartLine{{ProductID: 1, Quantity: 1}}, env.orders.lines)

	w = env.do(t, http.MethodPost, "/orders", body, withHeader("Authorization", "Bearer stale"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestCreateOrder_EmptyCartIsSoftFailure(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/orders", map[string]any{"user_id": 5, "cart": []any{}})
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "cart is empty", body["message"])
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	env.orders.err = orders.ErrUnauthenticated

	w := env.do(t, http.MethodPost, "/orders", map[string]any{"cart": []map[string]any{{"product_id": 1, "quantity": 1}}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "user is not logged in", decode(t, w)["message"])
}

func TestCreateOrder_InternalErrorIsHidden(t *testing.T) {
	env := newTestEnv(t)
	env.orders.err = errors.New("deadlock found when trying to get lock")

	w := env.do(t, http.MethodPost, "/orders", map[string]any{"user_id": 1, "cart": []map[string]any{{"product_id": 1, "quantity": 1}}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["message"])
}

func TestOrderStatusAndDelete(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/orders", map[string]any{"order_id": 1, "status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid status", decode(t, w)["message"])

	w = env.do(t, http.MethodPut, "/orders", map[string]any{"order_id": 1, "status": "shipped"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/orders", map[string]any{"order_id": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/orders/advance", map[string]any{"order_id": 1})
	assert.Equal(t, "paid", decode(t, w)["data"].(map[string]any)["status"])
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/products?search=mug&recommended=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mug", env.catalog.term)
	assert.True(t, env.catalog.recommended)

	w = env.do(t, http.MethodPost, "/products", map[string]any{"name": "Mug"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/products", map[string]any{"name": "Mug", "price": 12.5, "tags": []string{"kitchen"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "12.5", env.catalog.created.Price.String())
	assert.Equal(t, []string{"kitchen"}, env.catalog.created.Tags)

	w = env.do(t, http.MethodPut, "/products", map[string]any{"id": 3, "name": "Mug", "price": "1.00"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/products", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decode(t, w)["message"])
}

func TestRequiredFieldsReportDomainErrors(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		method, path string
		body         map[string]any
		want         string
	}{
		{http.MethodPost, "/auth", map[string]any{"username": "alice"}, "username and password are required"},
		{http.MethodPost, "/register", map[string]any{"username": "carol", "password": "pw"}, "username, email and password are required"},
		{http.MethodPost, "/products", map[string]any{"name": "Mug"}, "product name and price are required"},
		{http.MethodPut, "/orders", map[string]any{"order_id": 1}, "order id and status are required"},
	}
	for _, tc := range cases {
		w := env.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.path)
		assert.Equal(t, tc.want, decode(t, w)["message"], tc.path)
	}
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth", map[string]any{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "tok-alice", body["token"])
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "alice", body["username"])

	w = env.do(t, http.MethodPost, "/auth", map[string]any{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/auth", nil, withHeader("Authorization", "Bearer tok-bob"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["data"].(map[string]any)["user_id"])

	w = env.do(t, http.MethodGet, "/auth", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodDelete, "/auth", nil, withHeader("Authorization", "Bearer tok-bob"))
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/auth", nil, withHeader("Authorization", "Bearer tok-bob"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register", map[string]any{
		"username": "carol", "email": "carol@example.com", "password": "pw", "registration_key": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/register", map[string]any{
		"username": "carol", "email": "carol@example.com", "password": "pw", "registration_key": "open-sesame",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(9), decode(t, w)["user_id"])
}

func TestImageUploadDisabled(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/products/image", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env.srv.deps.DB = func(ctx context.Context) error { return errors.New("gone") }
	w = env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "database connection failed", decode(t, w)["message"])
}

func TestPanicIsJSON(t *testing.T) {
	env := newTestEnv(t)
	env.srv.router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := env.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestFlexID(t *testing.T) {
	var req createOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"12","cart":[{"product_id":"3","quantity":2}]}`), &req))
	assert.Equal(t, flexID(12), req.UserID)
	assert.Equal(t, []models.CartLine{{ProductID: 3, Quantity: 2}}, req.lines())

	assert.Error(t, json.Unmarshal([]byte(`{"user_id":"abc"}`), &req))
}
