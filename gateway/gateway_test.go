package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/tienda/pkg/analytics"
	"github.com/example/tienda/pkg/auth"
	"github.com/example/tienda/pkg/config"
	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/payment"
	"github.com/example/tienda/pkg/repository/memory"
	"github.com/example/tienda/pkg/shop"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type tokenVerifier map[string]string

func (v tokenVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	uid, ok := v[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{UID: uid}, nil
}

type sentNotifier struct{ to []string }

func (n *sentNotifier) NotifyStatusChange(_ context.Context, to string, _ *models.Order) error {
	n.to = append(n.to, to)
	return nil
}

type fakeSheet struct{ amount float64 }

func (f *fakeSheet) PaymentSheet(_ context.Context, amount float64) (*payment.PaymentSheet, error) {
	f.amount = amount
	return &payment.PaymentSheet{PaymentIntent: "pi_secret", EphemeralKey: "ek", Customer: "cus_1", PublishableKey: "pk"}, nil
}

type testServer struct {
	store    *memory.Store
	handler  http.Handler
	notifier *sentNotifier
	stripe   *fakeSheet
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.EnforceAdmin = true
	for _, opt := range opts {
		opt(cfg)
	}

	logger := zap.NewNop()
	store := memory.NewStore()
	notifier := &sentNotifier{}
	stripe := &fakeSheet{}

	catalog := shop.NewCatalogService(store, nil, logger)
	carts := shop.NewCartService(store, catalog, logger)
	gw := NewGateway(cfg, logger, Deps{
		Carts:    carts,
		Orders:   shop.NewOrderService(store, carts, logger),
		Notify:   shop.NewNotifyService(store, notifier, nil, logger),
		Catalog:  catalog,
		Content:  shop.NewContentService(store, logger),
		Users:    shop.NewUserService(store, carts, logger),
		Stats:    analytics.NewService(nil, store, logger),
		Stripe:   stripe,
		Verifier: tokenVerifier{"admin-token": "boss", "user-token": "u1"},
	})

	ctx := context.Background()
	require.NoError(t, store.InsertUser(ctx, &models.User{UID: "boss", Admin: true, Orders: []int{}}))
	require.NoError(t, store.InsertUser(ctx, &models.User{UID: "u1", Orders: []int{}}))

	return &testServer{store: store, handler: gw.Handler(), notifier: notifier, stripe: stripe}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func (s *testServer) addProduct(t *testing.T, p models.Product) {
	t.Helper()
	require.NoError(t, s.store.InsertProduct(context.Background(), &p))
}

var address = map[string]string{
	"uid":             "u1",
	"codigo_postal":   "64000",
	"estado":          "Nuevo León",
	"ciudad":          "Monterrey",
	"calle":           "Av. Juárez 100",
	"numero_interior": "3B",
	"pais":            "México",
	"colonia":         "Centro",
	"metodo_pago":     "tarjeta",
}

func TestCartAddAndRemove(t *testing.T) {
	s := newTestServer(t)
	s.addProduct(t, models.Product{ID: 1, Name: "Taza", NormalPrice: 100, Stock: 5})

	w := s.do(t, http.MethodGet, "/api/v1/cart/active?uid=u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "u1", "id_producto": 1, "cantidad": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Message string      `json:"message"`
		Cart    models.Cart `json:"cart"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 200.0, resp.Cart.Total)
	assert.Equal(t, []models.CartItem{{ProductID: 1, Quantity: 2}}, resp.Cart.Items)

	w = s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "u1", "id_producto": 1, "cantidad": -2})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Empty(t, resp.Cart.Items)
	assert.Equal(t, 0.0, resp.Cart.Total)
}

func TestCartRejectsBadBodies(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"uid":"u1","id_producto":1,"cantidad":"dos"}`,
		`{"uid":"u1","id_producto":1}`,
		`{"uid":"u1","id_producto":1.5,"cantidad":1}`,
		`not json`,
	} {
		w := s.do(t, http.MethodPut, "/api/v1/cart", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var resp map[string]string
		decode(t, w, &resp)
		assert.NotEmpty(t, resp["message"])
		assert.NotEmpty(t, resp["error"])
	}
}

func TestCartMissingCartAndProduct(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "ghost", "id_producto": 1, "cantidad": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.do(t, http.MethodGet, "/api/v1/cart/active?uid=u1", nil)
	w = s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "u1", "id_producto": 404, "cantidad": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	s := newTestServer(t)
	s.addProduct(t, models.Product{ID: 1, NormalPrice: 100, Stock: 1})
	s.do(t, http.MethodGet, "/api/v1/cart/active?uid=u1", nil)
	s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "u1", "id_producto": 1, "cantidad": 2})

	w := s.do(t, http.MethodPost, "/api/v1/orders", address)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders?uid=u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceOrderAndNotify(t *testing.T) {
	s := newTestServer(t)
	s.addProduct(t, models.Product{ID: 1, NormalPrice: 100, Stock: 5})
	s.do(t, http.MethodGet, "/api/v1/cart/active?uid=u1", nil)
	s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "u1", "id_producto": 1, "cantidad": 2})

	w := s.do(t, http.MethodPost, "/api/v1/orders", address)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decode(t, w, &order)
	assert.Equal(t, 1, order.ID)
	assert.Equal(t, "pendiente", order.Status)
	assert.Equal(t, 200.0, order.Total)

	w = s.do(t, http.MethodGet, "/api/v1/orders?uid=u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/cart/active?uid=u1", nil)
	var cart models.Cart
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)

	notify := map[string]interface{}{"correo": "u1@example.com", "estado": "enviado", "id_pedido": order.ID}
	w = s.do(t, http.MethodPost, "/api/v1/orders/notify", notify)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "enviado")
	assert.Equal(t, []string{"u1@example.com"}, s.notifier.to)

	notify["id_pedido"] = 99
	w = s.do(t, http.MethodPost, "/api/v1/orders/notify", notify)
	assert.Equal(t, http.StatusNotFound, w.Code)

	notify["correo"] = "not-an-email"
	w = s.do(t, http.MethodPost, "/api/v1/orders/notify", notify)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuardedNotify(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Auth.GuardNotify = true })
	notify := map[string]interface{}{"correo": "u1@example.com", "estado": "enviado", "id_pedido": 1}

	w := s.do(t, http.MethodPost, "/api/v1/orders/notify", notify)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/orders/notify", notify, "Authorization", "Bearer user-token")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/orders/notify", notify, "Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusNotFound, w.Code, "admin passes the guard; order 1 does not exist")
	assert.Empty(t, s.notifier.to)
}

func TestPlaceOrderMissingFields(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/orders", map[string]string{"uid": "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodDelete, "/api/v1/cart", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var resp map[string]string
	decode(t, w, &resp)
	assert.Equal(t, "Method not allowed", resp["message"])

	w = s.do(t, http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/admin/check", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/admin/check", nil, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/admin/check", nil, "Authorization", "Bearer user-token")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/admin/check", nil, "Authorization", "Bearer admin-token")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	decode(t, w, &resp)
	assert.Equal(t, "boss", resp["uid"])
	assert.Equal(t, true, resp["admin"])
}

func TestAdminMutationsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	product := map[string]interface{}{"nombre": "Taza", "precio_normal": 120, "cantidad": 4}

	w := s.do(t, http.MethodPost, "/api/v1/products", product)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/products", product, "Authorization", "Bearer user-token")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/products", product, "Authorization", "Bearer admin-token")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p models.Product
	decode(t, w, &p)
	assert.Equal(t, 1, p.ID)

	w = s.do(t, http.MethodPut, "/api/v1/products/1", map[string]interface{}{"precio_rebajado": 99.5}, "Authorization", "Bearer admin-token")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &p)
	assert.Equal(t, 99.5, p.EffectivePrice())

	w = s.do(t, http.MethodGet, "/api/v1/products/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/products/1", nil, "Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := []string{"Authorization", "Bearer admin-token"}

	w := s.do(t, http.MethodGet, "/api/v1/faq", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/faq", map[string]string{"pregunta": "¿Envíos?", "respuesta": "Sí"}, admin...)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/faq/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/posts", map[string]string{"titulo": "Hola", "contenido": "Bienvenidos"}, admin...)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/posts", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/posts/1", nil, admin...)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/posts/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"uid": "new", "email": "new@example.com", "nombres": "Ana"}

	w := s.do(t, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u models.User
	decode(t, w, &u)
	assert.NotEmpty(t, u.ActiveCart)

	w = s.do(t, http.MethodPost, "/api/v1/users", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/users/new", map[string]string{"telefono": "8112345678"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &u)
	assert.Equal(t, "8112345678", u.Phone)

	w = s.do(t, http.MethodGet, "/api/v1/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/payments/sheet", map[string]float64{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/payments/sheet", map[string]float64{"amount": 250.5})
	require.Equal(t, http.StatusOK, w.Code)
	var sheet map[string]string
	decode(t, w, &sheet)
	assert.Equal(t, "pi_secret", sheet["paymentIntent"])
	assert.Equal(t, "pk", sheet["publishableKey"])
	assert.Equal(t, 250.5, s.stripe.amount)

	w = s.do(t, http.MethodPost, "/api/v1/payments/paypal", map[string]float64{"amount": 10})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)
	s.addProduct(t, models.Product{ID: 1, Name: "Taza", NormalPrice: 100, Stock: 5})
	s.do(t, http.MethodGet, "/api/v1/cart/active?uid=u1", nil)
	s.do(t, http.MethodPut, "/api/v1/cart", map[string]interface{}{"uid": "u1", "id_producto": 1, "cantidad": 3})
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/orders", address).Code)

	w := s.do(t, http.MethodGet, "/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/admin/stats?top=5", nil, "Authorization", "Bearer admin-token")
	require.Equal(t, http.StatusOK, w.Code)
	var sum analytics.Summary
	decode(t, w, &sum)
	assert.Equal(t, 1, sum.Orders)
	assert.Equal(t, 300.0, sum.Revenue)
	assert.Equal(t, "orders", sum.Source)
	require.Len(t, sum.TopProducts, 1)
	assert.Equal(t, 3, sum.TopProducts[0].Units)

	w = s.do(t, http.MethodGet, "/api/v1/orders/all", nil, "Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/health", nil, "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.True(t, strings.Contains(w.Body.String(), "ok"))
}
