package app_test

import (
	"bitwise74/shop-api/app"
	"bitwise74/shop-api/config"
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/testutil"
	"bitwise74/shop-api/pkg/security"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t   *testing.T
	d   *internal.Deps
	r   *gin.Engine
	out *testutil.Outbox
	fx  *testutil.Fixtures
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)

	cfg := &config.Config{
		Host:    config.Host{Port: 8080, CORSOrigins: []string{"http://localhost:5173"}},
		List:    config.List{DefaultPageSize: 10, MaxPageSize: 100},
		Storage: config.Storage{MaxSize: 1 << 20},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tokens, err := security.NewTokens("secret", "HS256", time.Minute, time.Hour)
	require.NoError(t, err)

	lists, err := internal.NewLists(db, cfg.List)
	require.NoError(t, err)

	out := &testutil.Outbox{}
	d := &internal.Deps{
		Config:   cfg,
		DB:       db,
		Argon:    &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		Tokens:   tokens,
		Notifier: out,
		Lists:    lists,
	}

	r, closeRouter := app.NewRouter(d)
	t.Cleanup(closeRouter)

	return &harness{t: t, d: d, r: r, out: out, fx: &testutil.Fixtures{T: t, DB: db}}
}

// token returns an access token for u
func (h *harness) token(u *model.User) string {
	h.t.Helper()

	pair, err := h.d.Tokens.Pair(u.ID)
	require.NoError(h.t, err)
	return pair.AccessToken
}

func (h *harness) do(method, path, token string, body any) (int, map[string]any) {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)

	res := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}

	return w.Code, res
}

func ids(res map[string]any) []float64 {
	out := []float64{}
	for _, v := range res["data"].([]any) {
		out = append(out, v.(map[string]any)["id"].(float64))
	}
	return out
}

func TestHeartbeat(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodHead, "/heartbeat", nil)
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegisterVerifyLogin(t *testing.T) {
	h := newHarness(t)

	body := gin.H{
		"email":      "Alice@Example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Liddell",
		"password":   "wonderland",
	}

	code, res := h.do(http.MethodPost, "/auth/registration", "", body)
	require.Equal(t, http.StatusOK, code, res)
	userID := uint(res["user_id"].(float64))

	// the same email in another case is still taken
	body["email"] = "alice@example.com"
	code, res = h.do(http.MethodPost, "/auth/registration", "", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, res["requestID"])

	mails := h.out.Sent()
	require.Len(t, mails, 1)
	assert.Equal(t, "alice@example.com", mails[0].To)

	var vc model.VerificationCode
	require.NoError(t, h.d.DB.Where("user_id = ?", userID).First(&vc).Error)
	assert.Contains(t, mails[0].Body, fmt.Sprintf("%06d", vc.Code))

	code, res = h.do(http.MethodPost, "/auth/authentication", "", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = h.do(http.MethodPost, "/auth/authentication", "", gin.H{"email": "alice@example.com", "password": "wonderland"})
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "bearer", res["token_type"])
	access := res["access_token"].(string)

	wrong := vc.Code + 1
	if wrong > 999999 {
		wrong = vc.Code - 1
	}

	code, res = h.do(http.MethodPost, "/auth/verification", access, gin.H{"verification_code": wrong})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, res["status"])

	var user model.User
	require.NoError(t, h.d.DB.First(&user, userID).Error)
	assert.False(t, user.IsVerified)

	code, res = h.do(http.MethodPost, "/auth/verification", access, gin.H{"verification_code": vc.Code})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["status"])

	require.NoError(t, h.d.DB.First(&user, userID).Error)
	assert.True(t, user.IsVerified)

	// the code is consumed
	code, _ = h.do(http.MethodPost, "/auth/verification", access, gin.H{"verification_code": vc.Code})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	for _, body := range []gin.H{
		{"email": "not-an-email", "username": "a", "first_name": "a", "last_name": "a", "password": "secret1"},
		{"email": "a@example.com", "username": "a", "first_name": "a", "last_name": "a", "password": "short"},
		{"email": "a@example.com", "first_name": "a", "last_name": "a", "password": "secret1"},
	} {
		code, _ := h.do(http.MethodPost, "/auth/registration", "", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
	}

	var n int64
	h.d.DB.Model(&model.User{}).Count(&n)
	assert.Zero(t, n)
}

func TestTokenEndpoints(t *testing.T) {
	h := newHarness(t)
	u := h.fx.User(model.RoleUser, true)

	pair, err := h.d.Tokens.Pair(u.ID)
	require.NoError(t, err)

	code, _ := h.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, code, "access token used as refresh token")

	code, res := h.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, res["access_token"])
	assert.NotEmpty(t, res["refresh_token"])

	code, res = h.do(http.MethodPost, "/auth/access", "", gin.H{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, res["access_token"])

	// a refresh token can't open protected routes
	code, _ = h.do(http.MethodGet, "/me", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	require.NoError(t, h.d.DB.Delete(&model.User{}, u.ID).Error)

	code, _ = h.do(http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code, "deleted user")
}

func TestAuthorizationGate(t *testing.T) {
	h := newHarness(t)
	user := h.fx.User(model.RoleUser, true)
	admin := h.fx.User(model.RoleAdmin, true)

	code, _ := h.do(http.MethodPost, "/category", "", gin.H{"name": "Coffee"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = h.do(http.MethodPost, "/category", "garbage", gin.H{"name": "Coffee"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res := h.do(http.MethodPost, "/category", h.token(user), gin.H{"name": "Coffee"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin privileges required", res["error"])

	code, res = h.do(http.MethodPost, "/category", h.token(admin), gin.H{"name": "Coffee"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["status"])
	assert.Equal(t, true, res["new_category"].(map[string]any)["is_active"])

	// a deleted admin's token stops working on admin routes
	token := h.token(admin)
	require.NoError(t, h.d.DB.Delete(&model.User{}, admin.ID).Error)
	code, _ = h.do(http.MethodPost, "/category", token, gin.H{"name": "Tea"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCategoryDeleteCascades(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.User(model.RoleAdmin, true)
	user := h.fx.User(model.RoleUser, true)

	cat := h.fx.Category("Coffee")
	p1 := h.fx.Product(cat.ID, "Espresso", 250, true)
	p2 := h.fx.Product(cat.ID, "Latte", 400, true)
	h.fx.CartItem(user.ID, p1.ID, 1)

	code, _ := h.do(http.MethodDelete, fmt.Sprintf("/category/%d", cat.ID), h.token(admin), nil)
	require.Equal(t, http.StatusOK, code)

	for _, p := range []*model.Product{p1, p2} {
		code, _ = h.do(http.MethodGet, fmt.Sprintf("/product/%d", p.ID), "", nil)
		assert.Equal(t, http.StatusNotFound, code)
	}

	var n int64
	h.d.DB.Model(&model.Cart{}).Count(&n)
	assert.Zero(t, n)

	code, _ = h.do(http.MethodGet, fmt.Sprintf("/category/%d", cat.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(http.MethodDelete, fmt.Sprintf("/category/%d", cat.ID), h.token(admin), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCategoryDeleteKeepsOrderedProducts(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.User(model.RoleAdmin, true)
	user := h.fx.User(model.RoleUser, true)

	cat := h.fx.Category("Coffee")
	p := h.fx.Product(cat.ID, "Espresso", 250, true)
	h.fx.CartItem(user.ID, p.ID, 1)

	code, _ := h.do(http.MethodPost, "/order", h.token(user), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodDelete, fmt.Sprintf("/category/%d", cat.ID), h.token(admin), nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = h.do(http.MethodGet, fmt.Sprintf("/product/%d", p.ID), "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUpdates(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.User(model.RoleAdmin, true)
	token := h.token(admin)

	cat := h.fx.Category("Coffee")
	other := h.fx.Category("Tea")
	p := h.fx.Product(cat.ID, "Espresso", 250, true)

	path := fmt.Sprintf("/product/%d", p.ID)

	code, res := h.do(http.MethodPatch, path, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No fields to update", res["error"])

	code, _ = h.do(http.MethodPatch, path, token, gin.H{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodPut, path, token, gin.H{"name": "Ristretto"})
	assert.Equal(t, http.StatusBadRequest, code, "PUT needs every field")

	code, res = h.do(http.MethodPatch, path, token, gin.H{"category_id": 999})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Category with id 999 not found", res["error"])

	var stored model.Product
	require.NoError(t, h.d.DB.First(&stored, p.ID).Error)
	assert.Equal(t, "Espresso", stored.Name)
	assert.Equal(t, cat.ID, stored.CategoryID)

	code, res = h.do(http.MethodPatch, path, token, gin.H{"price": 300, "is_available": false})
	require.Equal(t, http.StatusOK, code)
	data := res["data"].(map[string]any)
	assert.Equal(t, float64(300), data["price"])
	assert.Equal(t, false, data["is_available"])
	assert.Equal(t, "Espresso", data["name"])

	code, res = h.do(http.MethodPut, path, token, gin.H{
		"name":         "Ristretto",
		"price":        280,
		"category_id":  other.ID,
		"description":  "short",
		"is_available": true,
	})
	require.Equal(t, http.StatusOK, code)
	data = res["data"].(map[string]any)
	assert.Equal(t, "Ristretto", data["name"])
	assert.Equal(t, float64(other.ID), data["category_id"])

	code, _ = h.do(http.MethodPatch, fmt.Sprintf("/category/%d", cat.ID), token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = h.do(http.MethodPatch, fmt.Sprintf("/category/%d", cat.ID), token, gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, res["data"].(map[string]any)["is_active"])

	code, _ = h.do(http.MethodPatch, "/category/999", token, gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProductCreate(t *testing.T) {
	h := newHarness(t)
	token := h.token(h.fx.User(model.RoleAdmin, true))
	cat := h.fx.Category("Coffee")

	code, res := h.do(http.MethodPost, "/product", token, gin.H{"name": "Mocha", "price": 450, "category_id": 999})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Category with id 999 not found", res["error"])

	code, _ = h.do(http.MethodPost, "/product", token, gin.H{"name": "Mocha", "category_id": cat.ID})
	assert.Equal(t, http.StatusBadRequest, code, "price is required")

	code, res = h.do(http.MethodPost, "/product", token, gin.H{"name": "Mocha", "price": 450, "category_id": cat.ID})
	require.Equal(t, http.StatusOK, code)
	p := res["new_product"].(map[string]any)
	assert.Equal(t, true, p["is_available"])
	assert.Equal(t, float64(450), p["price"])

	// uploads are refused while storage is disabled
	code, _ = h.do(http.MethodPost, fmt.Sprintf("/product/%v/image", p["id"]), token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestProductList(t *testing.T) {
	h := newHarness(t)
	cat := h.fx.Category("Coffee")
	h.fx.Product(cat.ID, "Espresso", 250, true)
	h.fx.Product(cat.ID, "Cortado", 300, false)
	h.fx.Product(cat.ID, "Flat White", 300, true)

	path := "/products?sort_by=price&order=desc&page=1&page_size=2"

	code, first := h.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []float64{2, 3}, ids(first))

	for range 3 {
		_, again := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, first, again)
	}

	code, res := h.do(http.MethodGet, "/products?filter="+url.QueryEscape(`{"is_available":false}`), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []float64{2}, ids(res))

	code, res = h.do(http.MethodGet, "/products?search=WHITE", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []float64{3}, ids(res))

	code, _ = h.do(http.MethodGet, "/products?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodGet, "/products?filter="+url.QueryEscape("[1]"), "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = h.do(http.MethodGet, "/products?page=5", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, ids(res))
}

func TestCartAndCheckout(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.User(model.RoleAdmin, true)
	user := h.fx.User(model.RoleUser, true)
	stranger := h.fx.User(model.RoleUser, true)
	token := h.token(user)

	cat := h.fx.Category("Coffee")
	espresso := h.fx.Product(cat.ID, "Espresso", 250, true)
	latte := h.fx.Product(cat.ID, "Latte", 400, true)
	gone := h.fx.Product(cat.ID, "Seasonal", 500, false)

	code, _ := h.do(http.MethodPost, "/cart", token, gin.H{"product_id": gone.ID, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(http.MethodPost, "/cart", token, gin.H{"product_id": espresso.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodPost, "/cart", token, gin.H{"product_id": espresso.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, code)

	code, res := h.do(http.MethodPost, "/cart", token, gin.H{"product_id": espresso.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), res["cart_item"].(map[string]any)["quantity"])

	code, res = h.do(http.MethodPost, "/cart", token, gin.H{"product_id": latte.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, code)
	latteLine := res["cart_item"].(map[string]any)["id"]

	code, res = h.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 2)
	assert.Equal(t, float64(3*250+400), res["total_price"])

	// another user's line looks missing
	code, _ = h.do(http.MethodDelete, fmt.Sprintf("/cart/%v", latteLine), h.token(stranger), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, res = h.do(http.MethodPost, "/order", token, nil)
	require.Equal(t, http.StatusOK, code)
	order := res["new_order"].(map[string]any)
	assert.Equal(t, float64(3*250+400), order["total_price"])
	assert.Equal(t, model.OrderPending, order["status"])
	assert.Len(t, order["items"], 2)

	code, res = h.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, res["data"])

	mails := h.out.Sent()
	require.Len(t, mails, 1)
	assert.Equal(t, admin.Email, mails[0].To)
	assert.Contains(t, mails[0].Body, "Espresso")

	code, res = h.do(http.MethodPost, "/order", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cart is empty or products unavailable", res["error"])

	orderPath := fmt.Sprintf("/order/%v", order["id"])

	code, res = h.do(http.MethodGet, orderPath, token, nil)
	require.Equal(t, http.StatusOK, code)
	items := res["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Espresso", items[0].(map[string]any)["product_name"])

	code, _ = h.do(http.MethodGet, orderPath, h.token(stranger), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(http.MethodGet, orderPath, h.token(admin), nil)
	assert.Equal(t, http.StatusOK, code)

	// prices are fixed at checkout
	require.NoError(t, h.d.DB.Model(espresso).Update("price", 999).Error)
	_, res = h.do(http.MethodGet, orderPath, token, nil)
	assert.Equal(t, float64(3*250+400), res["total_price"])
}

func TestOrderStatus(t *testing.T) {
	h := newHarness(t)
	admin := h.token(h.fx.User(model.RoleAdmin, true))
	user := h.fx.User(model.RoleUser, true)

	cat := h.fx.Category("Coffee")
	p := h.fx.Product(cat.ID, "Espresso", 250, true)
	h.fx.CartItem(user.ID, p.ID, 1)

	code, res := h.do(http.MethodPost, "/order", h.token(user), nil)
	require.Equal(t, http.StatusOK, code)
	path := fmt.Sprintf("/order/%v", res["new_order"].(map[string]any)["id"])

	code, _ = h.do(http.MethodPatch, path, h.token(user), gin.H{"status": model.OrderPaid})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(http.MethodPatch, path, admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodPatch, path, admin, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(http.MethodPatch, path, admin, gin.H{"status": model.OrderShipped})
	assert.Equal(t, http.StatusBadRequest, code, "pending can't skip to shipped")

	code, res = h.do(http.MethodPut, path, admin, gin.H{"status": model.OrderPaid})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.OrderPaid, res["data"].(map[string]any)["status"])

	code, _ = h.do(http.MethodPatch, path, admin, gin.H{"status": model.OrderPaid})
	assert.Equal(t, http.StatusOK, code)

	code, res = h.do(http.MethodGet, "/orders?total_price=250", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["data"], 1)

	code, res = h.do(http.MethodGet, "/orders?total_price=1", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, res["data"])

	code, _ = h.do(http.MethodDelete, path, h.token(user), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, code)

	var n int64
	h.d.DB.Model(&model.OrderItem{}).Count(&n)
	assert.Zero(t, n)

	code, _ = h.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCatalogCache(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Cache.TTL = time.Minute })
	admin := h.fx.User(model.RoleAdmin, true)
	cat := h.fx.Category("Coffee")
	p := h.fx.Product(cat.ID, "Espresso", 250, true)
	path := fmt.Sprintf("/product/%d", p.ID)

	code, res := h.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Espresso", res["name"])

	// writes that skip the API are not seen until the entry expires
	require.NoError(t, h.d.DB.Model(p).Update("name", "Ristretto").Error)
	_, res = h.do(http.MethodGet, path, "", nil)
	assert.Equal(t, "Espresso", res["name"])

	code, _ = h.do(http.MethodPatch, path, h.token(admin), gin.H{"name": "Lungo"})
	require.Equal(t, http.StatusOK, code)

	code, res = h.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Lungo", res["name"])

	code, res = h.do(http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []float64{float64(p.ID)}, ids(res))

	// a failed write keeps the cache
	code, _ = h.do(http.MethodPut, path, h.token(admin), gin.H{"name": "Doppio"})
	require.Equal(t, http.StatusBadRequest, code)
	require.NoError(t, h.d.DB.Model(p).Update("name", "Doppio").Error)
	_, res = h.do(http.MethodGet, path, "", nil)
	assert.Equal(t, "Lungo", res["name"])

	code, _ = h.do(http.MethodDelete, fmt.Sprintf("/category/%d", cat.ID), h.token(admin), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = h.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, res = h.do(http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, res["data"])

	code, _ = h.do(http.MethodGet, fmt.Sprintf("/category/%d", cat.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserEndpoints(t *testing.T) {
	h := newHarness(t)
	admin := h.fx.User(model.RoleAdmin, true)
	alice := h.fx.User(model.RoleUser, true)
	bob := h.fx.User(model.RoleUser, true)

	code, res := h.do(http.MethodGet, "/me", h.token(alice), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, alice.Email, res["user"].(map[string]any)["email"])
	assert.NotContains(t, res["user"], "hashed_password")
	assert.Empty(t, res["cart"])

	alicePath := fmt.Sprintf("/user/%d", alice.ID)

	code, res = h.do(http.MethodPatch, alicePath, h.token(alice), gin.H{"first_name": "Alice"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alice", res["data"].(map[string]any)["first_name"])

	code, _ = h.do(http.MethodPatch, alicePath, h.token(bob), gin.H{"first_name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(http.MethodPatch, alicePath, h.token(alice), gin.H{"role_id": model.RoleAdmin})
	assert.Equal(t, http.StatusBadRequest, code, "role is not editable")

	code, _ = h.do(http.MethodPatch, alicePath, h.token(alice), gin.H{"email": bob.Email})
	assert.Equal(t, http.StatusConflict, code)

	code, res = h.do(http.MethodPatch, alicePath, h.token(admin), gin.H{"phone": "555-0100"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "555-0100", res["data"].(map[string]any)["phone"])
	assert.Equal(t, float64(model.RoleUser), res["data"].(map[string]any)["role_id"])

	code, _ = h.do(http.MethodGet, alicePath, h.token(bob), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, res = h.do(http.MethodGet, "/users?sort_by=id", h.token(admin), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []float64{float64(admin.ID), float64(alice.ID), float64(bob.ID)}, ids(res))

	cat := h.fx.Category("Coffee")
	p := h.fx.Product(cat.ID, "Espresso", 250, true)
	h.fx.CartItem(alice.ID, p.ID, 1)
	code, _ = h.do(http.MethodPost, "/order", h.token(alice), nil)
	require.Equal(t, http.StatusOK, code)
	h.fx.CartItem(alice.ID, p.ID, 3)

	code, res = h.do(http.MethodGet, alicePath, h.token(admin), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, alice.Email, res["user"].(map[string]any)["email"])
	assert.NotContains(t, res["user"], "hashed_password")
	require.Len(t, res["cart"], 1)
	assert.Equal(t, float64(3), res["cart"].([]any)[0].(map[string]any)["quantity"])
	require.Len(t, res["orders"], 1)
	assert.Equal(t, float64(alice.ID), res["orders"].([]any)[0].(map[string]any)["user_id"])

	code, _ = h.do(http.MethodDelete, alicePath, h.token(admin), nil)
	require.Equal(t, http.StatusOK, code)

	for _, m := range []any{&model.Order{}, &model.OrderItem{}, &model.Cart{}} {
		var n int64
		h.d.DB.Model(m).Count(&n)
		assert.Zero(t, n)
	}

	code, _ = h.do(http.MethodGet, alicePath, h.token(admin), nil)
	assert.Equal(t, http.StatusNotFound, code)
}
