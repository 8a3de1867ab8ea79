package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/infra/db/dbtest"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/metrics"
	"marketplace/internal/server"
	"marketplace/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const secret = "server-test-secret"

type testServer struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb := dbtest.New(t)
	m := metrics.New(prometheus.NewRegistry())
	log := zap.NewNop()
	h := server.NewHandlers(gdb, "ORD", usecase.SystemClock{}, m, log)
	ping := func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return &testServer{t: t, e: server.New(log, m, secret, ping, h), db: gdb}
}

func token(t *testing.T, userID int64, role model.Role) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(method, path, tok, body string, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedShop(merchantID int64) model.Shop {
	s.t.Helper()
	shop, err := infraRepo.NewShopGormRepository(s.db).Create(context.Background(), model.Shop{
		MerchantID: merchantID, Name: "shop", Status: model.ShopStatusApproved,
	})
	require.NoError(s.t, err)
	return shop
}

func (s *testServer) seedProduct(shopID int64, price string) model.Product {
	s.t.Helper()
	p, err := infraRepo.NewProductGormRepository(s.db).Create(context.Background(), model.Product{
		ShopID: shopID, Name: "item", Price: decimal.RequireFromString(price), Stock: 5, IsOnSale: true,
	})
	require.NoError(s.t, err)
	return p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_http_requests_total")
}

func TestAuthBoundary(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["code"])

	rec = s.do(http.MethodGet, "/admin/stats", token(t, 1, model.RoleBuyer), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec)["code"])

	//店舗の無いマーチャントの集計は全て0
	rec = s.do(http.MethodGet, "/merchant/stats", token(t, 10, model.RoleMerchant), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["has_shop"])

	//公開API
	rec = s.do(http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	buyer := token(t, 1, model.RoleBuyer)
	merchant := token(t, 10, model.RoleMerchant)
	admin := token(t, 99, model.RoleAdmin)

	shop := s.seedShop(10)
	a := s.seedProduct(shop.ID, "10.00")
	b := s.seedProduct(shop.ID, "5.00")

	rec := s.do(http.MethodPost, "/cart", buyer, `{"product_id":`+strconv.FormatInt(a.ID, 10)+`,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decode(t, rec)["code"])

	rec = s.do(http.MethodPost, "/cart", buyer, `{"product_id":`+strconv.FormatInt(a.ID, 10)+`,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/cart", buyer, `{"product_id":`+strconv.FormatInt(b.ID, 10)+`,"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "25.00", decode(t, rec)["total"])

	rec = s.do(http.MethodPost, "/orders", buyer, `{"address":"1-1 Chiyoda, Tokyo"}`, "X-Idempotency-Key", "abc")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "25.00", created["total_amount"])
	orderNo := created["order_no"].(string)
	orderID := strconv.FormatInt(int64(created["order_id"].(float64)), 10)

	//同じキーで再送
	rec = s.do(http.MethodPost, "/orders", buyer, `{"address":"1-1 Chiyoda, Tokyo"}`, "X-Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, orderNo, decode(t, rec)["order_no"])
	assert.Equal(t, true, decode(t, rec)["replayed"])

	//カートは空
	rec = s.do(http.MethodPost, "/orders", buyer, `{"address":"Tokyo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_CART", decode(t, rec)["code"])

	//支払い前の発送は不可
	rec = s.do(http.MethodPost, "/merchant/orders/"+orderID+"/ship", merchant, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, rec)["code"])

	rec = s.do(http.MethodPost, "/orders/"+orderID+"/pay", token(t, 2, model.RoleBuyer), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/orders/pay", buyer, `{"order_no":"`+orderNo+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PAID", decode(t, rec)["status"])

	rec = s.do(http.MethodPost, "/orders/"+orderID+"/pay", buyer, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, rec)["code"])

	rec = s.do(http.MethodPost, "/merchant/orders/"+orderID+"/ship", merchant, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/orders/"+orderID+"/confirm", buyer, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "COMPLETED", decode(t, rec)["status"])

	rec = s.do(http.MethodGet, "/orders/"+orderID, buyer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode(t, rec)
	assert.Len(t, detail["items"], 2)
	assert.NotNil(t, detail["paid_at"])
	assert.NotNil(t, detail["shipped_at"])

	rec = s.do(http.MethodGet, "/orders/count", buyer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["total"])

	rec = s.do(http.MethodGet, "/admin/stats", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode(t, rec)["orders"].(map[string]any)
	assert.Equal(t, "25.00", orders["revenue"])

	rec = s.do(http.MethodGet, "/admin/orders?status=COMPLETED", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["total"])

	rec = s.do(http.MethodGet, "/admin/orders?status=BOGUS", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrossShopOverHTTP(t *testing.T) {
	s := newTestServer(t)
	buyer := token(t, 1, model.RoleBuyer)
	a := s.seedProduct(s.seedShop(10).ID, "10.00")
	b := s.seedProduct(s.seedShop(11).ID, "5.00")

	for _, p := range []model.Product{a, b} {
		rec := s.do(http.MethodPost, "/cart", buyer, `{"product_id":`+strconv.FormatInt(p.ID, 10)+`,"quantity":1}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodPost, "/orders", buyer, `{"address":"Tokyo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CROSS_SHOP_ORDER", decode(t, rec)["code"])

	rec = s.do(http.MethodGet, "/cart", buyer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	rec = s.do(http.MethodPost, "/orders", buyer, `{"address":"Tokyo","product_ids":[`+strconv.FormatInt(b.ID, 10)+`]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "5.00", decode(t, rec)["total_amount"])
}

func TestAdminOverrideAndAuditOverHTTP(t *testing.T) {
	s := newTestServer(t)
	buyer := token(t, 1, model.RoleBuyer)
	admin := token(t, 99, model.RoleAdmin)
	a := s.seedProduct(s.seedShop(10).ID, "10.00")

	rec := s.do(http.MethodPost, "/cart", buyer, `{"product_id":`+strconv.FormatInt(a.ID, 10)+`,"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/orders", buyer, `{"address":"Tokyo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := strconv.FormatInt(int64(decode(t, rec)["order_id"].(float64)), 10)

	rec = s.do(http.MethodPut, "/admin/orders/"+orderID+"/status", admin, `{"status":"SHIPPED"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SHIPPED", decode(t, rec)["status"])

	rec = s.do(http.MethodPut, "/admin/orders/"+orderID+"/status", admin, `{"status":"3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["unchanged"])

	rec = s.do(http.MethodGet, "/admin/audit-logs?action=UPDATE_ORDER_STATUS", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, `{"status":"SHIPPED"}`, logs[0]["after_json"])

	rec = s.do(http.MethodDelete, "/admin/orders/"+orderID, admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/admin/orders/"+orderID, admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
