package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kariqs/amexan-store/cart"
	"github.com/Kariqs/amexan-store/checkout"
	"github.com/Kariqs/amexan-store/controllers"
	"github.com/Kariqs/amexan-store/initializers"
	"github.com/Kariqs/amexan-store/internal/testdb"
	"github.com/Kariqs/amexan-store/inventory"
	"github.com/Kariqs/amexan-store/middlewares"
	"github.com/Kariqs/amexan-store/store"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type APISuite struct {
	suite.Suite
	db     *gorm.DB
	server *gin.Engine
}

func TestAPISuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.db = testdb.Open(s.T())
	metrics := initializers.NewMetrics()
	gateway := store.New(s.db, store.WithTimeout(5*time.Second))
	carts := cart.NewStore(s.db)
	ledger := inventory.NewLedger(s.db)
	service := checkout.NewService(gateway, carts, ledger, checkout.WithRecorder(metrics))

	s.server = gin.New()
	s.server.Use(middlewares.RequestID())
	requireAuth := middlewares.RequireAuth(testSecret)
	DefaultRoutes(s.server, s.db)
	MetricsRoutes(s.server, metrics.Handler())
	CartRoutes(s.server, requireAuth, &controllers.CartController{Carts: carts})
	OrderRoutes(s.server, requireAuth,
		&controllers.CheckoutController{Checkout: service},
		&controllers.OrderController{DB: s.db},
	)
	AdminRoutes(s.server, requireAuth, &controllers.AdminController{Gateway: gateway, Ledger: ledger})
}

func token(customerID uint, role string) string {
	claims := jwt.MapClaims{
		"customer_id": customerID,
		"role":        role,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *APISuite) do(method, path, bearer string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	var reader bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&reader).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func (s *APISuite) TestHomeAndHealth() {
	rec, body := s.do(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(body["message"], "Amexan Store")

	rec, body = s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("ok", body["status"])
	s.NotEmpty(rec.Header().Get(middlewares.RequestIDHeader))
}

func (s *APISuite) TestCartRequiresToken() {
	rec, _ := s.do(http.MethodGet, "/cart", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/cart", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APISuite) TestAddToCartAndView() {
	product := testdb.SeedProduct(s.T(), s.db, "Lamp", "15.00", 4)
	bearer := token(1, "customer")

	rec, _ := s.do(http.MethodPost, "/cart", bearer, gin.H{"productId": product.ID, "quantity": 2})
	s.Equal(http.StatusCreated, rec.Code)
	rec, _ = s.do(http.MethodPost, "/cart", bearer, gin.H{"productId": product.ID, "quantity": 1})
	s.Equal(http.StatusCreated, rec.Code)

	rec, body := s.do(http.MethodGet, "/cart", bearer, nil)
	s.Equal(http.StatusOK, rec.Code)
	items := body["items"].([]any)
	s.Require().Len(items, 1)
	s.EqualValues(3, items[0].(map[string]any)["quantity"])
	s.Equal("45", body["total"])
}

func (s *APISuite) TestAddToCartValidation() {
	bearer := token(1, "customer")

	rec, _ := s.do(http.MethodPost, "/cart", bearer, gin.H{"productId": 1, "quantity": 0})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodPost, "/cart", bearer, gin.H{"productId": 999, "quantity": 1})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestCheckoutFlow() {
	product := testdb.SeedProduct(s.T(), s.db, "Lamp", "15.00", 4)
	bearer := token(1, "customer")

	rec, body := s.do(http.MethodPost, "/checkout", bearer, gin.H{"address": "12 Bay Rd"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(checkout.KindEmptyCart, body["error"])

	s.do(http.MethodPost, "/cart", bearer, gin.H{"productId": product.ID, "quantity": 2})

	rec, body = s.do(http.MethodPost, "/checkout", bearer, gin.H{"address": " "})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(checkout.KindMissingAddress, body["error"])

	rec, body = s.do(http.MethodPost, "/checkout", bearer, gin.H{"address": "12 Bay Rd"}, controllers.IdempotencyKeyHeader, "k-1")
	s.Require().Equal(http.StatusCreated, rec.Code)
	orderID := body["orderId"]
	s.Equal("30", body["total"])
	s.Equal(false, body["replayed"])

	rec, body = s.do(http.MethodPost, "/checkout", bearer, gin.H{"address": "12 Bay Rd"}, controllers.IdempotencyKeyHeader, "k-1")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(orderID, body["orderId"])
	s.Equal(true, body["replayed"])

	rec, body = s.do(http.MethodGet, fmt.Sprintf("/order/%v", orderID), bearer, nil)
	s.Equal(http.StatusOK, rec.Code)
	order := body["order"].(map[string]any)
	s.Len(order["lines"], 1)
	s.Equal("12 Bay Rd", order["delivery"].(map[string]any)["address"])

	rec, body = s.do(http.MethodGet, "/orders?sort=asc", bearer, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Len(body["orders"], 1)

	// another customer cannot read the order
	rec, _ = s.do(http.MethodGet, fmt.Sprintf("/order/%v", orderID), token(2, "customer"), nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `storefront_checkout_total{outcome="ok"} 1`)
	s.Contains(rec.Body.String(), `storefront_checkout_total{outcome="replayed"} 1`)
}

func (s *APISuite) TestCheckoutInsufficientStock() {
	product := testdb.SeedProduct(s.T(), s.db, "Lamp", "15.00", 1)
	bearer := token(1, "customer")
	s.do(http.MethodPost, "/cart", bearer, gin.H{"productId": product.ID, "quantity": 3})

	rec, body := s.do(http.MethodPost, "/checkout", bearer, gin.H{"address": "12 Bay Rd"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(checkout.KindInsufficientStock, body["error"])
	s.EqualValues(product.ID, body["productId"])
	s.EqualValues(3, body["requested"])
	s.EqualValues(1, body["available"])
}

func (s *APISuite) TestRestockRequiresAdmin() {
	product := testdb.SeedProduct(s.T(), s.db, "Lamp", "15.00", 1)
	path := fmt.Sprintf("/admin/product/%d/stock", product.ID)

	rec, _ := s.do(http.MethodPost, path, token(1, "customer"), gin.H{"quantity": 5})
	s.Equal(http.StatusForbidden, rec.Code)

	rec, body := s.do(http.MethodPost, path, token(1, "admin"), gin.H{"quantity": 5})
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(6, body["stockQuantity"])
	s.Equal(6, testdb.Stock(s.T(), s.db, product.ID))

	rec, _ = s.do(http.MethodPost, "/admin/product/999/stock", token(1, "admin"), gin.H{"quantity": 5})
	s.Equal(http.StatusNotFound, rec.Code)
}
