package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const secret = "s3cret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireAuth(secret), func(ctx *gin.Context) {
		customerID, ok := CustomerID(ctx)
		if !ok {
			ctx.Status(http.StatusTeapot)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"customerId": customerID})
	})
	router.GET("/admin", RequireAuth(secret), RequireAdmin(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return router
}

func get(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	router := newRouter()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name          string
		authorization string
		want          int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"customer_id": 9, "exp": exp}), http.StatusOK},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"customer_id": 9, "exp": exp}), http.StatusUnauthorized},
		{"wrong algorithm", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"customer_id": 9, "exp": exp}), http.StatusUnauthorized},
		{"no expiry", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"customer_id": 9}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"customer_id": 9, "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"no customer", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"exp": exp}), http.StatusUnauthorized},
		{"fractional customer", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"customer_id": 1.5, "exp": exp}), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(router, "/me", tc.authorization)
			require.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				require.JSONEq(t, `{"customerId":9}`, rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	router := newRouter()
	exp := time.Now().Add(time.Hour).Unix()

	customer := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"customer_id": 1, "role": "customer", "exp": exp})
	admin := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"customer_id": 1, "role": "admin", "exp": exp})

	require.Equal(t, http.StatusForbidden, get(router, "/admin", "Bearer "+customer).Code)
	require.Equal(t, http.StatusNoContent, get(router, "/admin", "Bearer "+admin).Code)
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", RequireAdmin(), func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	require.Equal(t, http.StatusUnauthorized, get(router, "/admin", "").Code)
}
