package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userKey       = "user"
	customerIDKey = "customerId"
)

// RequireAuth accepts an HS256 bearer token carrying a customer_id claim.
// It stores the claims under "user" and the customer id under "customerId".
func RequireAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		customerID, err := customerIDFromClaims(claims)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}

		ctx.Set(userKey, claims)
		ctx.Set(customerIDKey, customerID)
		ctx.Next()
	}
}

func customerIDFromClaims(claims jwt.MapClaims) (uint, error) {
	raw, ok := claims["customer_id"].(float64)
	if !ok || raw < 1 || raw != float64(uint(raw)) {
		return 0, errors.New("token has no customer")
	}
	return uint(raw), nil
}

// CustomerID returns the id set by RequireAuth.
func CustomerID(ctx *gin.Context) (uint, bool) {
	id, ok := ctx.Get(customerIDKey)
	if !ok {
		return 0, false
	}
	customerID, ok := id.(uint)
	return customerID, ok && customerID > 0
}
