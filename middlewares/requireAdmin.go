package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const roleAdmin = "admin"

// RequireAdmin lets through tokens whose role claim is "admin".
// It reads the claims stored by RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(roleAdmin)
}

func RequireRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := ctx.Value(userKey).(jwt.MapClaims)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Login required"})
			return
		}
		if got, _ := claims["role"].(string); got != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are not allowed to perform this action"})
			return
		}
		ctx.Next()
	}
}
