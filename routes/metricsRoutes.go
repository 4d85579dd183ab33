package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func MetricsRoutes(server *gin.Engine, handler http.Handler) {
	server.GET("/metrics", gin.WrapH(handler))
}
