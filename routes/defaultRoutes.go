package routes

import (
	"github.com/Kariqs/amexan-store/controllers"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func DefaultRoutes(server *gin.Engine, db *gorm.DB) {
	server.GET("/", controllers.GetHome)
	server.GET("/healthz", controllers.HealthCheck(db))
}
