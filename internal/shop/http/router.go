package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

func RegisterRoutes(router *gin.Engine, handler *Handler, users UserResolver, checker HealthChecker) {
	router.GET("/", handler.GetIndex)
	router.GET("/products/:id", handler.GetProduct)
	router.GET("/products/:id/comments", handler.GetComments)

	authed := router.Group("", CurrentUserMiddleware(users))
	authed.GET("/products", handler.GetProducts)
	authed.GET("/cart", handler.GetCart)
	authed.POST("/cart", handler.PostCart)
	authed.DELETE("/cart/:productId", handler.DeleteCartItem)
	authed.GET("/checkout", handler.GetCheckout)
	authed.POST("/orders", handler.PostOrder)
	authed.GET("/orders", handler.GetOrders)
	authed.GET("/orders/:id/invoice", handler.GetOrderInvoice)
	authed.POST("/products/:id/comments", handler.PostComment)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
