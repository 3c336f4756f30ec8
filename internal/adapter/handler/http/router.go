package http

import (
	"github.com/corepay/usdtgate/pkg/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	orderHandler *OrderHandler,
	payHandler *PayHandler,
	logger *zap.Logger) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	{
		order := api.Group("/order")
		{
			order.POST("/create-transaction", orderHandler.CreateTransaction)
		}
	}

	pay := router.Group("/pay")
	{
		pay.GET("/check-status/:trade_id", payHandler.CheckStatus)
		pay.GET("/checkout-counter/:trade_id", payHandler.CheckoutCounter)
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
