package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.PesadasHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/compras", handler.ListCompras)
	r.POST("/compras", handler.CreateCompra)
	r.PUT("/compras/:id", handler.UpdateCompra)
	r.DELETE("/compras/:id", handler.DeleteCompra)
	r.GET("/compras/:id/recibo", handler.ReciboCompra)

	r.GET("/ventas", handler.ListVentas)
	r.POST("/ventas", handler.CreateVenta)
	r.PUT("/ventas/:id", handler.UpdateVenta)
	r.DELETE("/ventas/:id", handler.DeleteVenta)
	r.GET("/ventas/:id/recibo", handler.ReciboVenta)

	r.GET("/planilla", handler.Planilla)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
