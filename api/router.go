package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_backend/internal/metrics"
	"sales_backend/internal/sales"
)

// InitRoutes registers all sale record CRUD endpoints on the given Gin engine,
// together with the health check and, when reg is not nil, /metrics.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger, reg *metrics.Registry) {
	e.Use(CORS(), RequestID(), Logger(logger))
	if reg != nil {
		e.Use(Metrics(reg))
		e.GET("/metrics", gin.WrapH(reg.Handler()))
	}

	salesHandler := NewSalesHandler(salesService, logger, reg)

	e.GET("/", salesHandler.handleHealth)

	for _, path := range []string{"/sales", "/sales/"} {
		e.POST(path, salesHandler.handleCreateSale)
		e.GET(path, salesHandler.handleListSales)
	}
	e.GET("/sales/:sale_id", salesHandler.handleGetSale)
	e.PUT("/sales/:sale_id", salesHandler.handleUpdateSale)
	e.DELETE("/sales/:sale_id", salesHandler.handleDeleteSale)
}
