package http

import (
	"github.com/gin-gonic/gin"
	"github.com/veliashev/shopcore/internal/adapter/config"
	"github.com/veliashev/shopcore/internal/core/port"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	tokenService port.TokenService,
	permissions port.PermissionService,
	orderHandler *OrderHandler) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		workspace := api.Group("/workspaces/:workspace")
		workspace.Use(authCheck(tokenService))
		{
			orders := workspace.Group("/orders")
			{
				orders.POST("", permissionCheck(permissions, port.ActionOrderCreate), orderHandler.CreateOrder)
				orders.POST("/bulk-status", permissionCheck(permissions, port.ActionOrderUpdate), orderHandler.BulkUpdateStatus)
				orders.GET("/:number", orderHandler.GetOrder)
				orders.GET("/:number/history", orderHandler.OrderTimeline)
				orders.PATCH("/:number/status", permissionCheck(permissions, port.ActionOrderUpdate), orderHandler.UpdateStatus)
				orders.POST("/:number/cancel", permissionCheck(permissions, port.ActionOrderCancel), orderHandler.CancelOrder)
				orders.POST("/:number/payment", permissionCheck(permissions, port.ActionOrderPayment), orderHandler.ConfirmPayment)
				orders.POST("/:number/archive", permissionCheck(permissions, port.ActionOrderArchive), orderHandler.ArchiveOrder)
				orders.POST("/:number/unarchive", permissionCheck(permissions, port.ActionOrderArchive), orderHandler.UnarchiveOrder)
			}

			discounts := workspace.Group("/discounts")
			{
				discounts.POST("/validate", orderHandler.ValidateDiscountCode)
			}
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
