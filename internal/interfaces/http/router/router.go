package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart/internal/interfaces/http/handler"
)

func RegisterRoutes(r *gin.Engine, cartHandler *handler.CartHandler, metrics http.Handler) {
	api := r.Group("/api")
	{
		api.GET("/products", cartHandler.ListProducts)

		api.GET("/cart", cartHandler.GetCart)
		api.DELETE("/cart", cartHandler.ClearCart)
		api.POST("/cart/items", cartHandler.AddItem)
		api.PUT("/cart/items/:id", cartHandler.SetQuantity)
		api.DELETE("/cart/items/:id", cartHandler.RemoveItem)
		api.POST("/cart/save", cartHandler.SaveCart)
		api.POST("/cart/load", cartHandler.LoadCart)

		api.POST("/checkout", cartHandler.Checkout)
		api.GET("/orders", cartHandler.ListOrders)

		api.GET("/export/cart", cartHandler.ExportCart)
		api.GET("/export/ledger", cartHandler.ExportLedger)
		api.GET("/export/orders/:id", cartHandler.ExportOrder)
	}

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
}
