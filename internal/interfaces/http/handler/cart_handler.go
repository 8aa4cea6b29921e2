package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopcart/internal/application/checkout"
	"shopcart/pkg/logger"
)

type CartHandler struct {
	svc    *checkout.Service
	logger logger.Logger
}

func NewCartHandler(svc *checkout.Service, log logger.Logger) *CartHandler {
	return &CartHandler{svc: svc, logger: log}
}

func (h *CartHandler) ListProducts(c *gin.Context) {
	query := c.Query("search")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusOK, gin.H{"products": toProducts(h.svc.Products())})
		return
	}
	found, err := h.svc.SearchProducts(query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProducts(found)})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCart(h.svc.CartView()))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.AddToCart(c.Request.Context(), req.ProductID, req.quantity()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(h.svc.CartView()))
}

func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(h.svc.CartView()))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.svc.RemoveFromCart(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, toCart(h.svc.CartView()))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	h.svc.ClearCart(c.Request.Context())
	c.JSON(http.StatusOK, toCart(h.svc.CartView()))
}

func (h *CartHandler) SaveCart(c *gin.Context) {
	if err := h.svc.SaveCartNow(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "status": h.svc.Status()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.svc.Status()})
}

// LoadCart reloads the snapshot. A failed load still answers with the
// (now empty) cart.
func (h *CartHandler) LoadCart(c *gin.Context) {
	code := http.StatusOK
	if err := h.svc.LoadCartNow(c.Request.Context()); err != nil {
		code = http.StatusInternalServerError
	}
	c.JSON(code, gin.H{"status": h.svc.Status(), "cart": toCart(h.svc.CartView())})
}

func (h *CartHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	receipt, err := h.svc.Checkout(c.Request.Context(), req.Buyer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, receiptResponse{
		Order:   toOrder(receipt.Order),
		Invoice: toInvoice(receipt.Invoice),
		Summary: receipt.Summary,
	})
}

func (h *CartHandler) ListOrders(c *gin.Context) {
	orders := h.svc.Orders()
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *CartHandler) ExportCart(c *gin.Context) {
	csvAttachment(c, "cart.csv", h.svc.ExportCart())
}

func (h *CartHandler) ExportLedger(c *gin.Context) {
	csvAttachment(c, "orders.csv", h.svc.ExportLedger())
}

func (h *CartHandler) ExportOrder(c *gin.Context) {
	id := c.Param("id")
	body, err := h.svc.ExportOrder(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	csvAttachment(c, id+".csv", body)
}

// fail maps validation errors to 400, unknown ids to 404 and the rest to 500.
func (h *CartHandler) fail(c *gin.Context, err error) {
	switch {
	case checkout.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case checkout.IsLookup(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.WithContext(c.Request.Context()).Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func csvAttachment(c *gin.Context, filename, body string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}
