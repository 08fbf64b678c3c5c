// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// respondWithCart renders the cart with display totals rounded to cents
func (h *CartHandler) respondWithCart(c *gin.Context, extra gin.H) {
	summary, err := h.cartService.Summary(c.Request.Context(), optionalUserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	payload := gin.H{
		"cart":   summary,
		"totals": summary.Pricing.Rounded(),
	}
	for k, v := range extra {
		payload[k] = v
	}
	utils.SuccessResponse(c, payload)
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	h.respondWithCart(c, nil)
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cartService.Add(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	h.respondWithCart(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCartItemAdded),
		"item":    item,
	})
}

// PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.cartService.SetQuantity(c.Request.Context(), userID, lineID, req.Quantity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	message := i18n.T(lang, i18n.KeyCartItemUpdated)
	if item == nil {
		message = i18n.T(lang, i18n.KeyCartItemRemoved)
	}
	h.respondWithCart(c, gin.H{
		"message": message,
		"item":    item,
	})
}

// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), userID, lineID); err != nil {
		utils.HandleError(c, err)
		return
	}

	h.respondWithCart(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCartItemRemoved),
	})
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		utils.HandleError(c, err)
		return
	}

	h.respondWithCart(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCartCleared),
	})
}
