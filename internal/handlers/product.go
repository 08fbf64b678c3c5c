// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	productService  *services.ProductService
	categoryService *services.CategoryService
}

func NewProductHandler(productService *services.ProductService, categoryService *services.CategoryService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		categoryService: categoryService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.ProductFilter{
		PaginationParams: params,
		ActiveOnly:       true,
		FeaturedFirst:    true,
	}

	if params.CategoryID != "" {
		categoryID, err := uuid.Parse(params.CategoryID)
		if err != nil {
			utils.BadRequestResponse(c, "", nil)
			return
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id, false)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product":          product,
		"discount_percent": product.DiscountPercent(),
	})
}

// GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.productService.GetProductBySlug(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product":          product,
		"discount_percent": product.DiscountPercent(),
	})
}

// GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), true)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}
