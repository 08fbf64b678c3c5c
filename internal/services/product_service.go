// internal/services/product_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type ProductService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreateProductRequest struct {
	Name           string                 `json:"name" validate:"required,max=255"`
	Slug           string                 `json:"slug,omitempty" validate:"omitempty,slug,max=255"`
	Description    string                 `json:"description,omitempty"`
	Price          decimal.Decimal        `json:"price"`
	CompareAtPrice *decimal.Decimal       `json:"compare_at_price,omitempty"`
	CostPerItem    *decimal.Decimal       `json:"cost_per_item,omitempty"`
	SKU            string                 `json:"sku,omitempty" validate:"max=100"`
	Barcode        string                 `json:"barcode,omitempty" validate:"max=100"`
	Quantity       int                    `json:"quantity" validate:"gte=0"`
	IsActive       *bool                  `json:"is_active,omitempty"`
	IsFeatured     bool                   `json:"is_featured"`
	CategoryID     *uuid.UUID             `json:"category_id,omitempty"`
	Images         []string               `json:"images,omitempty" validate:"omitempty,dive,url"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateProductRequest struct {
	Name           *string                `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Slug           *string                `json:"slug,omitempty" validate:"omitempty,slug,max=255"`
	Description    *string                `json:"description,omitempty"`
	Price          *decimal.Decimal       `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal       `json:"compare_at_price,omitempty"`
	ClearCompareAt bool                   `json:"clear_compare_at_price,omitempty"`
	CostPerItem    *decimal.Decimal       `json:"cost_per_item,omitempty"`
	SKU            *string                `json:"sku,omitempty" validate:"omitempty,max=100"`
	Barcode        *string                `json:"barcode,omitempty" validate:"omitempty,max=100"`
	Quantity       *int                   `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	IsActive       *bool                  `json:"is_active,omitempty"`
	IsFeatured     *bool                  `json:"is_featured,omitempty"`
	CategoryID     *uuid.UUID             `json:"category_id,omitempty"`
	ClearCategory  bool                   `json:"clear_category,omitempty"`
	Images         []string               `json:"images,omitempty" validate:"omitempty,dive,url"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// ProductFilter selects catalog listings. Storefront listings set ActiveOnly
// and FeaturedFirst; the admin listing sees every product newest first.
type ProductFilter struct {
	utils.PaginationParams
	ActiveOnly    bool
	FeaturedFirst bool
	CategoryID    *uuid.UUID
}

func NewProductService(db *gorm.DB, storageService *StorageService) *ProductService {
	return &ProductService{
		db:             db,
		storageService: storageService,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	params := utils.NormalizePagination(filter.PaginationParams)
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		query = query.Where(foldedLike(s.db, "name"), containsTerm(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "count products")
	}

	if filter.FeaturedFirst {
		query = query.Order("is_featured DESC").Order("created_at DESC")
	} else {
		allowedSortFields := []string{"created_at", "updated_at", "name", "price", "quantity"}
		query = utils.ApplySort(query, params, allowedSortFields)
	}
	query = utils.ApplyPagination(query.Order("id"), params)

	products := []models.Product{}
	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, apperrors.Persistence(err, "fetch products")
	}

	return products, total, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error) {
	return s.findProduct(ctx, includeInactive, "id = ?", id)
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string, includeInactive bool) (*models.Product, error) {
	return s.findProduct(ctx, includeInactive, "slug = ?", slug)
}

func (s *ProductService) findProduct(ctx context.Context, includeInactive bool, cond string, arg interface{}) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Where(cond, arg).First(&product).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrProductNotFound, "find product")
	}

	if !product.IsActive && !includeInactive {
		return nil, apperrors.ErrProductNotFound
	}

	return &product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}
	if err := validatePrices(req.Price, req.CompareAtPrice, req.CostPerItem); err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	if slug == "" {
		return nil, apperrors.ErrValidationFailed.WithDetails("slug cannot be derived from name")
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := &models.Product{
		Name:           strings.TrimSpace(req.Name),
		Slug:           slug,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		CostPerItem:    req.CostPerItem,
		SKU:            req.SKU,
		Barcode:        req.Barcode,
		Quantity:       req.Quantity,
		IsActive:       isActive,
		IsFeatured:     req.IsFeatured,
		CategoryID:     req.CategoryID,
		Images:         models.StringArray(req.Images),
		Metadata:       models.JSONB(req.Metadata),
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, apperrors.Persistence(err, "create product")
	}

	return s.GetProduct(ctx, product.ID, true)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	product, err := s.GetProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}

	price := product.Price
	if req.Price != nil {
		price = *req.Price
	}
	compareAt := product.CompareAtPrice
	if req.ClearCompareAt {
		compareAt = nil
	} else if req.CompareAtPrice != nil {
		compareAt = req.CompareAtPrice
	}
	if err := validatePrices(price, compareAt, req.CostPerItem); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil && *req.Slug != product.Slug {
		if err := s.ensureSlugFree(ctx, *req.Slug, id); err != nil {
			return nil, err
		}
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ClearCompareAt || req.CompareAtPrice != nil {
		updates["compare_at_price"] = compareAt
	}
	if req.CostPerItem != nil {
		updates["cost_per_item"] = *req.CostPerItem
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Barcode != nil {
		updates["barcode"] = *req.Barcode
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.ClearCategory {
		updates["category_id"] = nil
	} else if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Images != nil {
		updates["images"] = models.StringArray(req.Images)
	}
	if req.Metadata != nil {
		updates["metadata"] = models.JSONB(req.Metadata)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, apperrors.ErrSlugTaken
			}
			return nil, apperrors.Persistence(err, "update product")
		}
	}

	return s.GetProduct(ctx, id, true)
}

// DeleteProduct hides the product and drops it from every cart. Order items
// keep their name and price snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id, true)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return apperrors.Persistence(err, "remove product from carts")
		}

		// Free the slug for reuse, the unique index also covers deleted rows
		retired := fmt.Sprintf("%s--deleted-%s", product.Slug, id.String()[:8])
		if err := tx.Model(product).Update("slug", retired).Error; err != nil {
			return apperrors.Persistence(err, "retire product slug")
		}

		if err := tx.Delete(product).Error; err != nil {
			return apperrors.Persistence(err, "delete product")
		}
		return nil
	})
}

func (s *ProductService) AddProductImage(ctx context.Context, id uuid.UUID, image io.Reader) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}

	result, err := s.storageService.UploadProductImage(ctx, image)
	if err != nil {
		return nil, err
	}

	images := append(models.StringArray{}, product.Images...)
	images = append(images, result.URL)
	if err := s.db.WithContext(ctx).Model(product).Update("images", images).Error; err != nil {
		return nil, apperrors.Persistence(err, "attach product image")
	}

	return s.GetProduct(ctx, id, true)
}

func (s *ProductService) RemoveProductImage(ctx context.Context, id uuid.UUID, url string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}

	images := models.StringArray{}
	found := false
	for _, existing := range product.Images {
		if existing == url {
			found = true
			continue
		}
		images = append(images, existing)
	}
	if !found {
		return nil, apperrors.ErrNotFound.WithDetails("image is not attached to this product")
	}

	if err := s.db.WithContext(ctx).Model(product).Update("images", images).Error; err != nil {
		return nil, apperrors.Persistence(err, "detach product image")
	}

	if err := s.storageService.DeleteImage(ctx, url); err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id, true)
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return apperrors.Persistence(err, "check category")
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func (s *ProductService) ensureSlugFree(ctx context.Context, slug string, exceptID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	if err != nil {
		return apperrors.Persistence(err, "check product slug")
	}
	if count > 0 {
		return apperrors.ErrSlugTaken
	}
	return nil
}

func validatePrices(price decimal.Decimal, compareAt, cost *decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.ErrValidationFailed.WithDetails("price must not be negative")
	}
	if compareAt != nil && compareAt.LessThan(price) {
		return apperrors.ErrInvalidPrice
	}
	if cost != nil && cost.IsNegative() {
		return apperrors.ErrValidationFailed.WithDetails("cost per item must not be negative")
	}
	return nil
}
