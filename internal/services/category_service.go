// internal/services/category_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CategoryRequest struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Slug         string     `json:"slug,omitempty" validate:"omitempty,slug,max=255"`
	Description  string     `json:"description,omitempty"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	DisplayOrder int        `json:"display_order"`
	IsActive     *bool      `json:"is_active,omitempty"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := s.db.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	categories := []models.Category{}
	if err := query.Order("display_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Persistence(err, "fetch categories")
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCategoryNotFound, "find category")
	}
	return &category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	category := &models.Category{
		Name:         strings.TrimSpace(req.Name),
		Slug:         req.Slug,
		Description:  req.Description,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if category.Slug == "" {
		category.Slug = utils.Slugify(category.Name)
	}
	if category.Slug == "" {
		return nil, apperrors.ErrValidationFailed.WithDetails("slug cannot be derived from name")
	}

	if req.ParentID != nil {
		if _, err := s.GetCategory(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, apperrors.Persistence(err, "create category")
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && *req.ParentID == id {
		return nil, apperrors.ErrValidationFailed.WithDetails("category cannot be its own parent")
	}

	updates := map[string]interface{}{
		"name":          strings.TrimSpace(req.Name),
		"description":   req.Description,
		"parent_id":     req.ParentID,
		"display_order": req.DisplayOrder,
	}
	if req.Slug != "" {
		updates["slug"] = req.Slug
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, apperrors.Persistence(err, "update category")
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes the category and leaves its products uncategorised
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return apperrors.Persistence(err, "detach products from category")
		}
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return apperrors.Persistence(err, "detach child categories")
		}

		retired := fmt.Sprintf("%s--deleted-%s", category.Slug, id.String()[:8])
		if err := tx.Model(category).Update("slug", retired).Error; err != nil {
			return apperrors.Persistence(err, "retire category slug")
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Persistence(err, "delete category")
		}
		return nil
	})
}
