package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/models"
)

func TestCategories_CreateListDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()

	hidden := false
	_, err := svc.CreateCategory(ctx, &CategoryRequest{Name: "Zebra Prints", DisplayOrder: 1})
	require.NoError(t, err)
	apparel, err := svc.CreateCategory(ctx, &CategoryRequest{Name: "Apparel", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, &CategoryRequest{Name: "Archive", IsActive: &hidden, DisplayOrder: 0})
	require.NoError(t, err)
	assert.Equal(t, "apparel", apparel.Slug)

	_, err = svc.CreateCategory(ctx, &CategoryRequest{Name: "apparel"})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)

	all, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Archive", all[0].Name)
	assert.Equal(t, "Apparel", all[1].Name)
	assert.Equal(t, "Zebra Prints", all[2].Name)

	active, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	product := &models.Product{Name: "Tee", Slug: "tee", Price: decimal.NewFromInt(15), IsActive: true, CategoryID: &apparel.ID}
	require.NoError(t, db.Create(product).Error)

	require.NoError(t, svc.DeleteCategory(ctx, apparel.ID))
	_, err = svc.GetCategory(ctx, apparel.ID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Nil(t, reloaded.CategoryID)

	_, err = svc.CreateCategory(ctx, &CategoryRequest{Name: "Apparel"})
	assert.NoError(t, err, "slug of a deleted category can be reused")
}

func TestUpdateCategory_RejectsSelfParent(t *testing.T) {
	svc := NewCategoryService(newTestDB(t))
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, &CategoryRequest{Name: "Bags"})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, category.ID, &CategoryRequest{Name: "Bags", ParentID: &category.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	updated, err := svc.UpdateCategory(ctx, category.ID, &CategoryRequest{Name: "Bags & Totes", DisplayOrder: 3})
	require.NoError(t, err)
	assert.Equal(t, "Bags & Totes", updated.Name)
	assert.Equal(t, 3, updated.DisplayOrder)
	assert.Equal(t, "bags", updated.Slug)
}
