package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func newTestProductService(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	storage := NewStorageServiceWithClient(config.AWSConfig{
		LocalUploadDir: t.TempDir(),
		LocalBaseURL:   "http://localhost:8080/uploads",
	}, nil)
	return NewProductService(db, storage), db
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateProduct_DerivesSlugAndDefaults(t *testing.T) {
	svc, _ := newTestProductService(t)

	product, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		Name:     "Blue  Denim Jacket",
		Price:    decimal.RequireFromString("89.00"),
		Quantity: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "blue-denim-jacket", product.Slug)
	assert.True(t, product.IsActive)
	assert.False(t, product.IsFeatured)
	assert.NotEqual(t, uuid.Nil, product.ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Hat", Price: decimal.RequireFromString("-1")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Hat", Price: decimal.NewFromInt(10), Quantity: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{
		Name:           "Hat",
		Price:          decimal.NewFromInt(10),
		CompareAtPrice: price("9.99"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)

	missing := uuid.New()
	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Hat", Price: decimal.NewFromInt(10), CategoryID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestCreateProduct_DuplicateSlugConflicts(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Tote Bag", Price: decimal.NewFromInt(15)})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "tote bag", Price: decimal.NewFromInt(20)})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateProduct_Partial(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, &CreateProductRequest{
		Name:           "Scarf",
		Price:          decimal.NewFromInt(30),
		CompareAtPrice: price("40"),
		IsFeatured:     true,
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.IsFeatured)
	assert.Equal(t, "Scarf", updated.Name)
	assert.Equal(t, 25, updated.DiscountPercent())

	// Raising the price above the stored compare-at is rejected
	_, err = svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{Price: price("45")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)

	updated, err = svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{Price: price("45"), ClearCompareAt: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CompareAtPrice)
	assert.Equal(t, "45.00", updated.Price.StringFixed(2))
}

func TestGetProduct_HidesInactive(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	inactive := false
	product, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Draft", Price: decimal.NewFromInt(1), IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.GetProduct(ctx, product.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	found, err := svc.GetProductBySlug(ctx, "draft", true)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)
}

func TestDeleteProduct_RemovesCartLinesAndFreesSlug(t *testing.T) {
	svc, db := newTestProductService(t)
	ctx := context.Background()
	user := createTestUser(t, db, "cart@example.com")
	cart := NewCartService(db, pricing.DefaultCalculator(), config.CartConfig{})

	product, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Poster", Price: decimal.NewFromInt(12)})
	require.NoError(t, err)
	_, err = cart.Add(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))

	_, err = svc.GetProduct(ctx, product.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	assert.Zero(t, countRows(t, db, &models.CartItem{}))

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Poster", Price: decimal.NewFromInt(14)})
	assert.NoError(t, err)
}

func TestListProducts_StorefrontOrderingAndSearch(t *testing.T) {
	svc, db := newTestProductService(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	seed := []struct {
		name     string
		featured bool
		active   bool
	}{
		{"Old Featured Lamp", true, true},
		{"Plain Chair", false, true},
		{"New Desk Lamp", false, true},
		{"Hidden 100% Lamp", true, false},
	}
	for i, s := range seed {
		p := &models.Product{
			Name:       s.name,
			Slug:       utils.Slugify(s.name),
			Price:      decimal.NewFromInt(10),
			IsActive:   s.active,
			IsFeatured: s.featured,
		}
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(p).Error)
	}

	products, total, err := svc.ListProducts(ctx, ProductFilter{ActiveOnly: true, FeaturedFirst: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, products, 3)
	assert.Equal(t, "Old Featured Lamp", products[0].Name)
	assert.Equal(t, "New Desk Lamp", products[1].Name)
	assert.Equal(t, "Plain Chair", products[2].Name)

	products, _, err = svc.ListProducts(ctx, ProductFilter{
		PaginationParams: utils.PaginationParams{Search: "LAMP"},
		ActiveOnly:       true,
		FeaturedFirst:    true,
	})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	// Wildcards in the search term match literally
	products, _, err = svc.ListProducts(ctx, ProductFilter{PaginationParams: utils.PaginationParams{Search: "100%"}})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Hidden 100% Lamp", products[0].Name)

	products, total, err = svc.ListProducts(ctx, ProductFilter{PaginationParams: utils.PaginationParams{Search: "sofa"}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListProducts_FiltersByCategory(t *testing.T) {
	svc, db := newTestProductService(t)
	ctx := context.Background()
	categories := NewCategoryService(db)

	shoes, err := categories.CreateCategory(ctx, &CategoryRequest{Name: "Shoes"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Sneaker", Price: decimal.NewFromInt(60), CategoryID: &shoes.ID})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Name: "Cap", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)

	products, total, err := svc.ListProducts(ctx, ProductFilter{CategoryID: &shoes.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Shoes", products[0].Category.Name)
}

func TestProductImages_LocalStorage(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Vase", Price: decimal.NewFromInt(25)})
	require.NoError(t, err)

	updated, err := svc.AddProductImage(ctx, product.ID, bytes.NewReader(pngBytes()))
	require.NoError(t, err)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, updated.Images[0], updated.PrimaryImage())

	updated, err = svc.RemoveProductImage(ctx, product.ID, updated.Images[0])
	require.NoError(t, err)
	assert.Empty(t, updated.Images)

	_, err = svc.RemoveProductImage(ctx, product.ID, "http://elsewhere/img.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
