package catalog

import (
	"context"
	"errors"

	"github.com/arscode/arscode-backend/internal/repo"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together catalog persistence for products, categories,
// and the storefront settings row.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct persists all columns of the product.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindProductByID loads a product with its category preloaded.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).
		Preload("Category").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns all products ordered by name, categories preloaded.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB(ctx).
		Preload("Category").
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementStock atomically reduces stock, refusing to go below zero.
// Returns the number of rows updated: zero means the product had less
// stock than requested at the moment of the update.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	return res.RowsAffected, res.Error
}

// IncrementStock adds quantity back to the product's stock.
func (r *Repository) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateCategory inserts a new category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.DB(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// FindCategoryByID loads a single category.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.DB(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategoryDiscount sets a category's discount percent.
func (r *Repository) UpdateCategoryDiscount(ctx context.Context, id uuid.UUID, percent int) error {
	res := r.DB(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("discount_percent", percent)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetStorefrontSetting loads the singleton settings row, creating it with
// defaults when missing so read paths never fail on a fresh database.
func (r *Repository) GetStorefrontSetting(ctx context.Context) (*models.StorefrontSetting, error) {
	var setting models.StorefrontSetting
	err := r.DB(ctx).First(&setting, "id = ?", models.StorefrontSettingID).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	setting = models.StorefrontSetting{ID: models.StorefrontSettingID}
	if err := r.DB(ctx).Create(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// SaveStorefrontSetting upserts the singleton settings row.
func (r *Repository) SaveStorefrontSetting(ctx context.Context, setting *models.StorefrontSetting) error {
	setting.ID = models.StorefrontSettingID
	return r.DB(ctx).Save(setting).Error
}
