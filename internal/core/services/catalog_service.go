package services

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/core/domain"

	"gorm.io/gorm"
)

// ErrCategoryNotEmpty is returned when deleting a category that still has products
var ErrCategoryNotEmpty = errors.New("category still has products")

// CatalogService handles category and product management
type CatalogService struct {
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepository
	stockRepo    repositories.StockRepository
	assets       *AssetService
	db           *gorm.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	categoryRepo repositories.CategoryRepository,
	productRepo repositories.ProductRepository,
	stockRepo repositories.StockRepository,
	assets *AssetService,
	db *gorm.DB,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		assets:       assets,
		db:           db,
	}
}

// CategoryInput represents category create/update input
type CategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// ProductInput represents product create/update input
type ProductInput struct {
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	Detail     string  `json:"detail"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	CategoryID uint    `json:"category_id" validate:"required"`
	IsFeatured bool    `json:"is_featured"`
}

// ProductView is a product with its live stock count
type ProductView struct {
	*models.Product
	StockCount int64 `json:"stock_count"`
}

// ============================================================
// Categories
// ============================================================

// ListCategories lists all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory gets a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// CreateCategory creates a category, uploading its image when given
func (s *CatalogService) CreateCategory(ctx context.Context, input *CategoryInput, image io.Reader) (*models.Category, error) {
	category := &models.Category{Name: input.Name}

	if image != nil {
		asset, err := s.assets.Upload(ctx, image, "rs-store/categories")
		if err != nil {
			return nil, err
		}
		category.Image = asset.URL
		category.ImagePublicID = asset.PublicID
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	log.Printf("✅ Category created: %s (ID: %d)", category.Name, category.ID)
	return category, nil
}

// UpdateCategory updates a category; a new image replaces the old asset
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, input *CategoryInput, image io.Reader) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name

	if image != nil {
		asset, err := s.assets.Upload(ctx, image, "rs-store/categories")
		if err != nil {
			return nil, err
		}
		s.assets.Destroy(ctx, category.ImagePublicID)
		category.Image = asset.URL
		category.ImagePublicID = asset.PublicID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory deletes an empty category and its image asset
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.assets.Destroy(ctx, category.ImagePublicID)

	log.Printf("✅ Category deleted: %s (ID: %d)", category.Name, id)
	return nil
}

// ============================================================
// Products
// ============================================================

// ListProducts lists products with live stock counts, paginated
func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) ([]*ProductView, int64, error) {
	products, total, err := s.productRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.withStockCounts(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListProductsByCategory lists a category's products with stock counts
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID uint) ([]*ProductView, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.withStockCounts(ctx, products)
}

// ListFeatured lists products flagged for the landing page
func (s *CatalogService) ListFeatured(ctx context.Context, limit int) ([]*ProductView, error) {
	products, err := s.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.withStockCounts(ctx, products)
}

// GetProduct gets a product with its stock count
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*ProductView, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	count, err := s.stockRepo.CountAvailable(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProductView{Product: product, StockCount: count}, nil
}

// CreateProduct creates a product under an existing category
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput, image io.Reader) (*models.Product, error) {
	if _, err := s.GetCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:       input.Name,
		Detail:     input.Detail,
		Price:      input.Price,
		CategoryID: input.CategoryID,
		IsFeatured: input.IsFeatured,
	}

	if image != nil {
		asset, err := s.assets.Upload(ctx, image, "rs-store/products")
		if err != nil {
			return nil, err
		}
		product.Image = asset.URL
		product.ImagePublicID = asset.PublicID
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	log.Printf("✅ Product created: %s (ID: %d)", product.Name, product.ID)
	return product, nil
}

// UpdateProduct updates a product; a new image replaces the old asset
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, input *ProductInput, image io.Reader) (*models.Product, error) {
	view, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product := view.Product

	if input.CategoryID != product.CategoryID {
		if _, err := s.GetCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	product.Name = input.Name
	product.Detail = input.Detail
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.IsFeatured = input.IsFeatured

	if image != nil {
		asset, err := s.assets.Upload(ctx, image, "rs-store/products")
		if err != nil {
			return nil, err
		}
		s.assets.Destroy(ctx, product.ImagePublicID)
		product.Image = asset.URL
		product.ImagePublicID = asset.PublicID
	}

	// Clear preload so Save doesn't touch the categories table
	product.Category = nil

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct deletes a product together with its remaining stock.
// Purchase receipts keep their own snapshot, so past sales are intact.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	view, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	product := view.Product

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.stockRepo.DeleteByProduct(ctx, tx, id); err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return err
	}

	s.assets.Destroy(ctx, product.ImagePublicID)

	log.Printf("✅ Product deleted: %s (ID: %d)", product.Name, id)
	return nil
}

// withStockCounts decorates products with their unsold counts
func (s *CatalogService) withStockCounts(ctx context.Context, products []*models.Product) ([]*ProductView, error) {
	views := make([]*ProductView, 0, len(products))
	for _, p := range products {
		count, err := s.stockRepo.CountAvailable(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, &ProductView{Product: p, StockCount: count})
	}
	return views, nil
}
