package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"go.uber.org/zap"
)

type ProductRequest struct {
	Name        string   `json:"nombre" binding:"required"`
	Description string   `json:"descripcion"`
	Image       string   `json:"imagen"`
	NormalPrice float64  `json:"precio_normal" binding:"required,gt=0"`
	SalePrice   *float64 `json:"precio_rebajado" binding:"omitempty,gte=0"`
	Stock       int      `json:"cantidad" binding:"gte=0"`
	CategoryID  int      `json:"id_categoria" binding:"gte=0"`
}

// ProductUpdateRequest edits price and stock. A sale price of 0 removes the discount.
type ProductUpdateRequest struct {
	NormalPrice *float64 `json:"precio_normal" binding:"omitempty,gt=0"`
	SalePrice   *float64 `json:"precio_rebajado" binding:"omitempty,gte=0"`
	Stock       *int     `json:"cantidad" binding:"omitempty,gte=0"`
}

type CatalogService struct {
	store  Store
	cache  ProductCache
	logger *zap.Logger
}

// NewCatalogService wires the product catalog. cache may be nil.
func NewCatalogService(store Store, cache ProductCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, cache: cache, logger: logger}
}

// Product reads through the cache.
func (s *CatalogService) Product(ctx context.Context, id int) (*models.Product, error) {
	if s.cache != nil {
		p, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("Product cache read failed", zap.Int("product_id", id), zap.Error(err))
		}
	}

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, p); err != nil {
			s.logger.Warn("Product cache write failed", zap.Int("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}

func (s *CatalogService) Products(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products", ErrNotFound)
	}
	return products, nil
}

func (s *CatalogService) AddProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	if req.Name == "" || req.NormalPrice <= 0 || req.Stock < 0 {
		return nil, fmt.Errorf("%w: nombre and a positive precio_normal are required", ErrInvalidInput)
	}

	id, err := s.store.NextID(ctx, models.CounterProducts)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		NormalPrice: req.NormalPrice,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
	if req.SalePrice != nil && *req.SalePrice > 0 {
		v := *req.SalePrice
		p.SalePrice = &v
	}

	if err := s.store.InsertProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to add product: %w", err)
	}
	s.logger.Info("Product added", zap.Int("product_id", id), zap.String("name", p.Name))
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int, req ProductUpdateRequest) (*models.Product, error) {
	upd := models.ProductUpdate{
		NormalPrice: req.NormalPrice,
		Stock:       req.Stock,
	}
	if req.SalePrice != nil {
		if *req.SalePrice == 0 {
			upd.ClearSalePrice = true
		} else {
			upd.SalePrice = req.SalePrice
		}
	}

	p, err := s.store.UpdateProduct(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidate(ctx, id)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Int("product_id", id), zap.Error(err))
	}
}
