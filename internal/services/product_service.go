// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/store"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

type ProductService struct {
	products store.ProductStore
	storage  *StorageService
	events   EventPublisher
	log      *logrus.Logger
}

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Code        string   `json:"code" validate:"required,product_code"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Status      *bool    `json:"status,omitempty"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,max=100"`
	Thumbnails  []string `json:"thumbnails,omitempty" validate:"omitempty,dive,required"`
}

// UpdateProductRequest is a partial update. Fields left out of the body
// stay untouched, and an id in the body is ignored.
type UpdateProductRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description,omitempty"`
	Code        *string   `json:"code,omitempty" validate:"omitempty,product_code"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Status      *bool     `json:"status,omitempty"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Thumbnails  *[]string `json:"thumbnails,omitempty"`
}

func NewProductService(products store.ProductStore, storage *StorageService, events EventPublisher, log *logrus.Logger) *ProductService {
	return &ProductService{
		products: products,
		storage:  storage,
		events:   events,
		log:      log,
	}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.ProductDTO, error) {
	product, err := s.products.FindProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	dto := models.NewProductDTO(product)
	return &dto, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.ProductDTO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}
	product := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Price:       *req.Price,
		Status:      status,
		Stock:       *req.Stock,
		Category:    req.Category,
		Thumbnails:  append([]string{}, req.Thumbnails...),
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	dto := models.NewProductDTO(product)
	publish(ctx, s.events, s.log, EventProductCreated, dto)
	return &dto, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.ProductDTO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	patch := store.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Price:       req.Price,
		Status:      req.Status,
		Stock:       req.Stock,
		Category:    req.Category,
		Thumbnails:  req.Thumbnails,
	}

	product, err := s.products.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", notFound(err, ErrProductNotFound))
	}

	dto := models.NewProductDTO(product)
	publish(ctx, s.events, s.log, EventProductUpdated, dto)
	return &dto, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", notFound(err, ErrProductNotFound))
	}
	publish(ctx, s.events, s.log, EventProductDeleted, map[string]string{"id": id})
	return nil
}

// AddThumbnail stores an uploaded image and appends its URL to the
// product's thumbnails.
func (s *ProductService) AddThumbnail(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (*models.ProductDTO, error) {
	product, err := s.products.FindProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	upload, err := s.storage.UploadFile(ctx, file, header, ProductImageUploadOptions)
	if err != nil {
		return nil, err
	}

	thumbnails := append([]string(product.Thumbnails), upload.URL)
	updated, err := s.products.UpdateProduct(ctx, id, store.ProductPatch{Thumbnails: &thumbnails})
	if err != nil {
		if cleanupErr := s.storage.DeleteFile(ctx, upload.Key); cleanupErr != nil {
			s.log.WithError(cleanupErr).WithField("key", upload.Key).Warn("Failed to remove orphan upload")
		}
		return nil, fmt.Errorf("failed to attach thumbnail: %w", notFound(err, ErrProductNotFound))
	}

	dto := models.NewProductDTO(updated)
	publish(ctx, s.events, s.log, EventProductUpdated, dto)
	return &dto, nil
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Invalid []string `json:"invalid,omitempty"`
}

// ImportProducts inserts products whose code is not taken yet. Existing
// codes are skipped, never overwritten.
func (s *ProductService) ImportProducts(ctx context.Context, reqs []CreateProductRequest) (*ImportResult, error) {
	result := &ImportResult{}
	for i := range reqs {
		_, err := s.CreateProduct(ctx, &reqs[i])
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, store.ErrConflict):
			result.Skipped++
		case errors.Is(err, ErrValidation):
			result.Invalid = append(result.Invalid, reqs[i].Code)
		default:
			return result, err
		}
	}
	return result, nil
}
