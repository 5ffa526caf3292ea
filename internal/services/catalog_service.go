package services

import (
	"database/sql"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"

	"expressbuy/internal/domain"
	applog "expressbuy/internal/log"
	"expressbuy/internal/repos"
	"expressbuy/internal/storage"
	"expressbuy/internal/validate"
)

// ImageStore persists product images; storage.Disk is the production implementation.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (domain.Image, error)
	Delete(key string) error
}

type CatalogService struct {
	Cats   *repos.CategoryRepo
	Prods  *repos.ProductRepo
	Images ImageStore
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, images ImageStore) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Images: images}
}

func (s *CatalogService) CreateCategory(name string) (*domain.Category, error) {
	name, ok := validate.Title(name, 50)
	if !ok {
		return nil, invalid("Category name is required and must be at most 50 characters")
	}
	_, err := s.Cats.ByName(name)
	switch {
	case err == nil:
		return nil, conflict("Category already exists")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	c := &domain.Category{ID: uuid.NewString(), Name: name, ProductIDs: []string{}}
	if err := s.Cats.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) GetCategory(id string) (*domain.Category, error) {
	c, err := s.Cats.Get(id)
	if err != nil {
		return nil, missing(err, "Category not found")
	}
	return c, nil
}

// DeleteCategory removes the category only; its products stay in the catalog.
func (s *CatalogService) DeleteCategory(id string) error {
	ok, err := s.Cats.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Category not found")
	}
	return nil
}

// ProductInput is a product create request after form decoding.
type ProductInput struct {
	CategoryID  string
	Description string
	Price       string
	Image       *multipart.FileHeader
}

func (s *CatalogService) CreateProduct(in ProductInput) (*domain.Product, error) {
	cat, err := s.Cats.Get(in.CategoryID)
	if err != nil {
		return nil, missing(err, "Category not found")
	}
	desc, ok := validate.Title(in.Description, 500)
	if !ok {
		return nil, invalid("Description is required and must be at most 500 characters")
	}
	price, ok := validate.Price(in.Price)
	if !ok {
		return nil, invalid("Price must be a positive amount")
	}
	if in.Image == nil {
		return nil, invalid("Product image is required")
	}
	img, err := s.Images.Save(in.Image)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return nil, invalid("Product image must be a JPEG, PNG, GIF or WebP under 5MB")
		}
		return nil, err
	}

	p := &domain.Product{
		ID:           uuid.NewString(),
		Description:  desc,
		Price:        price,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Image:        img,
	}
	if err := s.Prods.CreateInCategory(p); err != nil {
		s.dropImage(img.Key)
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListProducts() ([]domain.Product, error) {
	return s.Prods.List()
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if err != nil {
		return p, missing(err, "Product not found")
	}
	return p, nil
}

// DeleteProduct unlinks the product from categoryID and deletes it. categoryID must be
// the product's own category. The stored image is removed afterwards; a failure there
// is logged and does not fail the request.
func (s *CatalogService) DeleteProduct(productID, categoryID string) error {
	if _, err := s.Cats.Get(categoryID); err != nil {
		return missing(err, "Category not found")
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return missing(err, "Product not found")
	}
	if p.CategoryID != categoryID {
		return notFound("Product not found in category")
	}
	ok, err := s.Prods.Delete(productID, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Product not found")
	}
	s.dropImage(p.Image.Key)
	return nil
}

func (s *CatalogService) dropImage(key string) {
	if key == "" {
		return
	}
	if err := s.Images.Delete(key); err != nil {
		applog.Error(nil, "product.image.delete.fail", err, map[string]any{"key": key})
	}
}
