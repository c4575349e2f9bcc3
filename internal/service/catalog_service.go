package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/internal/ws"
	"go-storefront/pkg/imagestore"
	"go-storefront/pkg/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrArticleExists   = errors.New("product with this article already exists")
	ErrProductInOrder  = errors.New("product is present in an order and cannot be deleted")
	ErrInvalidPrice    = errors.New("price must be greater than 0 and at most 99999999.99")
)

// AllSuppliers disables the supplier filter. The legacy client sends the
// Russian label instead.
const (
	AllSuppliers       = "all"
	allSuppliersLegacy = "все поставщики"
)

var maxPrice = decimal.RequireFromString("99999999.99")

type CatalogService interface {
	ListAll() ([]model.Product, error)
	ListFiltered(search, supplier, sort string) ([]model.Product, error)
	ListSuppliers() ([]string, error)
	GetByArticle(article string) (*model.Product, error)
	Create(req *CreateProductRequest) (*model.Product, error)
	Update(article string, req *UpdateProductRequest) (*model.Product, error)
	CanDelete(article string) (bool, error)
	Delete(article string) error
	SetImage(article, uploadedName string, src io.Reader) (*model.Product, error)
}

type CreateProductRequest struct {
	Article       string          `json:"article" validate:"article"`
	Name          string          `json:"name" validate:"required,notblank,max=100"`
	Unit          string          `json:"unit" validate:"max=20"`
	Price         decimal.Decimal `json:"price"`
	Supplier      string          `json:"supplier" validate:"max=100"`
	Manufacturer  string          `json:"manufacturer" validate:"max=100"`
	Category      string          `json:"category" validate:"max=50"`
	Discount      int             `json:"discount" validate:"min=0,max=100"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	Description   string          `json:"description"`
}

// UpdateProductRequest carries only the fields to change
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitnil,notblank,max=100"`
	Unit          *string          `json:"unit" validate:"omitnil,max=20"`
	Price         *decimal.Decimal `json:"price"`
	Supplier      *string          `json:"supplier" validate:"omitnil,max=100"`
	Manufacturer  *string          `json:"manufacturer" validate:"omitnil,max=100"`
	Category      *string          `json:"category" validate:"omitnil,max=50"`
	Discount      *int             `json:"discount" validate:"omitnil,min=0,max=100"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitnil,min=0"`
	Description   *string          `json:"description"`
	ImagePath     *string          `json:"image_path" validate:"omitnil,max=255"`
}

type catalogService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	images      *imagestore.Store
	events      Publisher
}

func NewCatalogService(pRepo repository.ProductRepository, db *gorm.DB, images *imagestore.Store, events Publisher) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		db:          db,
		images:      images,
		events:      publisherOrNop(events),
	}
}

func validPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThanOrEqual(maxPrice)
}

// checkImagePath allows clearing the image, the shared placeholder or the
// article's own file name. Anything else could point at another product's photo.
func checkImagePath(article string, p *string) error {
	if p == nil {
		return nil
	}
	name := strings.TrimSpace(*p)
	if name == "" || name == imagestore.Placeholder {
		return nil
	}
	own, err := imagestore.FileName(article, name)
	if err != nil {
		return err
	}
	if own != name {
		return imagestore.ErrInvalidName
	}
	return nil
}

// isAllSuppliers reports whether the supplier value means "no filter"
func isAllSuppliers(supplier string) bool {
	s := strings.ToLower(strings.TrimSpace(supplier))
	return s == "" || s == AllSuppliers || s == allSuppliersLegacy
}

func (s *catalogService) ListAll() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		log.Printf("catalog: failed to list products: %v", err)
		return nil, err
	}
	return products, nil
}

func (s *catalogService) ListFiltered(search, supplier, sort string) ([]model.Product, error) {
	filter := repository.ProductFilter{
		Search: strings.TrimSpace(search),
		Sort:   repository.ProductSort(strings.ToLower(strings.TrimSpace(sort))),
	}
	if !isAllSuppliers(supplier) {
		filter.Supplier = supplier
	}

	products, err := s.productRepo.FindFiltered(filter)
	if err != nil {
		log.Printf("catalog: failed to filter products: %v", err)
		return nil, err
	}
	return products, nil
}

func (s *catalogService) ListSuppliers() ([]string, error) {
	suppliers, err := s.productRepo.FindSuppliers()
	if err != nil {
		log.Printf("catalog: failed to list suppliers: %v", err)
		return nil, err
	}
	return suppliers, nil
}

func (s *catalogService) GetByArticle(article string) (*model.Product, error) {
	product, err := s.productRepo.FindByArticle(article)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *catalogService) Create(req *CreateProductRequest) (*model.Product, error) {
	// 1. Validasi Struct Dasar
	req.Article = strings.TrimSpace(req.Article)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if !validPrice(req.Price) {
		return nil, ErrInvalidPrice
	}

	product := &model.Product{
		Article:       req.Article,
		Name:          strings.TrimSpace(req.Name),
		Unit:          strings.TrimSpace(req.Unit),
		Price:         req.Price.Round(2),
		Supplier:      strings.TrimSpace(req.Supplier),
		Manufacturer:  strings.TrimSpace(req.Manufacturer),
		Category:      strings.TrimSpace(req.Category),
		Discount:      req.Discount,
		StockQuantity: req.StockQuantity,
		Description:   strings.TrimSpace(req.Description),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		// 2. Cek Duplikasi Article
		if _, err := products.FindByArticle(product.Article); err == nil {
			return ErrArticleExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 3. Simpan ke Database
		if err := products.Create(product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrArticleExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrArticleExists) {
			log.Printf("catalog: failed to create product %q: %v", product.Article, err)
		}
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.TypeCatalogUpdate,
		Action:  "product_created",
		Data:    product.ToResponse(),
		Message: fmt.Sprintf("product '%s' created", product.Name),
	})
	return product, nil
}

// changes builds the column map for the supplied fields
func (req *UpdateProductRequest) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			changes[column] = strings.TrimSpace(*v)
		}
	}
	setString("name", req.Name)
	setString("unit", req.Unit)
	setString("supplier", req.Supplier)
	setString("manufacturer", req.Manufacturer)
	setString("category", req.Category)
	setString("description", req.Description)
	if req.Price != nil {
		changes["price"] = req.Price.Round(2)
	}
	if req.Discount != nil {
		changes["discount"] = *req.Discount
	}
	if req.StockQuantity != nil {
		changes["stock_quantity"] = *req.StockQuantity
	}
	if req.ImagePath != nil {
		if p := strings.TrimSpace(*req.ImagePath); p != "" {
			changes["image_path"] = p
		} else {
			changes["image_path"] = nil
		}
	}
	return changes
}

func (s *catalogService) Update(article string, req *UpdateProductRequest) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Price != nil && !validPrice(*req.Price) {
		return nil, ErrInvalidPrice
	}
	if err := checkImagePath(article, req.ImagePath); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		if _, err := products.FindByArticle(article); err != nil {
			return notFound(err, ErrProductNotFound)
		}
		if err := products.Update(article, req.changes()); err != nil {
			return err
		}

		product, err := products.FindByArticle(article)
		if err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			log.Printf("catalog: failed to update product %q: %v", article, err)
		}
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.TypeCatalogUpdate,
		Action:  "product_updated",
		Data:    updated.ToResponse(),
		Message: fmt.Sprintf("product '%s' updated", updated.Name),
	})
	return updated, nil
}

// CanDelete reports whether no order line references article
func (s *catalogService) CanDelete(article string) (bool, error) {
	n, err := s.productRepo.CountOrderItems(article)
	if err != nil {
		log.Printf("catalog: failed to check references of %q: %v", article, err)
		return false, err
	}
	return n == 0, nil
}

func (s *catalogService) Delete(article string) error {
	var imageName string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		product, err := products.FindByArticle(article)
		if err != nil {
			return notFound(err, ErrProductNotFound)
		}

		n, err := products.CountOrderItems(article)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrProductInOrder
		}

		if product.ImagePath != nil {
			imageName = *product.ImagePath
		}
		if err := products.Delete(article); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrProductInOrder
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) && !errors.Is(err, ErrProductInOrder) {
			log.Printf("catalog: failed to delete product %q: %v", article, err)
		}
		return err
	}

	if s.images != nil {
		if err := s.images.Remove(imageName); err != nil {
			log.Printf("catalog: product %q deleted but image %q was not removed: %v", article, imageName, err)
		}
	}

	s.events.Publish(ws.Event{
		Type:    ws.TypeCatalogUpdate,
		Action:  "product_deleted",
		Data:    map[string]string{"article": article},
		Message: fmt.Sprintf("product '%s' deleted", article),
	})
	return nil
}

// SetImage stores an uploaded photo as "{article}{ext}" and points the
// product at it. A previous file under another name is removed.
func (s *catalogService) SetImage(article, uploadedName string, src io.Reader) (*model.Product, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	name, err := imagestore.FileName(article, uploadedName)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByArticle(article)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	oldName := ""
	if product.ImagePath != nil {
		oldName = *product.ImagePath
	}

	saved, err := s.images.Save(name, src)
	if err != nil {
		log.Printf("catalog: failed to store image for %q: %v", article, err)
		return nil, err
	}

	if err := s.productRepo.Update(article, map[string]interface{}{"image_path": saved}); err != nil {
		if saved != oldName {
			_ = s.images.Remove(saved)
		}
		return nil, err
	}
	if oldName != "" && oldName != saved {
		if err := s.images.Remove(oldName); err != nil {
			log.Printf("catalog: failed to remove replaced image %q: %v", oldName, err)
		}
	}

	product.ImagePath = &saved
	s.events.Publish(ws.Event{
		Type:    ws.TypeCatalogUpdate,
		Action:  "product_updated",
		Data:    product.ToResponse(),
		Message: fmt.Sprintf("image of '%s' updated", product.Name),
	})
	return product, nil
}
