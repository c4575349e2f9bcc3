package repository

import (
	"strings"

	"go-storefront/internal/model"

	"gorm.io/gorm"
)

// ProductSort selects the catalog ordering.
type ProductSort string

const (
	SortNameAsc           ProductSort = "name_asc"
	SortNameDesc          ProductSort = "name_desc"
	SortPriceAsc          ProductSort = "price_asc"
	SortPriceDesc         ProductSort = "price_desc"
	SortStockQuantityAsc  ProductSort = "stock_quantity_asc"
	SortStockQuantityDesc ProductSort = "stock_quantity_desc"
)

// orderBy returns the ORDER BY expression. Unknown keys sort by name.
// Article breaks ties so every ordering is total.
func (s ProductSort) orderBy() string {
	switch s {
	case SortNameDesc:
		return "name DESC, article ASC"
	case SortPriceAsc:
		return "price ASC, article ASC"
	case SortPriceDesc:
		return "price DESC, article ASC"
	case SortStockQuantityAsc:
		return "stock_quantity ASC, article ASC"
	case SortStockQuantityDesc:
		return "stock_quantity DESC, article ASC"
	default:
		return "name ASC, article ASC"
	}
}

// ProductFilter narrows a catalog listing. Empty fields do not filter.
type ProductFilter struct {
	Search   string
	Supplier string
	Sort     ProductSort
}

// every keyword must hit at least one of these columns
const productSearchClause = `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR ` +
	`LOWER(category) LIKE ? ESCAPE '\' OR LOWER(manufacturer) LIKE ? ESCAPE '\' OR ` +
	`LOWER(supplier) LIKE ? ESCAPE '\' OR LOWER(article) LIKE ? ESCAPE '\')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindFiltered(filter ProductFilter) ([]model.Product, error)
	FindByArticle(article string) (*model.Product, error)
	FindSuppliers() ([]string, error)
	Update(article string, changes map[string]interface{}) error
	Delete(article string) error
	CountOrderItems(article string) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("article ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindFiltered(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{})

	for _, keyword := range strings.Fields(filter.Search) {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
		query = query.Where(productSearchClause, pattern, pattern, pattern, pattern, pattern, pattern)
	}

	if filter.Supplier != "" {
		query = query.Where("supplier = ?", filter.Supplier)
	}

	var products []model.Product
	err := query.Order(filter.Sort.orderBy()).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByArticle(article string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "article = ?", article).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindSuppliers returns distinct non-empty supplier names in ascending order
func (r *productRepo) FindSuppliers() ([]string, error) {
	var suppliers []string
	err := r.db.Model(&model.Product{}).
		Where("supplier IS NOT NULL AND supplier <> ''").
		Distinct().
		Order("supplier ASC").
		Pluck("supplier", &suppliers).Error
	return suppliers, err
}

// Update writes only the given columns
func (r *productRepo) Update(article string, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.Model(&model.Product{}).Where("article = ?", article).Updates(changes).Error
}

func (r *productRepo) Delete(article string) error {
	return r.db.Delete(&model.Product{}, "article = ?", article).Error
}

func (r *productRepo) CountOrderItems(article string) (int64, error) {
	var n int64
	err := r.db.Model(&model.OrderItem{}).Where("product_article = ?", article).Count(&n).Error
	return n, err
}
