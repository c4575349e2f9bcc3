package repository

import (
	"testing"

	"go-storefront/internal/model"
	"go-storefront/internal/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProducts(t *testing.T, db *gorm.DB) ProductRepository {
	t.Helper()
	repo := NewProductRepo(db)
	products := []model.Product{
		{Article: "A", Name: "Red Shoe", Supplier: "Acme", Category: "Shoes", Price: decimal.NewFromInt(300), StockQuantity: 5},
		{Article: "B", Name: "Blue Shoe", Supplier: "Acme", Category: "Shoes", Price: decimal.NewFromInt(100), StockQuantity: 0},
		{Article: "C", Name: "Red Hat", Supplier: "Zeta", Category: "Hats", Price: decimal.NewFromInt(100), StockQuantity: 9},
		{Article: "D", Name: "Sale 50%_off", Supplier: "", Description: "clearance", Price: decimal.NewFromInt(50), StockQuantity: 1},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}
	return repo
}

func articles(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Article
	}
	return out
}

func TestFindFilteredExample(t *testing.T) {
	repo := seedProducts(t, testdb.New(t))

	got, err := repo.FindFiltered(ProductFilter{Search: "red", Supplier: "Acme", Sort: SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, articles(got))
}

func TestFindFilteredKeywordsAreANDed(t *testing.T) {
	repo := seedProducts(t, testdb.New(t))

	got, err := repo.FindFiltered(ProductFilter{Search: "RED shoe"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, articles(got))

	got, err = repo.FindFiltered(ProductFilter{Search: "hats"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, articles(got), "category is searchable")

	got, err = repo.FindFiltered(ProductFilter{Search: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, articles(got), "article is searchable")
}

func TestFindFilteredEscapesWildcards(t *testing.T) {
	repo := seedProducts(t, testdb.New(t))

	got, err := repo.FindFiltered(ProductFilter{Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, articles(got))

	got, err = repo.FindFiltered(ProductFilter{Search: "_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, articles(got))
}

func TestFindFilteredSortTieBreaksOnArticle(t *testing.T) {
	repo := seedProducts(t, testdb.New(t))

	cases := []struct {
		sort ProductSort
		want []string
	}{
		{SortNameAsc, []string{"B", "C", "A", "D"}},
		{SortNameDesc, []string{"D", "A", "C", "B"}},
		{SortPriceAsc, []string{"D", "B", "C", "A"}},
		{SortPriceDesc, []string{"A", "B", "C", "D"}},
		{SortStockQuantityAsc, []string{"B", "D", "A", "C"}},
		{SortStockQuantityDesc, []string{"C", "A", "D", "B"}},
		{ProductSort("bogus"), []string{"B", "C", "A", "D"}},
	}
	for _, tc := range cases {
		got, err := repo.FindFiltered(ProductFilter{Sort: tc.sort})
		require.NoError(t, err)
		assert.Equal(t, tc.want, articles(got), "sort %s", tc.sort)
	}
}

func TestFindSuppliers(t *testing.T) {
	repo := seedProducts(t, testdb.New(t))

	suppliers, err := repo.FindSuppliers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zeta"}, suppliers)
}

func TestProductUpdateAndCountOrderItems(t *testing.T) {
	db := testdb.New(t)
	repo := seedProducts(t, db)

	require.NoError(t, repo.Update("A", map[string]interface{}{"stock_quantity": 0, "name": "Red Boot"}))
	p, err := repo.FindByArticle("A")
	require.NoError(t, err)
	assert.Equal(t, "Red Boot", p.Name)
	assert.Equal(t, 0, p.StockQuantity)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(300)))

	n, err := repo.CountOrderItems("A")
	require.NoError(t, err)
	assert.Zero(t, n)

	order := model.Order{Status: model.StatusNew}
	require.NoError(t, NewOrderRepo(db).Create(&order))
	require.NoError(t, NewOrderItemRepo(db).CreateBatch([]model.OrderItem{{OrderID: order.ID, ProductArticle: "A", Quantity: 2}}))

	n, err = repo.CountOrderItems("A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
