package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-storefront/pkg/imagestore"
	"go-storefront/pkg/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilteredExample(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	f.addProduct(t, "B", "Blue Shoe", "Acme", 100)
	f.addProduct(t, "C", "Red Hat", "Zeta", 200)

	got, err := f.catalog.ListFiltered("red", "Acme", "price_asc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Article)
}

func TestListFilteredAllSupplierSentinel(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	f.addProduct(t, "C", "Red Hat", "Zeta", 200)

	for _, supplier := range []string{"", "all", "ALL", "Все поставщики"} {
		got, err := f.catalog.ListFiltered("red", supplier, "")
		require.NoError(t, err)
		assert.Len(t, got, 2, "supplier %q", supplier)
	}

	got, err := f.catalog.ListFiltered("", "Zeta", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Article)

	suppliers, err := f.catalog.ListSuppliers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zeta"}, suppliers)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Create(&CreateProductRequest{Article: "", Name: "x"})
	assert.ErrorIs(t, err, validator.ErrValidation)

	_, err = f.catalog.Create(&CreateProductRequest{Article: strings.Repeat("A", 21), Name: "x"})
	assert.ErrorIs(t, err, validator.ErrValidation)

	_, err = f.catalog.Create(&CreateProductRequest{Article: "A1", Name: "   "})
	assert.ErrorIs(t, err, validator.ErrValidation)

	_, err = f.catalog.Create(&CreateProductRequest{Article: "A1", Name: "x", Discount: 101})
	assert.ErrorIs(t, err, validator.ErrValidation)

	_, err = f.catalog.Create(&CreateProductRequest{Article: "A1", Name: "x", StockQuantity: -1})
	assert.ErrorIs(t, err, validator.ErrValidation)

	for _, article := range []string{"X/B", `X\B`, "A?1", "A 1"} {
		_, err = f.catalog.Create(&CreateProductRequest{Article: article, Name: "x", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, validator.ErrValidation, "article %q", article)
	}

	for _, price := range []string{"-1", "0", "100000000"} {
		_, err = f.catalog.Create(&CreateProductRequest{Article: "A1", Name: "x", Price: decimal.RequireFromString(price)})
		assert.ErrorIs(t, err, ErrInvalidPrice, "price %s", price)
	}

	f.addProduct(t, "A1", "Shoe", "Acme", 10)
	_, err = f.catalog.Create(&CreateProductRequest{Article: "A1", Name: "Other", Price: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrArticleExists)

	assert.Equal(t, []string{"product_created"}, f.events.actions())
}

func TestUpdateProductAppliesSuppliedFields(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A1", "Shoe", "Acme", 10)

	name := "Boot"
	discount := 25
	price := decimal.RequireFromString("12.345")
	updated, err := f.catalog.Update("A1", &UpdateProductRequest{Name: &name, Discount: &discount, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Boot", updated.Name)
	assert.Equal(t, "Acme", updated.Supplier)
	assert.Equal(t, 25, updated.Discount)
	assert.Equal(t, "12.35", updated.Price.String())

	bad := -5
	_, err = f.catalog.Update("A1", &UpdateProductRequest{StockQuantity: &bad})
	assert.ErrorIs(t, err, validator.ErrValidation)

	_, err = f.catalog.Update("missing", &UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)

	zero := decimal.Zero
	_, err = f.catalog.Update("A1", &UpdateProductRequest{Price: &zero})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestUpdateImagePathCannotPointAtAnotherProduct(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	f.addProduct(t, "B", "Blue Shoe", "Acme", 100)

	_, err := f.catalog.SetImage("B", "b.png", strings.NewReader("b-photo"))
	require.NoError(t, err)

	for _, path := range []string{"B.png", "../B.png", "other.jpg", "A.txt"} {
		_, err = f.catalog.Update("A", &UpdateProductRequest{ImagePath: &path})
		assert.Error(t, err, "image path %q", path)
	}

	for _, path := range []string{"A.jpg", imagestore.Placeholder, ""} {
		updated, err := f.catalog.Update("A", &UpdateProductRequest{ImagePath: &path})
		require.NoError(t, err, "image path %q", path)
		if path == "" {
			assert.Nil(t, updated.ImagePath)
		} else {
			require.NotNil(t, updated.ImagePath)
			assert.Equal(t, path, *updated.ImagePath)
		}
	}

	require.NoError(t, f.catalog.Delete("A"))
	data, err := os.ReadFile(filepath.Join(f.images.Dir(), "B.png"))
	require.NoError(t, err)
	assert.Equal(t, "b-photo", string(data))
}

func TestImagesOfDistinctArticlesDoNotCollide(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "B", "Blue Shoe", "Acme", 100)
	f.addProduct(t, "XB", "Other Shoe", "Acme", 100)

	b, err := f.catalog.SetImage("B", "b.png", strings.NewReader("b"))
	require.NoError(t, err)
	xb, err := f.catalog.SetImage("XB", "a.png", strings.NewReader("xb"))
	require.NoError(t, err)
	assert.NotEqual(t, *b.ImagePath, *xb.ImagePath)

	_, err = f.catalog.SetImage("X/B", "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, imagestore.ErrInvalidName)
}

func TestCanDeleteFollowsOrderItems(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	order := f.addOrder(t, OrderItemInput{ProductArticle: "A", Quantity: 2})

	ok, err := f.catalog.CanDelete("A")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.orders.ReplaceOrderItems(order.ID, nil)
	require.NoError(t, err)

	ok, err = f.catalog.CanDelete("A")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Red Shoe", "Acme", 300)
	f.addProduct(t, "B", "Blue Shoe", "Acme", 100)
	f.addOrder(t, OrderItemInput{ProductArticle: "A", Quantity: 1})

	err := f.catalog.Delete("A")
	assert.ErrorIs(t, err, ErrProductInOrder)
	_, err = f.catalog.GetByArticle("A")
	assert.NoError(t, err)

	require.NoError(t, f.catalog.Delete("B"))
	_, err = f.catalog.GetByArticle("B")
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, f.catalog.Delete("B"), ErrProductNotFound)
}

func TestSetImageReplacesFile(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A1", "Shoe", "Acme", 10)

	p, err := f.catalog.SetImage("A1", "photo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, p.ImagePath)
	assert.Equal(t, "A1.png", *p.ImagePath)

	pngPath := filepath.Join(f.images.Dir(), "A1.png")
	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	p, err = f.catalog.SetImage("A1", "photo.jpg", strings.NewReader("jpg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "A1.jpg", *p.ImagePath)
	_, err = os.Stat(pngPath)
	assert.True(t, os.IsNotExist(err), "replaced image is removed")

	_, err = f.catalog.SetImage("A1", "script.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, imagestore.ErrUnsupportedImage)

	require.NoError(t, f.catalog.Delete("A1"))
	_, err = os.Stat(filepath.Join(f.images.Dir(), "A1.jpg"))
	assert.True(t, os.IsNotExist(err), "image goes with the product")
}
