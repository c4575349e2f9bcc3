package handler

import (
	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func productResponses(products []model.Product) []model.ProductResponse {
	out := make([]model.ProductResponse, len(products))
	for i := range products {
		out[i] = products[i].ToResponse()
	}
	return out
}

// GetProducts lists the catalog. search, supplier and sort only apply to
// roles allowed to filter; everyone else gets the full list.
// GET /api/v1/products
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	var (
		products []model.Product
		err      error
	)
	if middleware.RoleFrom(c).CanFilterCatalog() {
		products, err = h.service.ListFiltered(c.Query("search"), c.Query("supplier"), c.Query("sort"))
	} else {
		products, err = h.service.ListAll()
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(productResponses(products))
}

// GET /api/v1/products/suppliers
func (h *CatalogHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"all": service.AllSuppliers, "suppliers": suppliers})
}

// GET /api/v1/products/:article
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetByArticle(c.Params("article"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product.ToResponse())
}

// GET /api/v1/products/:article/can-delete
func (h *CatalogHandler) CanDelete(c *fiber.Ctx) error {
	article := c.Params("article")
	if _, err := h.service.GetByArticle(article); err != nil {
		return fail(c, err)
	}

	ok, err := h.service.CanDelete(article)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"article": article, "can_delete": ok})
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.Create(&req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product.ToResponse()})
}

// PUT /api/v1/products/:article
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.Update(c.Params("article"), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated.ToResponse()})
}

// DELETE /api/v1/products/:article
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("article")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// UploadImage replaces the product photo from the multipart field "image"
// POST /api/v1/products/:article/image
func (h *CatalogHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "image file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "cannot read uploaded file"})
	}
	defer src.Close()

	product, err := h.service.SetImage(c.Params("article"), file.Filename, src)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Image updated", "data": product.ToResponse()})
}
