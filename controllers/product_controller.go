package controllers

import (
	"net/http"
	"strings"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/labstack/echo/v4"
)

const productImageDir = "products"

type ProductController struct {
	Products repositories.ProductRepository
	Disk     storage.Disk
}

func NewProductController(products repositories.ProductRepository, disk storage.Disk) *ProductController {
	return &ProductController{Products: products, Disk: disk}
}

func (pc *ProductController) withImageURL(c echo.Context, product models.Product) models.Product {
	product.Image = imageURL(c, pc.Disk, product.Image)
	return product
}

// CreateProduct creates a product from a multipart form
func (pc *ProductController) CreateProduct(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	if name == "" || description == "" {
		return jsonError(c, http.StatusBadRequest, "Name and description are required")
	}

	rawPrice := strings.TrimSpace(c.FormValue("price"))
	if rawPrice == "" {
		return jsonError(c, http.StatusBadRequest, "Price is required")
	}
	price, err := utils.ParsePrice(rawPrice)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid price: "+err.Error())
	}

	image, ok := uploadImage(c, pc.Disk, productImageDir)
	if !ok {
		return nil
	}

	product := models.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Image:       image,
	}
	if err := pc.Products.Create(c.Request().Context(), &product); err != nil {
		removeFile(c, pc.Disk, image)
		return storeError(c, err, "Product not found", "Failed to create product")
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Product created successfully",
		Data:    product,
	})
}

// GetAllProducts retrieves all products
func (pc *ProductController) GetAllProducts(c echo.Context) error {
	products, err := pc.Products.FindAll(c.Request().Context())
	if err != nil {
		return storeError(c, err, "Products not found", "Failed to fetch products")
	}

	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = pc.withImageURL(c, p)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Products retrieved successfully",
		Data:    out,
	})
}

func (pc *ProductController) GetProduct(c echo.Context) error {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	product, err := pc.Products.FindByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err, "Product not found", "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product retrieved successfully",
		Data:    pc.withImageURL(c, *product),
	})
}

// UpdateProduct replaces any provided field
func (pc *ProductController) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	existing, err := pc.Products.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Product not found", "Failed to update product")
	}

	var patch models.ProductPatch
	if name, sent := formValue(c, "name"); sent {
		name = strings.TrimSpace(name)
		if name == "" {
			return jsonError(c, http.StatusBadRequest, "Name cannot be empty")
		}
		patch.Name = &name
	}
	if description, sent := formValue(c, "description"); sent {
		description = strings.TrimSpace(description)
		patch.Description = &description
	}
	if raw, sent := formValue(c, "price"); sent {
		if strings.TrimSpace(raw) == "" {
			return jsonError(c, http.StatusBadRequest, "Price cannot be empty")
		}
		price, err := utils.ParsePrice(raw)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "Invalid price: "+err.Error())
		}
		patch.Price = &price
	}

	image, ok := uploadImage(c, pc.Disk, productImageDir)
	if !ok {
		return nil
	}
	if image != "" {
		patch.Image = &image
	}
	if patch.Empty() {
		return jsonError(c, http.StatusBadRequest, "No fields to update")
	}

	updated, err := pc.Products.Update(ctx, id, patch)
	if err != nil {
		removeFile(c, pc.Disk, image)
		return storeError(c, err, "Product not found", "Failed to update product")
	}
	if image != "" {
		removeFile(c, pc.Disk, existing.Image)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product updated successfully",
		Data:    pc.withImageURL(c, *updated),
	})
}

func (pc *ProductController) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "product")
	if !ok {
		return nil
	}
	product, err := pc.Products.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Product not found", "Failed to delete product")
	}
	if err := pc.Products.Delete(ctx, id); err != nil {
		return storeError(c, err, "Product not found", "Failed to delete product")
	}
	removeFile(c, pc.Disk, product.Image)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product deleted successfully",
	})
}
