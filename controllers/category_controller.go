package controllers

import (
	"net/http"
	"strings"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const categoryImageDir = "categories"

type CategoryController struct {
	Categories repositories.CategoryRepository
	Disk       storage.Disk
	Cache      *services.CategoryCache
}

func NewCategoryController(categories repositories.CategoryRepository, disk storage.Disk, cache *services.CategoryCache) *CategoryController {
	return &CategoryController{Categories: categories, Disk: disk, Cache: cache}
}

// withImageURLs returns a copy of category whose image fields are absolute URLs.
func (cc *CategoryController) withImageURLs(c echo.Context, category models.Category) models.Category {
	category.Image = imageURL(c, cc.Disk, category.Image)
	subs := make([]models.Subcategory, len(category.Subcategories))
	for i, sub := range category.Subcategories {
		sub.Image = imageURL(c, cc.Disk, sub.Image)
		subs[i] = sub
	}
	category.Subcategories = subs
	return category
}

// uploadImage stores the optional "image" form file. It returns "" when no
// file was sent and writes a 400 response on invalid uploads.
func uploadImage(c echo.Context, disk storage.Disk, dir string) (key string, ok bool) {
	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return "", true
	}
	key, err = utils.UploadImage(c.Request().Context(), disk, file, dir)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Image upload failed: "+err.Error())
		return "", false
	}
	return key, true
}

// CreateCategory creates a new category with an optional image
func (cc *CategoryController) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))

	if name == "" || description == "" {
		return jsonError(c, http.StatusBadRequest, "Name and description are required")
	}

	exists, err := cc.Categories.ExistsByName(ctx, name, primitive.NilObjectID)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to create category")
	}
	if exists {
		return jsonError(c, http.StatusConflict, "Category with this name already exists")
	}

	image, ok := uploadImage(c, cc.Disk, categoryImageDir)
	if !ok {
		return nil
	}

	category := models.Category{
		Name:          name,
		Description:   description,
		Image:         image,
		Subcategories: []models.Subcategory{},
	}
	if err := cc.Categories.Create(ctx, &category); err != nil {
		removeFile(c, cc.Disk, image)
		return storeError(c, err, "Category not found", "Failed to create category")
	}
	cc.Cache.Invalidate(ctx)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Category created successfully",
		Data:    category,
	})
}

// GetAllCategories retrieves all categories
func (cc *CategoryController) GetAllCategories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, cached := cc.Cache.Get(ctx)
	if !cached {
		var err error
		categories, err = cc.Categories.FindAll(ctx)
		if err != nil {
			return storeError(c, err, "Categories not found", "Failed to fetch categories")
		}
		cc.Cache.Set(ctx, categories)
	}

	out := make([]models.Category, len(categories))
	for i, category := range categories {
		out[i] = cc.withImageURLs(c, category)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Categories retrieved successfully",
		Data:    out,
	})
}

// GetCategory retrieves a single category
func (cc *CategoryController) GetCategory(c echo.Context) error {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return nil
	}

	category, err := cc.Categories.FindByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to fetch category")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category retrieved successfully",
		Data:    cc.withImageURLs(c, *category),
	})
}

// UpdateCategory replaces any provided field. A new image replaces (and
// deletes) the previous one.
func (cc *CategoryController) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "category")
	if !ok {
		return nil
	}

	existing, err := cc.Categories.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to update category")
	}

	var patch models.CategoryPatch
	if name, sent := formValue(c, "name"); sent {
		name = strings.TrimSpace(name)
		if name == "" {
			return jsonError(c, http.StatusBadRequest, "Name cannot be empty")
		}
		exists, err := cc.Categories.ExistsByName(ctx, name, id)
		if err != nil {
			return storeError(c, err, "Category not found", "Failed to update category")
		}
		if exists {
			return jsonError(c, http.StatusConflict, "Category with this name already exists")
		}
		patch.Name = &name
	}
	if description, sent := formValue(c, "description"); sent {
		description = strings.TrimSpace(description)
		patch.Description = &description
	}

	image, ok := uploadImage(c, cc.Disk, categoryImageDir)
	if !ok {
		return nil
	}
	if image != "" {
		patch.Image = &image
	}

	if patch.Empty() {
		return jsonError(c, http.StatusBadRequest, "No fields to update")
	}

	updated, err := cc.Categories.Update(ctx, id, patch)
	if err != nil {
		removeFile(c, cc.Disk, image)
		return storeError(c, err, "Category not found", "Failed to update category")
	}
	if image != "" {
		removeFile(c, cc.Disk, existing.Image)
	}
	cc.Cache.Invalidate(ctx)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category updated successfully",
		Data:    cc.withImageURLs(c, *updated),
	})
}

// DeleteCategory removes the category and, best-effort, its image files
func (cc *CategoryController) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "category")
	if !ok {
		return nil
	}

	category, err := cc.Categories.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to delete category")
	}
	if err := cc.Categories.Delete(ctx, id); err != nil {
		return storeError(c, err, "Category not found", "Failed to delete category")
	}
	cc.Cache.Invalidate(ctx)

	removeFile(c, cc.Disk, category.Image)
	for _, sub := range category.Subcategories {
		removeFile(c, cc.Disk, sub.Image)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Category deleted successfully",
	})
}

// Subcategories

func (cc *CategoryController) withSubImageURL(c echo.Context, sub models.Subcategory) models.Subcategory {
	sub.Image = imageURL(c, cc.Disk, sub.Image)
	return sub
}

// ListSubcategories returns the subcategories of one category
func (cc *CategoryController) ListSubcategories(c echo.Context) error {
	categoryID, ok := parseID(c, "categoryId", "category")
	if !ok {
		return nil
	}
	category, err := cc.Categories.FindByID(c.Request().Context(), categoryID)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to fetch subcategories")
	}

	subs := make([]models.Subcategory, len(category.Subcategories))
	for i, sub := range category.Subcategories {
		subs[i] = cc.withSubImageURL(c, sub)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subcategories retrieved successfully",
		Data:    subs,
	})
}

// CreateSubcategory appends a subcategory to its parent category
func (cc *CategoryController) CreateSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	categoryID, ok := parseID(c, "categoryId", "category")
	if !ok {
		return nil
	}

	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	if name == "" || description == "" {
		return jsonError(c, http.StatusBadRequest, "Name and description are required")
	}

	if _, err := cc.Categories.FindByID(ctx, categoryID); err != nil {
		return storeError(c, err, "Category not found", "Failed to create subcategory")
	}

	image, ok := uploadImage(c, cc.Disk, categoryImageDir)
	if !ok {
		return nil
	}

	sub := models.Subcategory{Name: name, Description: description, Image: image}
	if err := cc.Categories.AddSubcategory(ctx, categoryID, &sub); err != nil {
		removeFile(c, cc.Disk, image)
		return storeError(c, err, "Category not found", "Failed to create subcategory")
	}
	cc.Cache.Invalidate(ctx)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Subcategory created successfully",
		Data:    sub,
	})
}

// GetSubcategory retrieves one subcategory
func (cc *CategoryController) GetSubcategory(c echo.Context) error {
	categoryID, ok := parseID(c, "categoryId", "category")
	if !ok {
		return nil
	}
	subID, ok := parseID(c, "subCategoryId", "subcategory")
	if !ok {
		return nil
	}

	category, err := cc.Categories.FindByID(c.Request().Context(), categoryID)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to fetch subcategory")
	}
	sub := category.FindSubcategory(subID)
	if sub == nil {
		return jsonError(c, http.StatusNotFound, "Subcategory not found")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subcategory retrieved successfully",
		Data:    cc.withSubImageURL(c, *sub),
	})
}

// UpdateSubcategory replaces any provided field of one subcategory
func (cc *CategoryController) UpdateSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	categoryID, ok := parseID(c, "categoryId", "category")
	if !ok {
		return nil
	}
	subID, ok := parseID(c, "subCategoryId", "subcategory")
	if !ok {
		return nil
	}

	category, err := cc.Categories.FindByID(ctx, categoryID)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to update subcategory")
	}
	existing := category.FindSubcategory(subID)
	if existing == nil {
		return jsonError(c, http.StatusNotFound, "Subcategory not found")
	}

	var patch models.SubcategoryPatch
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
	image, ok := uploadImage(c, cc.Disk, categoryImageDir)
	if !ok {
		return nil
	}
	if image != "" {
		patch.Image = &image
	}
	if patch.Empty() {
		return jsonError(c, http.StatusBadRequest, "No fields to update")
	}

	updated, err := cc.Categories.UpdateSubcategory(ctx, categoryID, subID, patch)
	if err != nil {
		removeFile(c, cc.Disk, image)
		return storeError(c, err, "Subcategory not found", "Failed to update subcategory")
	}
	if image != "" {
		removeFile(c, cc.Disk, existing.Image)
	}
	cc.Cache.Invalidate(ctx)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subcategory updated successfully",
		Data:    cc.withSubImageURL(c, *updated),
	})
}

// DeleteSubcategory removes one subcategory and, best-effort, its image
func (cc *CategoryController) DeleteSubcategory(c echo.Context) error {
	ctx := c.Request().Context()
	categoryID, ok := parseID(c, "categoryId", "category")
	if !ok {
		return nil
	}
	subID, ok := parseID(c, "subCategoryId", "subcategory")
	if !ok {
		return nil
	}

	category, err := cc.Categories.FindByID(ctx, categoryID)
	if err != nil {
		return storeError(c, err, "Category not found", "Failed to delete subcategory")
	}
	existing := category.FindSubcategory(subID)
	if existing == nil {
		return jsonError(c, http.StatusNotFound, "Subcategory not found")
	}

	if err := cc.Categories.RemoveSubcategory(ctx, categoryID, subID); err != nil {
		return storeError(c, err, "Subcategory not found", "Failed to delete subcategory")
	}
	cc.Cache.Invalidate(ctx)
	removeFile(c, cc.Disk, existing.Image)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subcategory deleted successfully",
	})
}
