package routes

import (
	"github.com/HSouheill/shop_backoffice/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterCategoryRoutes sets up category, subcategory and product routes
func RegisterCategoryRoutes(e *echo.Echo, deps Dependencies) {
	categoryController := controllers.NewCategoryController(deps.Store.Categories, deps.Disk, deps.Cache)
	productController := controllers.NewProductController(deps.Store.Products, deps.Disk)

	categories := e.Group("/api/categories")
	categories.POST("", categoryController.CreateCategory)
	categories.GET("", categoryController.GetAllCategories)
	categories.GET("/:id", categoryController.GetCategory)
	categories.PUT("/:id", categoryController.UpdateCategory)
	categories.DELETE("/:id", categoryController.DeleteCategory)

	subcategories := categories.Group("/:categoryId/subcategories")
	subcategories.GET("", categoryController.ListSubcategories)
	subcategories.POST("", categoryController.CreateSubcategory)
	subcategories.GET("/:subCategoryId", categoryController.GetSubcategory)
	subcategories.PUT("/:subCategoryId", categoryController.UpdateSubcategory)
	subcategories.DELETE("/:subCategoryId", categoryController.DeleteSubcategory)

	products := e.Group("/api/products")
	products.POST("", productController.CreateProduct)
	products.GET("", productController.GetAllProducts)
	products.GET("/:id", productController.GetProduct)
	products.PUT("/:id", productController.UpdateProduct)
	products.DELETE("/:id", productController.DeleteProduct)
}
