package routes

import (
	"github.com/HSouheill/shop_backoffice/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterOrderRoutes sets up order, payment, transaction and checkout routes
func RegisterOrderRoutes(e *echo.Echo, deps Dependencies) {
	publisher := deps.publisher()
	orderController := controllers.NewOrderController(deps.Store.Orders, deps.Mailer, publisher)
	paymentController := controllers.NewPaymentController(deps.Store.Payments, deps.Disk, publisher)
	transactionController := controllers.NewTransactionController(deps.Store.Transactions, deps.Gateway, deps.Settings.StripeCurrency, publisher)

	orders := e.Group("/api/orders")
	orders.POST("", orderController.CreateOrder)
	orders.GET("", orderController.GetAllOrders)
	orders.GET("/:id", orderController.GetOrder)
	orders.PUT("/:id", orderController.UpdateOrder)
	orders.DELETE("/:id", orderController.DeleteOrder)

	payments := e.Group("/api/payments")
	payments.POST("", paymentController.CreatePayment)
	payments.GET("", paymentController.GetAllPayments)
	payments.GET("/:id", paymentController.GetPayment)
	payments.PUT("/:id", paymentController.UpdatePayment)
	payments.DELETE("/:id", paymentController.DeletePayment)

	transactions := e.Group("/api/transactions")
	transactions.POST("", transactionController.CreateTransaction)
	transactions.GET("", transactionController.GetAllTransactions)
	transactions.GET("/:id", transactionController.GetTransactionById)
	transactions.PUT("/:id", transactionController.UpdateTransaction)
	transactions.DELETE("/:id", transactionController.DeleteTransaction)

	e.POST("/api/stripe/create-checkout-session", transactionController.CreateCheckoutSession)
}
