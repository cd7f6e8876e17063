package routes

import (
	"github.com/HSouheill/shop_backoffice/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterCryptoRoutes sets up the mock crypto payment routes
func RegisterCryptoRoutes(e *echo.Echo, deps Dependencies) {
	if deps.Crypto == nil {
		return
	}
	cryptoController := controllers.NewCryptoController(deps.Crypto, deps.Store.CryptoPayments)

	crypto := e.Group("/api/crypto/payments")
	crypto.POST("", cryptoController.CreatePayment)
	crypto.GET("", cryptoController.GetAllPayments)
	crypto.GET("/:transactionId/status", cryptoController.CheckStatus)
	crypto.GET("/:transactionId/qr", cryptoController.QRCode)
}
