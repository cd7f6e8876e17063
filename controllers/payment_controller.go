package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/storage"
	"github.com/HSouheill/shop_backoffice/utils"
	"github.com/HSouheill/shop_backoffice/websocket"
	"github.com/labstack/echo/v4"
)

const paymentProofDir = "payments"

type PaymentController struct {
	Payments  repositories.PaymentRepository
	Disk      storage.Disk
	Publisher EventPublisher
}

func NewPaymentController(payments repositories.PaymentRepository, disk storage.Disk, publisher EventPublisher) *PaymentController {
	return &PaymentController{Payments: payments, Disk: disk, Publisher: publisherOrNoop(publisher)}
}

// postedForm returns the request body fields only. Query parameters are left
// out so they never end up in a stored payment.
func postedForm(c echo.Context) (url.Values, error) {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return url.Values(form.Value), nil
	}
	if err := req.ParseForm(); err != nil {
		return nil, err
	}
	return req.PostForm, nil
}

// paymentForm maps the known form fields onto a patch. Anything else posted
// lands in Extra.
func paymentForm(params url.Values) models.PaymentPatch {
	var patch models.PaymentPatch
	for name, values := range params {
		if len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0])
		switch name {
		case "orderId", "paymentProof":
		case "paymentMethod":
			patch.PaymentMethod = stringPtr(value)
		case "mobileNumber":
			patch.MobileNumber = stringPtr(value)
		case "accountName":
			patch.AccountName = stringPtr(value)
		case "accountNumber":
			patch.AccountNumber = stringPtr(value)
		case "bankName":
			patch.BankName = stringPtr(value)
		case "cnic":
			patch.CNIC = stringPtr(value)
		case "transactionRef":
			patch.TransactionRef = stringPtr(value)
		case "status":
			patch.Status = stringPtr(value)
		default:
			if patch.Extra == nil {
				patch.Extra = make(map[string]string)
			}
			patch.Extra[name] = value
		}
	}
	return patch
}

// uploadProof stores the optional "paymentProof" file, writing a 400 on
// invalid uploads.
func (pc *PaymentController) uploadProof(c echo.Context) (string, bool) {
	file, err := c.FormFile("paymentProof")
	if err != nil || file == nil {
		return "", true
	}
	key, err := utils.UploadImage(c.Request().Context(), pc.Disk, file, paymentProofDir)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Payment proof upload failed: "+err.Error())
		return "", false
	}
	return key, true
}

func (pc *PaymentController) withProofURL(c echo.Context, payment models.Payment) models.Payment {
	payment.PaymentProof = imageURL(c, pc.Disk, payment.PaymentProof)
	return payment
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreatePayment records the payment details submitted for an order
func (pc *PaymentController) CreatePayment(c echo.Context) error {
	params, err := postedForm(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid form data")
	}
	orderID := strings.TrimSpace(params.Get("orderId"))
	if orderID == "" {
		return jsonError(c, http.StatusBadRequest, "Order ID is required")
	}
	fields := paymentForm(params)
	proof, ok := pc.uploadProof(c)
	if !ok {
		return nil
	}

	payment := models.Payment{
		OrderID:        orderID,
		PaymentMethod:  deref(fields.PaymentMethod),
		MobileNumber:   deref(fields.MobileNumber),
		AccountName:    deref(fields.AccountName),
		AccountNumber:  deref(fields.AccountNumber),
		BankName:       deref(fields.BankName),
		CNIC:           deref(fields.CNIC),
		TransactionRef: deref(fields.TransactionRef),
		PaymentProof:   proof,
		Status:         deref(fields.Status),
		Extra:          fields.Extra,
	}
	if err := pc.Payments.Create(c.Request().Context(), &payment); err != nil {
		removeFile(c, pc.Disk, proof)
		return storeError(c, err, "Payment not found", "Failed to create payment")
	}
	pc.Publisher.Publish(websocket.EventPaymentCreated, payment)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payment created successfully",
		Data:    pc.withProofURL(c, payment),
	})
}

// GetAllPayments lists payments, optionally for a single order
func (pc *PaymentController) GetAllPayments(c echo.Context) error {
	payments, err := pc.Payments.FindAll(c.Request().Context(), strings.TrimSpace(c.QueryParam("orderId")))
	if err != nil {
		return storeError(c, err, "Payments not found", "Failed to fetch payments")
	}
	out := make([]models.Payment, len(payments))
	for i, p := range payments {
		out[i] = pc.withProofURL(c, p)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    out,
	})
}

func (pc *PaymentController) GetPayment(c echo.Context) error {
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return nil
	}
	payment, err := pc.Payments.FindByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err, "Payment not found", "Failed to fetch payment")
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment retrieved successfully",
		Data:    pc.withProofURL(c, *payment),
	})
}

// UpdatePayment replaces any posted field. A new proof replaces the old file.
func (pc *PaymentController) UpdatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return nil
	}
	existing, err := pc.Payments.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Payment not found", "Failed to update payment")
	}

	params, err := postedForm(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid form data")
	}
	patch := paymentForm(params)
	proof, ok := pc.uploadProof(c)
	if !ok {
		return nil
	}
	if proof != "" {
		patch.PaymentProof = &proof
	}
	if patch.Empty() {
		return jsonError(c, http.StatusBadRequest, "No fields to update")
	}

	updated, err := pc.Payments.Update(ctx, id, patch)
	if err != nil {
		removeFile(c, pc.Disk, proof)
		return storeError(c, err, "Payment not found", "Failed to update payment")
	}
	if proof != "" {
		removeFile(c, pc.Disk, existing.PaymentProof)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment updated successfully",
		Data:    pc.withProofURL(c, *updated),
	})
}

func (pc *PaymentController) DeletePayment(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return nil
	}
	payment, err := pc.Payments.FindByID(ctx, id)
	if err != nil {
		return storeError(c, err, "Payment not found", "Failed to delete payment")
	}
	if err := pc.Payments.Delete(ctx, id); err != nil {
		return storeError(c, err, "Payment not found", "Failed to delete payment")
	}
	removeFile(c, pc.Disk, payment.PaymentProof)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment deleted successfully",
	})
}
