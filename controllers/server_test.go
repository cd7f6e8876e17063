package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HSouheill/shop_backoffice/config"
	"github.com/HSouheill/shop_backoffice/models"
	"github.com/HSouheill/shop_backoffice/repositories"
	"github.com/HSouheill/shop_backoffice/routes"
	"github.com/HSouheill/shop_backoffice/services"
	"github.com/HSouheill/shop_backoffice/storage"
)

const (
	testAdminEmail    = "admin@shop.test"
	testAdminPassword = "correct horse"
	testJWTSecret     = "test-secret"
)

type fakeGateway struct {
	mu        sync.Mutex
	amounts   []int64
	failNext  bool
	failGet   bool
	intent    services.PaymentIntent
	lookups   int
	sessionID string
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount int64, _ string, _ map[string]string) (*services.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNext {
		g.failNext = false
		return nil, errors.New("card network down")
	}
	g.amounts = append(g.amounts, amount)
	return &services.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: models.PaymentStatusRequiresPaymentMethod}, nil
}

func (g *fakeGateway) GetPaymentIntent(_ context.Context, id string) (*services.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups++
	if g.failGet {
		return nil, errors.New("gateway timeout")
	}
	intent := g.intent
	intent.ID = id
	return &intent, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, items []models.CartItem) (*services.CheckoutSession, error) {
	if len(items) == 0 {
		return nil, errors.New("no items")
	}
	return &services.CheckoutSession{ID: g.sessionID}, nil
}

type testServer struct {
	e       *echo.Echo
	store   *repositories.Store
	disk    *storage.LocalDisk
	gateway *fakeGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := repositories.NewMemoryStore()
	disk := storage.NewLocalDisk(t.TempDir(), "/uploads")
	gateway := &fakeGateway{sessionID: "cs_test_123"}

	e := routes.NewServer(routes.Dependencies{
		Settings: config.Settings{
			Env:               "test",
			StripeCurrency:    "usd",
			JWTSecret:         testJWTSecret,
			AdminEmail:        testAdminEmail,
			AdminPasswordHash: string(hash),
		},
		Store:   store,
		Disk:    disk,
		Cache:   services.NewCategoryCache(nil),
		Gateway: gateway,
		Crypto:  services.NewMockCryptoProvider(store.CryptoPayments),
		Mailer:  services.NewMailer(services.SMTPConfig{}),
	})
	return &testServer{e: e, store: store, disk: disk, gateway: gateway}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) json(t *testing.T, method, target string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return s.do(t, req)
}

type upload struct {
	field    string
	filename string
	content  []byte
}

func (s *testServer) form(t *testing.T, method, target string, fields map[string]string, file *upload) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return s.do(t, req)
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func httptestGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func repositoriesAll() repositories.ListOptions {
	return repositories.ListOptions{}
}

func servicesIntent(brand, last4, status string) services.PaymentIntent {
	return services.PaymentIntent{
		Status:     status,
		Card:       &models.CardDetails{Brand: brand, Last4: last4},
		ReceiptURL: "https://pay.example/receipt",
	}
}
