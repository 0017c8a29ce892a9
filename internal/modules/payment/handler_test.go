package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fundi/internal/domain"
	"fundi/internal/mpesa"
	"fundi/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// stubGateway accepts every charge with fixed correlation ids.
type stubGateway struct {
	initiated int
}

func (g *stubGateway) InitiateCharge(ctx context.Context, phone string, amount decimal.Decimal, reference, description, callbackURL string) (*mpesa.ChargeAccepted, error) {
	g.initiated++
	return &mpesa.ChargeAccepted{
		MerchantRequestID: "mr_001",
		CheckoutRequestID: "ws_001",
		CustomerMessage:   "Success. Request accepted for processing",
	}, nil
}

func (g *stubGateway) QueryChargeStatus(ctx context.Context, checkoutRequestID string) (*mpesa.ChargeStatus, error) {
	return &mpesa.ChargeStatus{ResultCode: "0", ResultDesc: "The service request is processed successfully."}, nil
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	payments *repository.PaymentRepository
	bookings *repository.BookingRepository
	gateway  *stubGateway
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:payment_handler_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Service{}, &domain.Fundi{}, &domain.Booking{}, &domain.Payment{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	payments := repository.NewPaymentRepository(db)
	bookings := repository.NewBookingRepository(db)
	gateway := &stubGateway{}
	svc := NewService(payments, bookings, bookings, gateway, "https://api.fundi.example/payments/mpesa/callback", nil)
	h := NewHandler(svc, nil)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User-ID"); userID != "" {
			c.Set("user_id", int64(7))
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterProtectedRoutes(v1)
	return &testEnv{router: r, db: db, payments: payments, bookings: bookings, gateway: gateway}
}

func (e *testEnv) seedBooking(t *testing.T) *domain.Booking {
	t.Helper()
	// ID 7 matches the user_id the test auth middleware injects.
	customer := &domain.User{ID: 7, Email: "customer@test.local", PasswordHash: "x", Name: "Customer", Role: domain.RoleCustomer}
	fundiUser := &domain.User{Email: "fundi@test.local", PasswordHash: "x", Name: "Fundi", Role: domain.RoleFundi}
	if err := e.db.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := e.db.Create(fundiUser).Error; err != nil {
		t.Fatalf("seed fundi user: %v", err)
	}
	svc := &domain.Service{Name: "Pipe repair", Category: domain.CategoryPlumber}
	if err := e.db.Create(svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	f := &domain.Fundi{UserID: fundiUser.ID, Category: domain.CategoryPlumber, HourlyRate: decimal.NewFromInt(500), IsAvailable: true}
	if err := e.db.Create(f).Error; err != nil {
		t.Fatalf("seed fundi: %v", err)
	}
	b := &domain.Booking{
		CustomerID:     customer.ID,
		FundiID:        f.ID,
		ServiceID:      svc.ID,
		Status:         domain.BookingInProgress,
		BookingDate:    time.Now().Add(24 * time.Hour),
		EstimatedHours: 3,
		HourlyRate:     decimal.NewFromInt(500),
	}
	if err := e.db.Create(b).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func doJSON(r http.Handler, method, path string, body any, authorized bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("X-Test-User-ID", "7")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doRaw(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func successCallbackJSON(checkoutID, receipt string) string {
	return fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "mr_001",
				"CheckoutRequestID": "%s",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 1500.00},
						{"Name": "MpesaReceiptNumber", "Value": "%s"},
						{"Name": "TransactionDate", "Value": 20260301120000},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`, checkoutID, receipt)
}

func TestMpesaCallback_MalformedJSON(t *testing.T) {
	env := setupTestEnv(t)

	rr := doRaw(env.router, http.MethodPost, "/api/v1/payments/mpesa/callback", "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var ack Ack
	if err := json.Unmarshal(rr.Body.Bytes(), &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if ack.ResultCode != 1 {
		t.Fatalf("expected negative ack, got %+v", ack)
	}
}

func TestMpesaCallback_UnknownPayment(t *testing.T) {
	env := setupTestEnv(t)

	rr := doRaw(env.router, http.MethodPost, "/api/v1/payments/mpesa/callback", successCallbackJSON("ws_missing", "ABC123"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var ack Ack
	if err := json.Unmarshal(rr.Body.Bytes(), &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if ack.ResultCode != 1 || ack.ResultDesc != "Payment not found" {
		t.Fatalf("unexpected ack: %+v", ack)
	}
}

func TestMpesaCallback_SuccessCompletesPaymentAndBooking(t *testing.T) {
	env := setupTestEnv(t)
	b := env.seedBooking(t)

	rr := doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{
		BookingID: b.ID,
		Method:    "mobile_money",
		Phone:     "0712345678",
	}, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create payment: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRaw(env.router, http.MethodPost, "/api/v1/payments/mpesa/callback", successCallbackJSON("ws_001", "ABC123XYZ"))
	if rr.Code != http.StatusOK {
		t.Fatalf("callback: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	p, err := env.payments.GetByCheckoutRequestID(context.Background(), "ws_001")
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if p.Status != domain.PaymentCompleted {
		t.Fatalf("expected completed payment, got %s", p.Status)
	}
	if p.TransactionID != "ABC123XYZ" {
		t.Fatalf("expected receipt as transaction id, got %q", p.TransactionID)
	}
	if p.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if p.CallbackRawBody == "" {
		t.Fatal("expected raw callback body to be stored")
	}

	got, err := env.bookings.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if got.Status != domain.BookingCompleted {
		t.Fatalf("expected completed booking, got %s", got.Status)
	}
}

func TestMpesaCallback_DuplicateDeliveryIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	b := env.seedBooking(t)

	doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{
		BookingID: b.ID, Method: "mobile_money", Phone: "0712345678",
	}, true)

	body := successCallbackJSON("ws_001", "ABC123XYZ")
	first := doRaw(env.router, http.MethodPost, "/api/v1/payments/mpesa/callback", body)
	second := doRaw(env.router, http.MethodPost, "/api/v1/payments/mpesa/callback", body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", first.Code, second.Code)
	}

	p, err := env.payments.GetByCheckoutRequestID(context.Background(), "ws_001")
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if p.Status != domain.PaymentCompleted || p.TransactionID != "ABC123XYZ" {
		t.Fatalf("duplicate delivery corrupted payment: %+v", p)
	}
}

func TestMpesaCallback_FailureMarksPaymentFailed(t *testing.T) {
	env := setupTestEnv(t)
	b := env.seedBooking(t)

	doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{
		BookingID: b.ID, Method: "mobile_money", Phone: "0712345678",
	}, true)

	failure := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "mr_001",
				"CheckoutRequestID": "ws_001",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`
	rr := doRaw(env.router, http.MethodPost, "/api/v1/payments/mpesa/callback", failure)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	p, err := env.payments.GetByCheckoutRequestID(context.Background(), "ws_001")
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if p.Status != domain.PaymentFailed {
		t.Fatalf("expected failed payment, got %s", p.Status)
	}
	if p.FailureReason != "Request cancelled by user" {
		t.Fatalf("unexpected failure reason: %q", p.FailureReason)
	}

	got, err := env.bookings.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if got.Status != domain.BookingInProgress {
		t.Fatalf("failed charge must not move the booking, got %s", got.Status)
	}
}

func TestMpesaCallback_GetMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/mpesa/callback", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCreatePayment_CashEndToEnd(t *testing.T) {
	env := setupTestEnv(t)
	b := env.seedBooking(t)

	rr := doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{
		BookingID: b.ID, Method: "cash",
	}, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	p, err := env.payments.FindByBookingID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if p == nil || p.Status != domain.PaymentCompleted || p.Method != domain.MethodCash {
		t.Fatalf("unexpected payment: %+v", p)
	}

	got, _ := env.bookings.GetByID(context.Background(), b.ID)
	if got.Status != domain.BookingCompleted {
		t.Fatalf("cash payment must complete the booking, got %s", got.Status)
	}
}

func TestCreatePayment_SecondAttemptConflicts(t *testing.T) {
	env := setupTestEnv(t)
	b := env.seedBooking(t)

	first := doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{BookingID: b.ID, Method: "cash"}, true)
	second := doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{BookingID: b.ID, Method: "cash"}, true)
	if first.Code != http.StatusCreated {
		t.Fatalf("first: expected 201, got %d", first.Code)
	}
	if second.Code != http.StatusConflict {
		t.Fatalf("second: expected 409, got %d body=%s", second.Code, second.Body.String())
	}
}

func TestCreatePayment_UnknownBooking404(t *testing.T) {
	env := setupTestEnv(t)

	rr := doJSON(env.router, http.MethodPost, "/api/v1/payments", CreatePaymentRequest{BookingID: 9999, Method: "cash"}, true)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
