package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fakeDaraja(t *testing.T, pushStatus int, pushBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok_123", "expires_in": "3599"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(pushStatus)
		w.Write([]byte(pushBody))
	})
	mux.HandleFunc("/mpesa/stkpushquery/v1/query", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ResponseCode":"0","ResultCode":"0","ResultDesc":"The service request is processed successfully."}`))
	})
	return httptest.NewServer(mux)
}

func testClient(baseURL string) *Client {
	c := NewClient(Config{
		BaseURL:        baseURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		Timeout:        5 * time.Second,
	})
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestInitiateCharge_Accepted(t *testing.T) {
	srv := fakeDaraja(t, http.StatusOK, `{
		"MerchantRequestID":"mr_001",
		"CheckoutRequestID":"ws_001",
		"ResponseCode":"0",
		"ResponseDescription":"Success. Request accepted for processing",
		"CustomerMessage":"Success. Request accepted for processing"
	}`)
	defer srv.Close()

	c := testClient(srv.URL)
	accepted, err := c.InitiateCharge(context.Background(), "254712345678", decimal.NewFromInt(1500), "BOOKING_42", "Pipe repair", "https://api.fundi.example/cb")
	if err != nil {
		t.Fatalf("InitiateCharge: %v", err)
	}
	if accepted.MerchantRequestID != "mr_001" || accepted.CheckoutRequestID != "ws_001" {
		t.Fatalf("unexpected correlation ids: %+v", accepted)
	}
}

func TestInitiateCharge_SignsPasswordWithTimestamp(t *testing.T) {
	var got stkPushRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok_123"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"MerchantRequestID":"mr","CheckoutRequestID":"ws","ResponseCode":"0"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.InitiateCharge(context.Background(), "254712345678", decimal.NewFromFloat(1500.75), "BOOKING_42", "desc", "https://cb"); err != nil {
		t.Fatalf("InitiateCharge: %v", err)
	}

	if got.Timestamp != "20260301120000" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
	wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20260301120000"))
	if got.Password != wantPassword {
		t.Errorf("password = %q, want %q", got.Password, wantPassword)
	}
	// Fractional amounts truncate to whole units.
	if got.Amount != 1500 {
		t.Errorf("amount = %d, want 1500", got.Amount)
	}
	if got.TransactionType != "CustomerPayBillOnline" {
		t.Errorf("transaction type = %q", got.TransactionType)
	}
	if got.PartyA != "254712345678" || got.PartyB != "174379" {
		t.Errorf("parties = %q/%q", got.PartyA, got.PartyB)
	}
}

func TestInitiateCharge_ProviderRejection(t *testing.T) {
	srv := fakeDaraja(t, http.StatusOK, `{
		"MerchantRequestID":"mr_001",
		"CheckoutRequestID":"ws_001",
		"ResponseCode":"1",
		"ResponseDescription":"Invalid PhoneNumber"
	}`)
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.InitiateCharge(context.Background(), "254712345678", decimal.NewFromInt(100), "BOOKING_1", "d", "https://cb")
	if !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestInitiateCharge_ProviderFaultBody(t *testing.T) {
	srv := fakeDaraja(t, http.StatusBadRequest, `{"requestId":"1","errorCode":"400.002.02","errorMessage":"Bad Request - Invalid Amount"}`)
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.InitiateCharge(context.Background(), "254712345678", decimal.NewFromInt(0), "BOOKING_1", "d", "https://cb")
	if !IsKind(err, KindInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	var ge *GatewayError
	if !errors.As(err, &ge) || ge.Code != "400.002.02" {
		t.Fatalf("expected provider error code, got %v", err)
	}
}

func TestAccessToken_BadCredentials(t *testing.T) {
	srv := fakeDaraja(t, http.StatusOK, `{}`)
	defer srv.Close()

	c := testClient(srv.URL)
	c.cfg.ConsumerSecret = "wrong"
	_, err := c.AccessToken(context.Background())
	if !IsKind(err, KindAuthFailed) {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestProductionGuard_RefusesLiveHostWithoutOutboundCall(t *testing.T) {
	c := testClient("https://api.safaricom.co.ke")
	c.http = &http.Client{Transport: panicTransport{}}

	_, err := c.InitiateCharge(context.Background(), "254712345678", decimal.NewFromInt(100), "BOOKING_1", "d", "https://cb")
	if !IsKind(err, KindProductionSafety) {
		t.Fatalf("expected production safety refusal, got %v", err)
	}
}

func TestProductionGuard_SandboxAllowed(t *testing.T) {
	c := testClient("https://sandbox.safaricom.co.ke")
	if err := c.productionGuard(); err != nil {
		t.Fatalf("sandbox must pass the guard: %v", err)
	}
}

// panicTransport fails the test if any HTTP request goes out.
type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("unexpected outbound HTTP request")
}
