package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// productionHost is Safaricom's live API host. Charges against it move real
// money, so InitiateCharge refuses to talk to it unless the configured base
// URL carries an explicit sandbox marker.
const productionHost = "api.safaricom.co.ke"

const (
	oauthPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath  = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath = "/mpesa/stkpushquery/v1/query"

	timestampLayout = "20060102150405"
)

// Config for the Daraja client. BaseURL has no trailing slash.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	Timeout        time.Duration
}

// Client is a stateless adapter to the M-Pesa Daraja API. All failures come
// back as *GatewayError; it never panics past its boundary.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		now:  time.Now,
	}
}

// ChargeAccepted is the synchronous half of an STK push: the provider has
// queued the prompt and handed back the correlation identifiers that the
// asynchronous callback will carry.
type ChargeAccepted struct {
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
}

// ChargeStatus is the provider's answer to a best-effort status query. The
// callback remains authoritative; this exists for manual reconciliation.
type ChargeStatus struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// providerFault is the error body Daraja returns with non-200 statuses.
type providerFault struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// AccessToken exchanges the app key/secret for a bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+oauthPath, nil)
	if err != nil {
		return "", &GatewayError{Kind: KindUnavailable, Message: err.Error()}
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &GatewayError{
			Kind:    KindAuthFailed,
			Code:    fmt.Sprintf("%d", resp.StatusCode),
			Message: fmt.Sprintf("token endpoint returned HTTP %d: %s", resp.StatusCode, truncate(body)),
		}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &GatewayError{Kind: KindAuthFailed, Message: "malformed token response: " + err.Error()}
	}
	if tok.AccessToken == "" {
		return "", &GatewayError{Kind: KindAuthFailed, Message: "token response missing access_token"}
	}
	return tok.AccessToken, nil
}

// InitiateCharge submits an STK push. Fractional amounts truncate to whole
// units because the provider only accepts integers.
func (c *Client) InitiateCharge(ctx context.Context, phone string, amount decimal.Decimal, reference, description, callbackURL string) (*ChargeAccepted, error) {
	if err := c.productionGuard(); err != nil {
		return nil, err
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := c.now().Format(timestampLayout)
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          c.signedPassword(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount.IntPart(),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       callbackURL,
		AccountReference:  reference,
		TransactionDesc:   description,
	}

	body, status, err := c.postJSON(ctx, c.cfg.BaseURL+stkPushPath, token, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, faultFromBody(body, status)
	}

	var out stkPushResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &GatewayError{Kind: KindUnavailable, Message: "malformed charge response: " + err.Error()}
	}
	if out.ResponseCode != "0" {
		return nil, &GatewayError{Kind: KindInvalidRequest, Code: out.ResponseCode, Message: out.ResponseDescription}
	}

	return &ChargeAccepted{
		MerchantRequestID: out.MerchantRequestID,
		CheckoutRequestID: out.CheckoutRequestID,
		CustomerMessage:   out.CustomerMessage,
	}, nil
}

// QueryChargeStatus asks the provider what became of an STK push.
func (c *Client) QueryChargeStatus(ctx context.Context, checkoutRequestID string) (*ChargeStatus, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := c.now().Format(timestampLayout)
	payload := stkQueryRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          c.signedPassword(ts),
		Timestamp:         ts,
		CheckoutRequestID: checkoutRequestID,
	}

	body, status, err := c.postJSON(ctx, c.cfg.BaseURL+stkQueryPath, token, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, faultFromBody(body, status)
	}

	var out ChargeStatus
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &GatewayError{Kind: KindUnavailable, Message: "malformed query response: " + err.Error()}
	}
	return &out, nil
}

// productionGuard refuses to charge against the live host unless the URL is
// explicitly marked as sandbox. Tripping it performs no outbound call.
func (c *Client) productionGuard() *GatewayError {
	base := strings.ToLower(c.cfg.BaseURL)
	if strings.Contains(base, productionHost) && !strings.Contains(base, "sandbox") {
		return &GatewayError{
			Kind:    KindProductionSafety,
			Message: "base URL points at the live M-Pesa host; refusing to charge real money without a sandbox marker",
		}
	}
	return nil
}

// signedPassword is base64(shortcode + passkey + timestamp); the same
// timestamp instant must appear in the request body.
func (c *Client) signedPassword(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))
}

func (c *Client) postJSON(ctx context.Context, url, token string, payload interface{}) ([]byte, int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, &GatewayError{Kind: KindUnavailable, Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, &GatewayError{Kind: KindUnavailable, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, transportError(err)
	}
	return body, resp.StatusCode, nil
}

func faultFromBody(body []byte, status int) *GatewayError {
	var fault providerFault
	if err := json.Unmarshal(body, &fault); err == nil && fault.ErrorCode != "" {
		return &GatewayError{Kind: KindInvalidRequest, Code: fault.ErrorCode, Message: fault.ErrorMessage}
	}
	return &GatewayError{
		Kind:    KindUnavailable,
		Code:    fmt.Sprintf("%d", status),
		Message: fmt.Sprintf("gateway returned HTTP %d: %s", status, truncate(body)),
	}
}

func transportError(err error) *GatewayError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &GatewayError{Kind: KindTimeout, Message: "gateway did not respond in time"}
	}
	return &GatewayError{Kind: KindUnavailable, Message: err.Error()}
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
