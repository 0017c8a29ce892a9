package payment

import (
	"context"
	"errors"
	"fmt"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

// CallbackEnvelope mirrors the provider's webhook shape: the interesting
// fields sit two levels deep under Body.stkCallback.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

type CallbackBody struct {
	StkCallback StkCallback `json:"stkCallback"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem values are heterogeneous (strings, numbers), so Value stays
// untyped until extraction.
type CallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// Ack is the body returned to the provider. ResultCode 0 means "received and
// processed", regardless of whether the charge itself succeeded; non-zero
// tells the provider to stop retrying a payload we cannot use.
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// receiptAndAmount scans the metadata items by name. The list is unordered
// and not guaranteed exhaustive, so absent entries simply come back zero.
func (cb StkCallback) receiptAndAmount() (receipt string, amount string) {
	if cb.CallbackMetadata == nil {
		return "", ""
	}
	for _, item := range cb.CallbackMetadata.Item {
		if item.Value == nil {
			continue
		}
		switch item.Name {
		case "MpesaReceiptNumber":
			receipt = fmt.Sprintf("%v", item.Value)
		case "Amount":
			amount = fmt.Sprintf("%v", item.Value)
		}
	}
	return receipt, amount
}

// HandleCallback reconciles one webhook delivery with the ledger. The
// returned error is non-nil only for genuine internal faults (store down);
// unknown correlation ids and failed charges are normal outcomes that get a
// clean ack so the provider stops retrying.
func (s *Service) HandleCallback(ctx context.Context, env CallbackEnvelope, rawBody string) (Ack, error) {
	cb := env.Body.StkCallback

	p, err := s.findByCorrelationIDs(ctx, cb.CheckoutRequestID, cb.MerchantRequestID)
	if err != nil {
		return Ack{ResultCode: 1, ResultDesc: "Error processing callback"}, err
	}
	if p == nil {
		// Can legitimately race a not-yet-committed payment row or point at
		// stale provider test data; a negative ack is the correct answer.
		s.loggerf("level=warn msg=callback for unknown payment checkout_request_id=%s merchant_request_id=%s",
			cb.CheckoutRequestID, cb.MerchantRequestID)
		return Ack{ResultCode: 1, ResultDesc: "Payment not found"}, nil
	}

	s.loggerf("level=info msg=mpesa callback payment_id=%d result_code=%d result_desc=%q",
		p.ID, cb.ResultCode, cb.ResultDesc)

	if cb.ResultCode == 0 {
		receipt, amount := cb.receiptAndAmount()
		s.loggerf("level=info msg=charge succeeded payment_id=%d receipt=%s amount=%s", p.ID, receipt, amount)
		outcome := CallbackOutcome{Success: true, ReceiptNumber: receipt, RawBody: rawBody}
		if err := s.ApplyCallbackOutcome(ctx, p, outcome); err != nil {
			return Ack{ResultCode: 1, ResultDesc: "Error processing callback"}, err
		}
		return Ack{ResultCode: 0, ResultDesc: "Payment processed successfully"}, nil
	}

	outcome := CallbackOutcome{Success: false, Description: cb.ResultDesc, RawBody: rawBody}
	if err := s.ApplyCallbackOutcome(ctx, p, outcome); err != nil {
		return Ack{ResultCode: 1, ResultDesc: "Error processing callback"}, err
	}
	// Still a positive ack: the webhook was received and processed even
	// though the charge itself failed.
	return Ack{ResultCode: 0, ResultDesc: "Payment failed - " + cb.ResultDesc}, nil
}

// findByCorrelationIDs looks up by checkout request id first, then falls back
// to the merchant request id. (nil, nil) means no match.
func (s *Service) findByCorrelationIDs(ctx context.Context, checkoutID, merchantID string) (*domain.Payment, error) {
	if checkoutID != "" {
		found, err := s.payments.GetByCheckoutRequestID(ctx, checkoutID)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if merchantID != "" {
		found, err := s.payments.GetByMerchantRequestID(ctx, merchantID)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
