package mpesa

import (
	"errors"
	"fmt"
)

// FailureKind classifies gateway failures so callers can branch without
// string matching.
type FailureKind string

const (
	KindAuthFailed       FailureKind = "auth_failed"
	KindInvalidRequest   FailureKind = "invalid_request"
	KindTimeout          FailureKind = "timeout"
	KindUnavailable      FailureKind = "unavailable"
	KindProductionSafety FailureKind = "production_safety"
)

// GatewayError is the only error type the client returns. Code and Message
// carry the provider's error code/description when the provider supplied
// them.
type GatewayError struct {
	Kind    FailureKind
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mpesa %s (code %s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("mpesa %s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a GatewayError of the given kind anywhere in
// its chain.
func IsKind(err error, kind FailureKind) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Kind == kind
}
