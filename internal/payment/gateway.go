// Package payment holds the handoff to the third-party payment widget. The
// gateway's internals stay external; this package only carries the session
// descriptor out and the signed result (or a dismissal) back.
package payment

import (
	"context"
	"errors"
	"fmt"
)

// ErrDismissed is returned when the customer closes the widget without
// paying. The checkout flow notifies the backend but never retries or
// reopens the widget on its own.
var ErrDismissed = errors.New("payment: checkout dismissed")

// Session is the gateway session descriptor the backend returns for a draft
// order: everything needed to open the hosted widget. Amount is paise.
type Session struct {
	Key             string `json:"key"`
	RazorpayOrderID string `json:"orderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// Result is the signed outcome of a successful widget payment. The backend
// verifies the signature; the client treats it as opaque.
type Result struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// DismissError carries the widget's dismissal reason. errors.Is matches it
// against ErrDismissed.
type DismissError struct {
	Reason string
}

func (e *DismissError) Error() string {
	if e.Reason == "" {
		return "payment: checkout dismissed"
	}
	return fmt.Sprintf("payment: checkout dismissed: %s", e.Reason)
}

func (e *DismissError) Is(target error) bool {
	return target == ErrDismissed
}

// Gateway collects a payment for a session. Collect blocks until the widget
// reports success (Result), the customer dismisses it (DismissError), or ctx
// expires.
type Gateway interface {
	Collect(ctx context.Context, session Session) (*Result, error)
}
