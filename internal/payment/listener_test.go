package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommerce/storefront/internal/payment"
)

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func collect(t *testing.T, l *payment.Listener, session payment.Session) (<-chan string, <-chan *payment.Result, <-chan error) {
	t.Helper()
	ready := make(chan string, 1)
	l.OnReady = func(baseURL string) { ready <- baseURL }

	results := make(chan *payment.Result, 1)
	errs := make(chan error, 1)
	go func() {
		res, err := l.Collect(context.Background(), session)
		results <- res
		errs <- err
	}()
	return ready, results, errs
}

func waitReady(t *testing.T, ready <-chan string) string {
	t.Helper()
	select {
	case base := <-ready:
		return base
	case <-time.After(2 * time.Second):
		t.Fatal("listener never bound")
		return ""
	}
}

func TestListener_Callback(t *testing.T) {
	l := payment.NewListener("")
	ready, results, errs := collect(t, l, payment.Session{RazorpayOrderID: "order_123", Amount: 37900})
	base := waitReady(t, ready)

	resp := post(t, base+"/callback", payment.Result{
		RazorpayOrderID:   "order_123",
		RazorpayPaymentID: "pay_456",
		RazorpaySignature: "sig_789",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res := <-results
	require.NoError(t, <-errs)
	require.NotNil(t, res)
	assert.Equal(t, "pay_456", res.RazorpayPaymentID)
	assert.Equal(t, "sig_789", res.RazorpaySignature)
}

func TestListener_Callback_RejectsIncompletePayload(t *testing.T) {
	l := payment.NewListener("")
	ready, results, errs := collect(t, l, payment.Session{RazorpayOrderID: "order_123"})
	base := waitReady(t, ready)

	// Missing signature: rejected, does not resolve the collection.
	resp := post(t, base+"/callback", payment.Result{
		RazorpayOrderID:   "order_123",
		RazorpayPaymentID: "pay_456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A complete callback afterwards still wins.
	post(t, base+"/callback", payment.Result{
		RazorpayOrderID:   "order_123",
		RazorpayPaymentID: "pay_456",
		RazorpaySignature: "sig_789",
	})
	res := <-results
	require.NoError(t, <-errs)
	assert.Equal(t, "sig_789", res.RazorpaySignature)
}

func TestListener_Dismiss(t *testing.T) {
	l := payment.NewListener("")
	ready, results, errs := collect(t, l, payment.Session{RazorpayOrderID: "order_123"})
	base := waitReady(t, ready)

	post(t, base+"/dismiss", map[string]string{"reason": "user pressed back"})

	res := <-results
	err := <-errs
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrDismissed)

	var dismiss *payment.DismissError
	require.True(t, errors.As(err, &dismiss))
	assert.Equal(t, "user pressed back", dismiss.Reason)
}

func TestListener_Dismiss_DefaultReason(t *testing.T) {
	l := payment.NewListener("")
	ready, _, errs := collect(t, l, payment.Session{})
	base := waitReady(t, ready)

	post(t, base+"/dismiss", map[string]string{})

	err := <-errs
	var dismiss *payment.DismissError
	require.True(t, errors.As(err, &dismiss))
	assert.Equal(t, "payment window closed", dismiss.Reason)
}

func TestListener_ContextCancel(t *testing.T) {
	l := payment.NewListener("")
	ready := make(chan string, 1)
	l.OnReady = func(baseURL string) { ready <- baseURL }

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := l.Collect(ctx, payment.Session{})
		errs <- err
	}()
	waitReady(t, ready)

	cancel()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after cancellation")
	}
}
