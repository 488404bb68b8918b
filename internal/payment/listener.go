package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Listener is a Gateway for environments without an embedded browser view:
// it serves a localhost callback endpoint that the hosted widget page posts
// its outcome to, the same way CLI OAuth flows collect redirects.
type Listener struct {
	addr string

	// OnReady, when set, receives the callback base URL once the listener
	// is bound. The widget page is pointed at <base>/callback.
	OnReady func(baseURL string)
}

func NewListener(addr string) *Listener {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	return &Listener{addr: addr}
}

type outcome struct {
	result  *Result
	dismiss *DismissError
}

// Collect binds the callback address, logs the URL the widget page must be
// pointed at, and waits for a single callback or dismissal.
func (l *Listener) Collect(ctx context.Context, session Session) (*Result, error) {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return nil, fmt.Errorf("payment: failed to bind callback listener: %w", err)
	}

	outcomes := make(chan outcome, 1)
	var once sync.Once
	deliver := func(o outcome) {
		once.Do(func() { outcomes <- o })
	}

	r := chi.NewRouter()
	r.Post("/callback", func(w http.ResponseWriter, req *http.Request) {
		var res Result
		if err := json.NewDecoder(req.Body).Decode(&res); err != nil {
			http.Error(w, "invalid callback payload", http.StatusBadRequest)
			return
		}
		if res.RazorpayOrderID == "" || res.RazorpayPaymentID == "" || res.RazorpaySignature == "" {
			http.Error(w, "missing payment fields", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		deliver(outcome{result: &res})
	})
	r.Post("/dismiss", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.Reason == "" {
			body.Reason = "payment window closed"
		}
		w.WriteHeader(http.StatusOK)
		deliver(outcome{dismiss: &DismissError{Reason: body.Reason}})
	})

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("payment: callback listener failed")
		}
	}()
	defer srv.Close()

	baseURL := "http://" + ln.Addr().String()
	log.Info().
		Str("callback_url", baseURL+"/callback").
		Str("razorpay_order_id", session.RazorpayOrderID).
		Int64("amount", session.Amount).
		Msg("payment: waiting for gateway outcome")
	if l.OnReady != nil {
		l.OnReady(baseURL)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("payment: collection aborted: %w", ctx.Err())
	case o := <-outcomes:
		if o.dismiss != nil {
			return nil, o.dismiss
		}
		return o.result, nil
	}
}

// Addr returns the configured listen address (useful in tests with :0).
func (l *Listener) Addr() string {
	return l.addr
}
