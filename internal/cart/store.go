package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/smartcommerce/storefront/internal/api"
)

// ErrNotAuthenticated is returned when a cart mutation needs a signed-in
// customer. Callers surface it and redirect to the sign-in entry point.
var ErrNotAuthenticated = errors.New("cart: sign-in required")

// Store is the shared source of truth for the cart badge count. It is an
// observable store: components subscribe for count changes instead of
// reaching into a global.
type Store struct {
	client *api.Client

	mu      sync.Mutex
	count   int
	subs    map[int]func(int)
	nextSub int
}

func NewStore(client *api.Client) *Store {
	return &Store{
		client: client,
		subs:   make(map[int]func(int)),
	}
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Subscribe registers fn to be called with the new count on every change.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func(count int)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) setCount(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	changed := s.count != n
	s.count = n
	var fns []func(int)
	if changed {
		fns = make([]func(int), 0, len(s.subs))
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}

// Adjust applies an optimistic delta to the badge count without touching
// the backend. The cart view uses it to mirror in-flight quantity edits;
// the next FetchCount reconciles.
func (s *Store) Adjust(delta int) {
	s.mu.Lock()
	n := s.count + delta
	s.mu.Unlock()
	s.setCount(n)
}

// FetchCount syncs the badge count with the backend. Failures and missing
// credentials silently reset the count to zero; this never returns an error.
func (s *Store) FetchCount(ctx context.Context) {
	creds := s.client.Credentials()
	if !creds.Valid() {
		s.setCount(0)
		return
	}

	var summary Summary
	err := s.client.JSON(ctx, http.MethodGet, "/api/cart/"+creds.UserID, nil, nil, &summary)
	if err != nil {
		log.Debug().Err(err).Msg("cart: failed to fetch cart count, resetting badge")
		s.setCount(0)
		return
	}

	s.setCount(summary.TotalItems)
}

// Add puts quantity units of a product into the cart. The count is bumped
// optimistically; a failed backend call rolls the bump back exactly and the
// error is returned. Success re-syncs from the backend.
func (s *Store) Add(ctx context.Context, productID int64, quantity int) error {
	creds := s.client.Credentials()
	if !creds.Valid() {
		return ErrNotAuthenticated
	}

	s.Adjust(quantity)

	query := url.Values{}
	query.Set("productId", strconv.FormatInt(productID, 10))
	query.Set("quantity", strconv.Itoa(quantity))

	err := s.client.JSON(ctx, http.MethodPost, "/api/cart/"+creds.UserID+"/add", query, nil, nil)
	if err != nil {
		s.Adjust(-quantity)
		return fmt.Errorf("cart: failed to add product %d: %w", productID, err)
	}

	s.FetchCount(ctx)
	return nil
}

// Remove deletes a product from the cart. The count is decremented
// optimistically (floored at zero); on failure the count is re-synced from
// the backend rather than rolled back precisely. The asymmetry with Add is
// intentional and load-bearing.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	creds := s.client.Credentials()
	if !creds.Valid() {
		return ErrNotAuthenticated
	}

	s.Adjust(-1)

	query := url.Values{}
	query.Set("productId", strconv.FormatInt(productID, 10))

	err := s.client.JSON(ctx, http.MethodDelete, "/api/cart/"+creds.UserID+"/remove", query, nil, nil)
	if err != nil {
		s.FetchCount(ctx)
		return fmt.Errorf("cart: failed to remove product %d: %w", productID, err)
	}

	s.FetchCount(ctx)
	return nil
}
