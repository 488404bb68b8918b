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

// ErrQuantityFloor is returned when a quantity edit would take a line below
// one unit. Removal goes through RemoveItem, never decrement-to-zero.
var ErrQuantityFloor = errors.New("cart: quantity cannot go below 1")

// Cart is the cart page component: it caches the authoritative summary and
// keeps a per-product optimistic quantity overlay while a mutation is in
// flight. Every mutation ends with an unconditional Refresh, so the view
// converges on the backend state whatever the mutation outcome was.
type Cart struct {
	client *api.Client
	store  *Store

	mu       sync.Mutex
	summary  *Summary
	overlay  map[int64]int
	updating bool
}

func NewCart(client *api.Client, store *Store) *Cart {
	return &Cart{
		client:  client,
		store:   store,
		overlay: make(map[int64]int),
	}
}

// Refresh fetches the authoritative summary, overwrites local state and
// clears the optimistic overlay. It also re-syncs the shared badge count.
func (c *Cart) Refresh(ctx context.Context) error {
	creds := c.client.Credentials()
	if !creds.Valid() {
		c.mu.Lock()
		c.updating = false
		c.mu.Unlock()
		return ErrNotAuthenticated
	}

	var summary Summary
	err := c.client.JSON(ctx, http.MethodGet, "/api/cart/"+creds.UserID, nil, nil, &summary)

	c.mu.Lock()
	c.updating = false
	if err == nil {
		c.summary = &summary
		c.overlay = make(map[int64]int, len(summary.Items))
		for _, line := range summary.Items {
			c.overlay[line.ProductID] = line.Quantity
		}
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("cart: failed to refresh: %w", err)
	}

	c.store.FetchCount(ctx)
	return nil
}

// Summary returns the last fetched summary, or nil before the first Refresh.
func (c *Cart) Summary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Updating reports whether a mutation round-trip is in flight. The page
// renders a loading skeleton while it is true.
func (c *Cart) Updating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updating
}

// Lines returns the summary lines with optimistic quantities applied.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil
	}
	lines := make([]Line, len(c.summary.Items))
	copy(lines, c.summary.Items)
	for i := range lines {
		if qty, ok := c.overlay[lines[i].ProductID]; ok {
			lines[i].Quantity = qty
		}
	}
	return lines
}

// UpdateQuantity persists a new quantity for one line. The overlay and the
// shared badge count are updated immediately; the PUT result does not matter
// for convergence because Refresh runs either way.
func (c *Cart) UpdateQuantity(ctx context.Context, productID int64, newQty int) error {
	if newQty < 1 {
		return ErrQuantityFloor
	}

	creds := c.client.Credentials()
	if !creds.Valid() {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.summary == nil {
		c.mu.Unlock()
		return errors.New("cart: no summary loaded")
	}
	oldQty := newQty
	if line := c.summary.Line(productID); line != nil {
		oldQty = line.Quantity
	}
	if prev, ok := c.overlay[productID]; ok {
		oldQty = prev
	}
	c.overlay[productID] = newQty
	c.updating = true
	c.mu.Unlock()

	// Mirror the signed delta into the shared badge so the header keeps up
	// with the cart page during the round-trip.
	c.store.Adjust(newQty - oldQty)

	query := url.Values{}
	query.Set("productId", strconv.FormatInt(productID, 10))
	query.Set("quantity", strconv.Itoa(newQty))

	putErr := c.client.JSON(ctx, http.MethodPut, "/api/cart/"+creds.UserID+"/update", query, nil, nil)
	if putErr != nil {
		log.Warn().Err(putErr).Int64("product_id", productID).Msg("cart: quantity update failed, re-syncing")
	}

	if err := c.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("cart: refresh after quantity update failed")
	}

	if putErr != nil {
		return fmt.Errorf("cart: failed to update quantity for product %d: %w", productID, putErr)
	}
	return nil
}

// RemoveItem deletes a line and re-syncs, following the same
// mutate-then-refresh pattern as UpdateQuantity.
func (c *Cart) RemoveItem(ctx context.Context, productID int64) error {
	c.mu.Lock()
	if c.summary != nil {
		items := c.summary.Items[:0]
		for _, line := range c.summary.Items {
			if line.ProductID != productID {
				items = append(items, line)
			}
		}
		c.summary.Items = items
		delete(c.overlay, productID)
	}
	c.updating = true
	c.mu.Unlock()

	removeErr := c.store.Remove(ctx, productID)
	if removeErr != nil && !errors.Is(removeErr, ErrNotAuthenticated) {
		log.Warn().Err(removeErr).Int64("product_id", productID).Msg("cart: remove failed, re-syncing")
	}

	if err := c.Refresh(ctx); err != nil && removeErr == nil {
		return err
	}
	return removeErr
}
