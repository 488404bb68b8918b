package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommerce/storefront/internal/api"
	"github.com/smartcommerce/storefront/internal/cart"
)

// pageBackend keeps real per-line cart state so tests can check that the
// view converges on it after every mutation.
type pageBackend struct {
	mu         sync.Mutex
	quantities map[int64]int // productID -> qty
	failUpdate bool
	failRemove bool
}

func (b *pageBackend) summary() cart.Summary {
	var s cart.Summary
	for id, qty := range b.quantities {
		s.Items = append(s.Items, cart.Line{ProductID: id, Quantity: qty, DiscountedPrice: 10000, DiscountedTotal: int64(qty) * 10000})
		s.TotalItems += qty
	}
	s.TotalAmount = int64(s.TotalItems) * 10000
	return s
}

func (b *pageBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart/{userId}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.summary())
	})
	mux.HandleFunc("PUT /api/cart/{userId}/update", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failUpdate {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		id, _ := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
		qty, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
		b.quantities[id] = qty
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /api/cart/{userId}/remove", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failRemove {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		id, _ := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
		delete(b.quantities, id)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newCart(t *testing.T, backend *pageBackend) (*cart.Cart, *cart.Store) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	client.SetCredentials(api.Credentials{UserID: "7", Token: "tok"})

	store := cart.NewStore(client)
	return cart.NewCart(client, store), store
}

func lineQty(lines []cart.Line, productID int64) int {
	for _, l := range lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func TestCart_Refresh(t *testing.T) {
	backend := &pageBackend{quantities: map[int64]int{101: 2, 202: 1}}
	c, store := newCart(t, backend)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.Lines(), 2)
	assert.Equal(t, 3, store.Count())
	assert.False(t, c.Updating())
}

func TestCart_Refresh_RequiresCredentials(t *testing.T) {
	backend := &pageBackend{quantities: map[int64]int{}}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	c := cart.NewCart(client, cart.NewStore(client))

	assert.ErrorIs(t, c.Refresh(context.Background()), cart.ErrNotAuthenticated)
}

func TestCart_UpdateQuantity_ConvergesOnSuccess(t *testing.T) {
	backend := &pageBackend{quantities: map[int64]int{101: 2}}
	c, store := newCart(t, backend)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.UpdateQuantity(context.Background(), 101, 5))

	assert.Equal(t, 5, lineQty(c.Lines(), 101))
	assert.Equal(t, 5, store.Count())
	assert.False(t, c.Updating())
}

func TestCart_UpdateQuantity_ConvergesOnFailure(t *testing.T) {
	// The PUT fails but the unconditional refresh still runs, so the view
	// ends up showing exactly what the backend holds.
	backend := &pageBackend{quantities: map[int64]int{101: 2}, failUpdate: true}
	c, store := newCart(t, backend)
	require.NoError(t, c.Refresh(context.Background()))

	err := c.UpdateQuantity(context.Background(), 101, 5)
	require.Error(t, err)

	assert.Equal(t, 2, lineQty(c.Lines(), 101))
	assert.Equal(t, 2, store.Count())
	assert.False(t, c.Updating())
}

func TestCart_UpdateQuantity_FloorsAtOne(t *testing.T) {
	backend := &pageBackend{quantities: map[int64]int{101: 1}}
	c, _ := newCart(t, backend)
	require.NoError(t, c.Refresh(context.Background()))

	srvQty := backend.quantities[101]
	err := c.UpdateQuantity(context.Background(), 101, 0)
	assert.ErrorIs(t, err, cart.ErrQuantityFloor)
	assert.Equal(t, srvQty, backend.quantities[101], "rejected edit must not hit the backend")
	assert.Equal(t, 1, lineQty(c.Lines(), 101))
}

func TestCart_RemoveItem(t *testing.T) {
	backend := &pageBackend{quantities: map[int64]int{101: 2, 202: 1}}
	c, store := newCart(t, backend)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.RemoveItem(context.Background(), 101))

	assert.Equal(t, 0, lineQty(c.Lines(), 101))
	assert.Equal(t, 1, lineQty(c.Lines(), 202))
	assert.Equal(t, 1, store.Count())
}

func TestCart_RemoveItem_ConvergesOnFailure(t *testing.T) {
	backend := &pageBackend{quantities: map[int64]int{101: 2}, failRemove: true}
	c, store := newCart(t, backend)
	require.NoError(t, c.Refresh(context.Background()))

	err := c.RemoveItem(context.Background(), 101)
	require.Error(t, err)

	// The optimistic removal is undone by the refresh.
	assert.Equal(t, 2, lineQty(c.Lines(), 101))
	assert.Equal(t, 2, store.Count())
}

func TestCart_LinesBeforeRefresh(t *testing.T) {
	c, _ := newCart(t, &pageBackend{quantities: map[int64]int{}})
	assert.Nil(t, c.Lines())
	assert.Nil(t, c.Summary())
}
