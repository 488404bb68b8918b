package order

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smartcommerce/storefront/internal/api"
)

var (
	ErrOrderNotFound = errors.New("order: not found")
	// ErrNotCancellable is returned when the order has progressed past the
	// cancellable fulfillment window.
	ErrNotCancellable = errors.New("order: status does not allow cancellation")
	ErrNotReturnable  = errors.New("order: only delivered orders can be returned")
	// ErrInvoiceUnavailable covers invoices requested before the order is
	// finalized server-side.
	ErrInvoiceUnavailable = errors.New("order: invoice not available yet")
)

// Service reads and mutates orders through the backend API.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := s.client.JSON(ctx, http.MethodGet, "/api/orders/"+strconv.FormatInt(id, 10), nil, nil, &o)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order: failed to fetch order %d: %w", id, err)
	}
	return &o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	err := s.client.JSON(ctx, http.MethodGet, "/api/orders/user/"+userID, nil, nil, &orders)
	if err != nil {
		return nil, fmt.Errorf("order: failed to fetch orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetStatus hits the lightweight status-only endpoint. The backend answers
// with the bare status name, not a JSON object.
func (s *Service) GetStatus(ctx context.Context, id int64) (Status, error) {
	var buf bytes.Buffer
	err := s.client.Download(ctx, "/api/orders/"+strconv.FormatInt(id, 10)+"/status", nil, &buf)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("order: failed to fetch status for order %d: %w", id, err)
	}
	return Status(strings.Trim(strings.TrimSpace(buf.String()), `"`)), nil
}

// Cancel requests cancellation and optimistically marks the local order
// CANCELLED. Offered only while the status is in the cancellable set.
func (s *Service) Cancel(ctx context.Context, o *Order) error {
	if !o.Status.Cancellable() {
		return ErrNotCancellable
	}

	err := s.client.JSON(ctx, http.MethodDelete, "/api/orders/"+strconv.FormatInt(o.ID, 10)+"/cancel", nil, nil, nil)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("order: failed to cancel order %d: %w", o.ID, err)
	}

	o.Status = StatusCancelled
	log.Info().Int64("order_id", o.ID).Msg("order: cancelled")
	return nil
}

// Return submits a return request with a reason and re-fetches the order so
// the local copy reflects the backend's decision.
func (s *Service) Return(ctx context.Context, o *Order, reason string) error {
	if !o.Status.Returnable() {
		return ErrNotReturnable
	}

	body := map[string]string{"reason": reason}
	err := s.client.JSON(ctx, http.MethodPost, "/api/orders/"+strconv.FormatInt(o.ID, 10)+"/return", nil, body, nil)
	if err != nil {
		return fmt.Errorf("order: failed to request return for order %d: %w", o.ID, err)
	}

	fresh, err := s.Get(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("order: return accepted but refresh failed for order %d: %w", o.ID, err)
	}
	*o = *fresh

	log.Info().Int64("order_id", o.ID).Str("status", o.Status.String()).Msg("order: return requested")
	return nil
}

// Invoice streams the invoice PDF into w. Orders that are not finalized yet
// have no invoice.
func (s *Service) Invoice(ctx context.Context, id int64, w io.Writer) error {
	err := s.client.Download(ctx, "/api/orders/"+strconv.FormatInt(id, 10)+"/invoice", nil, w)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusConflict || apiErr.Status == http.StatusBadRequest) {
			return ErrInvoiceUnavailable
		}
		return fmt.Errorf("order: failed to download invoice for order %d: %w", id, err)
	}
	return nil
}
