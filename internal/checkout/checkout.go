package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/smartcommerce/storefront/internal/api"
	"github.com/smartcommerce/storefront/internal/cart"
	"github.com/smartcommerce/storefront/internal/order"
	"github.com/smartcommerce/storefront/internal/payment"
	"github.com/smartcommerce/storefront/internal/user"
)

var (
	ErrCartEmpty = errors.New("checkout: cart is empty")
	// ErrPlacementInFlight guards against double submission while an order
	// is being placed.
	ErrPlacementInFlight = errors.New("checkout: an order is already being placed")
)

// CouponMeta is the outcome of a coupon-apply call. It lives only for the
// checkout session; a reload starts from scratch.
type CouponMeta struct {
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discountAmount"`
	Message        string `json:"message"`
}

// Confirmation is what the success page needs.
type Confirmation struct {
	OrderID int64
	Status  order.Status
}

// Checkout drives the draft-order → payment → confirmation lifecycle.
type Checkout struct {
	client  *api.Client
	store   *cart.Store
	users   *user.Service
	gateway payment.Gateway
	rates   Rates

	validate *validator.Validate

	mu      sync.Mutex
	summary *cart.Summary
	profile *user.Profile
	coupon  *CouponMeta
	placing bool
}

func New(client *api.Client, store *cart.Store, users *user.Service, gateway payment.Gateway, rates Rates) *Checkout {
	return &Checkout{
		client:   client,
		store:    store,
		users:    users,
		gateway:  gateway,
		rates:    rates,
		validate: newFormValidator(),
	}
}

// Load fetches the cart and the profile in parallel. A cart failure aborts;
// a profile failure only costs the address prefill.
func (c *Checkout) Load(ctx context.Context) error {
	creds := c.client.Credentials()
	if !creds.Valid() {
		return cart.ErrNotAuthenticated
	}

	var (
		summary cart.Summary
		profile *user.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.client.JSON(gctx, http.MethodGet, "/api/cart/"+creds.UserID, nil, nil, &summary); err != nil {
			return fmt.Errorf("checkout: failed to load cart: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		p, err := c.users.Profile(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("checkout: profile fetch failed, skipping address prefill")
			return nil
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.summary = &summary
	c.profile = profile
	c.mu.Unlock()
	return nil
}

// Form returns a form pre-filled from the first saved address, the way the
// page seeds its fields after Load.
func (c *Checkout) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := Form{PaymentMethod: MethodUPI, AddressType: "home"}
	if c.profile != nil {
		var first *user.Address
		if len(c.profile.Addresses) > 0 {
			first = &c.profile.Addresses[0]
		}
		f.PrefillFrom(c.profile.Name, c.profile.Phone, first)
	}
	return f
}

func (c *Checkout) Summary() *cart.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

func (c *Checkout) Coupon() *CouponMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coupon
}

// Validate runs all form checks without touching the network.
func (c *Checkout) Validate(f Form) error {
	err := c.validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return fmt.Errorf("checkout: validation failed: %w", err)
}

// Quote computes the client-side pricing preview for the loaded cart.
func (c *Checkout) Quote(method PaymentMethod) (Quote, error) {
	c.mu.Lock()
	summary := c.summary
	var discount int64
	if c.coupon != nil {
		discount = c.coupon.DiscountAmount
	}
	c.mu.Unlock()

	if summary == nil {
		return Quote{}, ErrCartEmpty
	}
	return c.rates.Quote(summary.TotalAmount, method, discount), nil
}

type applyCouponRequest struct {
	Code   string           `json:"code"`
	UserID string           `json:"userId"`
	Amount int64            `json:"amount"`
	Items  []couponLineItem `json:"items"`
}

type couponLineItem struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`
}

// ApplyCoupon recomputes the coupon discount server-side. An empty code
// clears the stored meta. Nothing survives a page reload.
func (c *Checkout) ApplyCoupon(ctx context.Context, code string) (*CouponMeta, error) {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()

	if code == "" {
		c.mu.Lock()
		c.coupon = nil
		c.mu.Unlock()
		return nil, nil
	}
	if summary == nil {
		return nil, ErrCartEmpty
	}

	req := applyCouponRequest{
		Code:   code,
		UserID: c.client.Credentials().UserID,
		Amount: summary.TotalAmount,
	}
	for _, line := range summary.Items {
		req.Items = append(req.Items, couponLineItem{ProductID: line.ProductID, Qty: line.Quantity})
	}

	var meta CouponMeta
	err := c.client.JSON(ctx, http.MethodPost, "/api/coupons/apply", nil, req, &meta)
	if err != nil {
		c.mu.Lock()
		c.coupon = nil
		c.mu.Unlock()
		return nil, fmt.Errorf("checkout: coupon not applicable: %w", err)
	}
	meta.Code = code

	c.mu.Lock()
	c.coupon = &meta
	c.mu.Unlock()

	log.Info().Str("code", code).Int64("discount", meta.DiscountAmount).Msg("checkout: coupon applied")
	return &meta, nil
}

type createDraftRequest struct {
	UserID        string        `json:"userId"`
	CustomerName  string        `json:"customerName"`
	Phone         string        `json:"phone"`
	Address       user.Address  `json:"address"`
	GSTIN         string        `json:"gstin,omitempty"`
	BusinessName  string        `json:"businessName,omitempty"`
	CouponCode    string        `json:"couponCode,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

type confirmPaymentRequest struct {
	OrderID           int64  `json:"orderId"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

type paymentFailedRequest struct {
	OrderID int64  `json:"orderId"`
	Reason  string `json:"reason"`
}

// PlaceOrder validates the form, creates a draft order and drives it to a
// confirmation through COD or the payment gateway. Once the draft exists it
// is never rolled back client-side; orphan cleanup is the backend's job.
func (c *Checkout) PlaceOrder(ctx context.Context, f Form) (*Confirmation, error) {
	c.mu.Lock()
	if c.placing {
		c.mu.Unlock()
		return nil, ErrPlacementInFlight
	}
	summary := c.summary
	coupon := c.coupon
	c.placing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.placing = false
		c.mu.Unlock()
	}()

	if summary == nil || len(summary.Items) == 0 {
		return nil, ErrCartEmpty
	}
	if err := c.Validate(f); err != nil {
		return nil, err
	}

	draft, err := c.createDraft(ctx, f, coupon)
	if err != nil {
		return nil, err
	}

	if f.PaymentMethod == MethodCOD {
		return c.confirmCOD(ctx, draft, summary)
	}
	return c.collectOnline(ctx, draft, summary)
}

func (c *Checkout) createDraft(ctx context.Context, f Form, coupon *CouponMeta) (*order.Order, error) {
	req := createDraftRequest{
		UserID:       c.client.Credentials().UserID,
		CustomerName: f.FullName,
		Phone:        f.Phone,
		Address: user.Address{
			HouseNo:  f.AddressLine1,
			Area:     f.AddressLine2,
			Landmark: f.Landmark,
			City:     f.City,
			State:    f.State,
			PinCode:  f.Pincode,
			Country:  "India",
			Type:     f.AddressType,
		},
		PaymentMethod: f.PaymentMethod,
	}
	if f.AddGST {
		req.GSTIN = f.GSTIN
		req.BusinessName = f.BusinessName
	}
	if coupon != nil {
		req.CouponCode = coupon.Code
	}

	var draft order.Order
	err := c.client.JSON(ctx, http.MethodPost, "/api/checkout/create-draft", nil, req, &draft)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to create draft order: %w", err)
	}

	log.Info().Int64("order_id", draft.ID).Str("method", string(f.PaymentMethod)).Msg("checkout: draft order created")
	return &draft, nil
}

func (c *Checkout) confirmCOD(ctx context.Context, draft *order.Order, summary *cart.Summary) (*Confirmation, error) {
	var confirmed order.Order
	err := c.client.JSON(ctx, http.MethodPost, "/api/checkout/confirm-cod/"+strconv.FormatInt(draft.ID, 10), nil, nil, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to confirm COD order %d: %w", draft.ID, err)
	}

	c.clearCart(ctx, summary)
	return &Confirmation{OrderID: draft.ID, Status: confirmed.Status}, nil
}

func (c *Checkout) collectOnline(ctx context.Context, draft *order.Order, summary *cart.Summary) (*Confirmation, error) {
	var session payment.Session
	err := c.client.JSON(ctx, http.MethodPost, "/api/checkout/create-razorpay-order/"+strconv.FormatInt(draft.ID, 10), nil, nil, &session)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to create gateway order for %d: %w", draft.ID, err)
	}

	result, err := c.gateway.Collect(ctx, session)
	if err != nil {
		if errors.Is(err, payment.ErrDismissed) {
			c.notifyPaymentFailed(ctx, draft.ID, err)
		}
		return nil, fmt.Errorf("checkout: payment not completed for order %d: %w", draft.ID, err)
	}

	confirm := confirmPaymentRequest{
		OrderID:           draft.ID,
		RazorpayOrderID:   result.RazorpayOrderID,
		RazorpayPaymentID: result.RazorpayPaymentID,
		RazorpaySignature: result.RazorpaySignature,
	}
	var confirmed struct {
		Message     string       `json:"message"`
		OrderStatus order.Status `json:"orderStatus"`
	}
	if err := c.client.JSON(ctx, http.MethodPost, "/api/checkout/confirm-payment", nil, confirm, &confirmed); err != nil {
		return nil, fmt.Errorf("checkout: failed to confirm payment for order %d: %w", draft.ID, err)
	}

	c.clearCart(ctx, summary)
	return &Confirmation{OrderID: draft.ID, Status: confirmed.OrderStatus}, nil
}

// notifyPaymentFailed tells the backend why the widget closed. Best effort,
// no retry, the widget is never reopened automatically.
func (c *Checkout) notifyPaymentFailed(ctx context.Context, orderID int64, cause error) {
	reason := "payment dismissed"
	var dismiss *payment.DismissError
	if errors.As(cause, &dismiss) && dismiss.Reason != "" {
		reason = dismiss.Reason
	}

	req := paymentFailedRequest{OrderID: orderID, Reason: reason}
	if err := c.client.JSON(ctx, http.MethodPost, "/api/checkout/payment-failed", nil, req, nil); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("checkout: failed to report dismissed payment")
		return
	}
	log.Info().Int64("order_id", orderID).Str("reason", reason).Msg("checkout: payment dismissal reported")
}

// clearCart deletes the purchased lines one request per item, then resets
// the shared badge. Failures are logged and skipped: the backend clears the
// cart on its side as well, so leftovers disappear on the next fetch.
func (c *Checkout) clearCart(ctx context.Context, summary *cart.Summary) {
	creds := c.client.Credentials()
	for _, line := range summary.Items {
		query := url.Values{}
		query.Set("productId", strconv.FormatInt(line.ProductID, 10))
		if err := c.client.JSON(ctx, http.MethodDelete, "/api/cart/"+creds.UserID+"/remove", query, nil, nil); err != nil {
			log.Warn().Err(err).Int64("product_id", line.ProductID).Msg("checkout: failed to clear cart line")
		}
	}

	c.mu.Lock()
	c.summary = nil
	c.coupon = nil
	c.mu.Unlock()

	c.store.FetchCount(ctx)
}

// LookupPincode asks the backend for the city/state of a 6-digit pincode.
// Best effort; the caller ignores failures.
func (c *Checkout) LookupPincode(ctx context.Context, pin string) (city, state string, err error) {
	if !pincodePattern.MatchString(pin) {
		return "", "", fmt.Errorf("checkout: invalid pincode %q", pin)
	}
	var out struct {
		City  string `json:"city"`
		State string `json:"state"`
	}
	if err := c.client.JSON(ctx, http.MethodGet, "/api/common/pincode/"+pin, nil, nil, &out); err != nil {
		return "", "", fmt.Errorf("checkout: pincode lookup failed: %w", err)
	}
	return out.City, out.State, nil
}
