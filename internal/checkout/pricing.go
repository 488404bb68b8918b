package checkout

// PaymentMethod is what the customer pays with. Only COD carries a
// surcharge; the gateway handles everything else.
type PaymentMethod string

const (
	MethodUPI        PaymentMethod = "upi"
	MethodCard       PaymentMethod = "card"
	MethodNetbanking PaymentMethod = "netbanking"
	MethodCOD        PaymentMethod = "cod"
)

// Rates are the storefront's fee schedule, in paise.
type Rates struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	CODFee                int64
}

// DefaultRates mirror the backend: free shipping from Rs.499, Rs.49
// shipping below that, Rs.30 COD surcharge.
var DefaultRates = Rates{
	FreeShippingThreshold: 49900,
	ShippingFee:           4900,
	CODFee:                3000,
}

// Quote is the client-side pricing preview. It is an estimate for display;
// the draft-order and confirm endpoints own the final charged amount.
type Quote struct {
	Subtotal       int64
	Shipping       int64
	CODFee         int64
	CouponDiscount int64
	Total          int64
}

// Quote derives the preview for a subtotal, payment method and coupon
// discount. Shipping waives at the threshold regardless of method; the
// total never goes below zero.
func (r Rates) Quote(subtotal int64, method PaymentMethod, couponDiscount int64) Quote {
	q := Quote{
		Subtotal:       subtotal,
		CouponDiscount: couponDiscount,
	}

	if subtotal < r.FreeShippingThreshold {
		q.Shipping = r.ShippingFee
	}
	if method == MethodCOD {
		q.CODFee = r.CODFee
	}

	q.Total = subtotal + q.Shipping + q.CODFee - couponDiscount
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}
