package order

import "time"

type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusPaid           Status = "PAID"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPacked         Status = "PACKED"
	StatusShipped        Status = "SHIPPED"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusFailed         Status = "FAILED"
	StatusRefundPending  Status = "REFUND_PENDING"
	StatusRefunded       Status = "REFUNDED"
	StatusReturned       Status = "RETURNED"
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further fulfillment progression happens.
// Polling stops once a terminal status is observed.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// Cancellable statuses are the early-enough fulfillment set.
func (s Status) Cancellable() bool {
	switch s {
	case StatusDraft, StatusPaymentPending, StatusPaid, StatusConfirmed, StatusPacked:
		return true
	}
	return false
}

// Returnable is only true once the order has been delivered.
func (s Status) Returnable() bool {
	return s == StatusDelivered
}

type Item struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	ProductPhoto string `json:"productPhoto"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
}

type ShippingAddress struct {
	HouseNo  string `json:"houseNo"`
	Area     string `json:"area"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	State    string `json:"state"`
	PinCode  string `json:"pinCode"`
	Country  string `json:"country"`
	Type     string `json:"type"`
}

// Checkpoint is one normalized tracking event.
type Checkpoint struct {
	Time     time.Time `json:"time"`
	Status   string    `json:"status"`
	Location string    `json:"location"`
}

// Shipment is a carrier consignment attached to an order. Status and
// Checkpoints embedded here are the fallback when the live tracking query
// fails.
type Shipment struct {
	AWB         string       `json:"awb"`
	Carrier     string       `json:"carrier"`
	Status      string       `json:"status"`
	TrackingURL string       `json:"trackingUrl"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Order snapshots the shipping address at creation time; amounts are paise.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Status          Status          `json:"status"`
	Items           []Item          `json:"items"`
	CustomerName    string          `json:"customerName"`
	Phone           string          `json:"phone"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Subtotal        int64           `json:"subtotal"`
	ShippingFee     int64           `json:"shippingFee"`
	CODFee          int64           `json:"codFee"`
	Discount        int64           `json:"discount"`
	TotalPayable    int64           `json:"totalPayable"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	Shipments       []Shipment      `json:"shipments"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
