package cart

// Amounts are int64 paise (minor units) everywhere in this module.

// Line is one cart position as the backend reports it.
type Line struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"productId"`
	ProductName     string `json:"productName"`
	ProductPhoto    string `json:"productPhoto"`
	ProductPrice    int64  `json:"productPrice"`
	DiscountedPrice int64  `json:"discountedPrice"`
	Discount        int    `json:"discount"`
	Quantity        int    `json:"quantity"`
	TotalPrice      int64  `json:"totalPrice"`
	DiscountedTotal int64  `json:"discountedTotal"`
}

// Summary is the authoritative cart state. The backend computes the totals;
// the client only overlays optimistic values until the next fetch.
// Invariant (backend-owned): TotalAmount = OriginalTotalAmount - TotalSavings.
type Summary struct {
	Items               []Line `json:"items"`
	TotalItems          int    `json:"totalItems"`
	OriginalTotalAmount int64  `json:"originalTotalAmount"`
	TotalSavings        int64  `json:"totalSavings"`
	TotalAmount         int64  `json:"totalAmount"`
}

// Line returns the line for productID, or nil.
func (s *Summary) Line(productID int64) *Line {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}
