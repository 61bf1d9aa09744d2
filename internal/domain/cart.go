package domain

import "time"

type Cart struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"-"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
}

// CartItem is one server-owned cart position. ID is the key by which the
// cart service addresses the position in update and delete calls.
type CartItem struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"-"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// TotalQuantity sums item quantities; an empty cart yields 0.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
