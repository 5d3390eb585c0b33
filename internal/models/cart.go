// internal/models/cart.go
package models

// CartItem is a line item: a weak reference to a product plus a quantity.
type CartItem struct {
	ProductID string `json:"product" bson:"product"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

type Cart struct {
	BaseModel `bson:",inline"`
	Items     CartItems `json:"products" bson:"products" gorm:"type:jsonb;not null"`
	// Version is bumped on every save and checked by adapters to reject
	// writes based on a stale read.
	Version int64 `json:"-" bson:"version" gorm:"not null;default:0"`
}

// IndexOf returns the position of the line item for productID or -1.
func (c *Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate items without touching a
// cached or shared instance.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make(CartItems, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
