// internal/models/dto.go
package models

import "time"

// Response shapes. Handlers and services never return persisted records
// directly; they build one of these first.

type ProductDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

func NewProductDTO(p *Product) ProductDTO {
	thumbnails := []string(p.Thumbnails)
	if thumbnails == nil {
		thumbnails = []string{}
	}
	return ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Status:      p.Status,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  thumbnails,
	}
}

// ProductSummary is the projection embedded in cart lines.
type ProductSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

func NewProductSummary(p *Product) *ProductSummary {
	return &ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price, Category: p.Category}
}

// CartLineDTO carries the product reference even when the product has been
// deleted, in which case Product is nil.
type CartLineDTO struct {
	ProductID string          `json:"productId"`
	Product   *ProductSummary `json:"product"`
	Quantity  int             `json:"quantity"`
}

type CartDTO struct {
	ID       string        `json:"id"`
	Products []CartLineDTO `json:"products"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Role      Role   `json:"role"`
	Cart      string `json:"cart"`
}

func NewUserDTO(u *User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Role:      u.Role,
		Cart:      u.CartID,
	}
}

type TicketDTO struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	PurchaseDatetime time.Time `json:"purchase_datetime"`
	Amount           float64   `json:"amount"`
	Purchaser        string    `json:"purchaser"`
}

func NewTicketDTO(t *Ticket) TicketDTO {
	return TicketDTO{
		ID:               t.ID,
		Code:             t.Code,
		PurchaseDatetime: t.PurchaseDatetime,
		Amount:           t.Amount,
		Purchaser:        t.Purchaser,
	}
}

// Reasons a line item is left in the cart after a purchase.
const (
	ReasonProductMissing    = "product no longer exists"
	ReasonInsufficientStock = "insufficient stock"
)

type SettlementItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

// Settlement is the outcome of reconciling a cart against live stock.
type Settlement struct {
	Amount            float64          `json:"amount"`
	PurchasedItems    []SettlementItem `json:"purchasedItems"`
	NotPurchasedItems []SettlementItem `json:"notPurchasedItems"`
}
