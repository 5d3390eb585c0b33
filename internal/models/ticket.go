// internal/models/ticket.go
package models

import "time"

// Ticket is the immutable receipt of a settled purchase.
type Ticket struct {
	BaseModel        `bson:",inline"`
	Code             string    `json:"code" bson:"code" gorm:"uniqueIndex;size:64;not null"`
	PurchaseDatetime time.Time `json:"purchase_datetime" bson:"purchase_datetime" gorm:"not null"`
	Amount           float64   `json:"amount" bson:"amount" gorm:"type:decimal(12,2);not null"`
	Purchaser        string    `json:"purchaser" bson:"purchaser" gorm:"size:255;not null;index"`
}
