// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

type Product struct {
	BaseModel   `bson:",inline"`
	Title       string         `json:"title" bson:"title" gorm:"size:255;not null"`
	Description string         `json:"description" bson:"description" gorm:"type:text"`
	Code        string         `json:"code" bson:"code" gorm:"uniqueIndex;size:100;not null"`
	Price       float64        `json:"price" bson:"price" gorm:"type:decimal(12,2);not null"`
	Status      bool           `json:"status" bson:"status" gorm:"not null;index"`
	Stock       int            `json:"stock" bson:"stock" gorm:"not null"`
	Category    string         `json:"category" bson:"category" gorm:"size:100;index"`
	Thumbnails  pq.StringArray `json:"thumbnails" bson:"thumbnails" gorm:"type:text[]"`
}
