package models

import "time"

// Item represents a catalog product. Items are immutable from the shopper's
// side; only the admin upload flow inserts them.
type Item struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name         string    `json:"name" validate:"required,min=2,max=100"`
	Category     string    `json:"category" validate:"required,max=100"`
	Subcategory  string    `json:"subcategory" validate:"omitempty,max=100"`
	Price        float64   `json:"price" validate:"gte=0"`
	OfferPercent float64   `json:"offer_percent" validate:"gte=0,lte=100"`
	Stock        int       `json:"stock" validate:"gte=0"`
	Sold         int       `json:"sold" validate:"gte=0"`
	ImageURL     string    `json:"image_url"`
	Description  string    `json:"description" validate:"omitempty,max=2000"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// EffectivePrice is the item price after applying its percentage offer.
func (i Item) EffectivePrice() float64 {
	return i.Price * (1 - i.OfferPercent/100)
}
