package models

import "time"

// Source is a registry entry mapping a publisher domain to its bias
// rating. Domains are stored normalized: lowercase, no leading "www.".
type Source struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"not null"`
	Domain       string       `json:"domain" gorm:"uniqueIndex;not null"`
	BiasRating   BiasCategory `json:"bias_rating" gorm:"not null"`
	ReferenceURL string       `json:"reference_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
