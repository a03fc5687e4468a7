package model

// Pitch is a bookable sports pitch.  Pitches are created when the
// catalog is seeded and are never mutated afterwards.
//
// Fields:
//  ID           – stable identifier, never reused.
//  Name         – display name, used for catalog ordering.
//  Location     – venue the pitch belongs to.
//  PricePerHour – positive hourly price.
//  ImageURL     – display image reference.
//  Description  – free text shown to customers.
type Pitch struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name" yaml:"name"`
	Location     string  `json:"location" yaml:"location"`
	PricePerHour float64 `json:"price_per_hour" yaml:"price_per_hour"`
	ImageURL     string  `json:"image_url" yaml:"image_url"`
	Description  string  `json:"description" yaml:"description"`
}
