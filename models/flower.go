package models

import "time"

// Flower is a catalog record as served by the flower shop API.
type Flower struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Photo       string  `json:"photo"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// FlowerLine is the per-flower breakdown inside a price quote.
type FlowerLine struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"total_price"`
}

// PriceQuote is the catalog's answer for a flower-quantity map. It is
// derived data, never stored apart from the map that produced it.
type PriceQuote struct {
	TotalPrice float64               `json:"total_price"`
	Flowers    map[string]FlowerLine `json:"flowers"`
}

// DeliveryQuote is a weather-conditioned delivery estimate, recomputed
// on every confirmation attempt.
type DeliveryQuote struct {
	Cost       float64
	ETA        time.Time
	Conditions string // raw weather description, empty when unavailable
}
