package model

import "time"

// Institution is an academic body allowed to publish courses once verified.
type Institution struct {
	ObjectType string    `json:"objectType"`
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Wallet     string    `json:"wallet"`   // Identity that acts for the institution
	Verified   bool      `json:"verified"` // Set only by the registry admin
	Metadata   string    `json:"metadata"`
	CreatedAt  time.Time `json:"createdAt"`
}
