// Package models defines the domain entities shared by storage, services,
// and the HTTP API.
package models

import (
	"time"
)

// Client represents a customer that owns one or more projects.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
