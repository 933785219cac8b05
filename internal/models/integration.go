package models

import (
	"encoding/json"
	"time"
)

// Webhook is an outbound notification target registered by a user
type Webhook struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Active    bool      `json:"active"`
	Secret    *string   `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Integration is a connected third-party service. Connections are mocked.
type Integration struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Provider  string          `json:"provider"`
	Settings  json.RawMessage `json:"settings"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// AvailableIntegration describes a provider a user may connect
type AvailableIntegration struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Icon   string `json:"icon" yaml:"icon"`
	Status string `json:"status" yaml:"status"`
}
