package models

import "time"

// APIKey stores only the bcrypt digest and a short display prefix of a key
type APIKey struct {
	ID        string
	UserID    string
	Prefix    string
	HashedKey string
	Name      string
	CreatedAt time.Time
	LastUsed  *time.Time
}

// APIKeyResponse is returned once, at creation. Key is the raw secret.
type APIKeyResponse struct {
	Key       string    `json:"key"`
	Prefix    string    `json:"prefix"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKeyInfo is the listing view of a key
type APIKeyInfo struct {
	Prefix    string     `json:"prefix"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used"`
}

// ToInfo strips the digest from a stored key
func (k *APIKey) ToInfo() APIKeyInfo {
	return APIKeyInfo{
		Prefix:    k.Prefix,
		Name:      k.Name,
		CreatedAt: k.CreatedAt,
		LastUsed:  k.LastUsed,
	}
}
