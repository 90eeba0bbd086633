package domain

import (
	"strings"
)

type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// NewClient creates a new client with required fields
func NewClient(name, phone string) *Client {
	return &Client{
		ID:    NewID(),
		Name:  strings.TrimSpace(name),
		Phone: strings.TrimSpace(phone),
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("client name", "is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return NewValidationError("client phone", "is required")
	}
	return nil
}

// Matches reports whether the client name or phone contains the search term
func (c *Client) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(c.Phone, term)
}
