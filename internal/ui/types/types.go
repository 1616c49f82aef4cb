package types

import (
	"encoding/json"
	"time"
)

// =============================================================================
// API RESPONSE TYPES
// =============================================================================
// These types mirror the JSON returned by the shopfront API and are shared
// to avoid circular imports between auth ↔ client ↔ handlers

// HealthStatus is returned by GET /api/health
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

type Category struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	ImageURL        *string         `json:"image_url"`
	AttributeSchema json.RawMessage `json:"attribute_schema,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	PriceCents   int64           `json:"price_cents"`
	Stock        int32           `json:"stock"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ImageURL     *string         `json:"image_url"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
	IsFeatured   bool            `json:"is_featured"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductList is returned by GET /api/products
type ProductList struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Limit    int32     `json:"limit"`
	Offset   int32     `json:"offset"`
}

// ProductQuery holds the optional filters accepted by GET /api/products
type ProductQuery struct {
	CategoryID string
	Search     string
	Featured   bool
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string // newest, price_asc, price_desc, name_asc, name_desc
	Limit      int
	Offset     int
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is returned by POST /api/users/login
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	User      User   `json:"user"`
}

type CartItem struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	ImageURL      *string `json:"image_url"`
	PriceCents    int64   `json:"price_cents"`
	Quantity      int32   `json:"quantity"`
	Stock         int32   `json:"stock"`
	SubtotalCents int64   `json:"subtotal_cents"`
}

type Cart struct {
	Items      []CartItem `json:"items"`
	ItemCount  int32      `json:"item_count"`
	TotalCents int64      `json:"total_cents"`
}

// MessageResponse is returned by endpoints that only report an outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// SESSION TYPES
// =============================================================================

// Session is the signed-in user's state, decoded from the API access token stored in the session cookie
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	Name        string
	IsAdmin     bool
	ExpiresAt   time.Time
}

// ErrorReport is a client-side error captured by the monitoring service and sent to POST /api/monitoring/errors
type ErrorReport struct {
	Message    string            `json:"message"`
	Kind       string            `json:"kind"`
	Status     int               `json:"status"`
	Path       string            `json:"path,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Context    map[string]string `json:"context,omitempty"`
}
