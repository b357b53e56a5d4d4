package shop

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrEmptyCart    = errors.New("cart is empty")
)

const (
	OrderEventsQueue  = "shop.orders.events"
	EventOrderCreated = "order_created"
)

type Product struct {
	ID          int64   `json:"id" example:"1"`
	Title       string  `json:"title" example:"Road Bike"`
	Price       float64 `json:"price" example:"249.99"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	UserID      int64   `json:"user_id"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Long        float64 `json:"long"`
}

// AnnotatedProduct carries the request-scoped distance between the product
// and the requesting user. It is never persisted.
type AnnotatedProduct struct {
	Product
	DistanceFromUser float64 `json:"distance_from_user"`
}

type User struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Lat   *float64 `json:"lat,omitempty"`
	Long  *float64 `json:"long,omitempty"`
}

type Comment struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserEmail string    `json:"user_email"`
	Body      string    `json:"body"`
	ReplyTo   *int64    `json:"reply_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment is a validated comment submission. ReplyTo references another
// comment by id; the thread is never materialized into a tree here.
type NewComment struct {
	ProductID int64
	UserEmail string
	Body      string
	ReplyTo   *int64
}

// CartRow is the stored shape of a cart entry: a product reference plus a
// quantity. Product data is hydrated in a separate batch lookup.
type CartRow struct {
	ProductID int64
	Quantity  int
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem snapshots the product title and price at checkout time, so
// later product edits never change an existing invoice.
type OrderItem struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type OrderEvent struct {
	EventType string    `json:"event_type"`
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	Total     float64   `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}
