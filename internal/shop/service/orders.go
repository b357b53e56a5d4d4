package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirbootoo/minishop-test/internal/shop"
)

// CreateOrder turns the user's cart into an order. Item titles and prices
// are snapshotted so the invoice survives later product edits; the cart is
// cleared in the same transaction as the insert.
func (s *Service) CreateOrder(ctx context.Context, userID int64) (shop.Order, error) {
	cart, err := s.Cart(ctx, userID)
	if err != nil {
		return shop.Order{}, err
	}
	if len(cart) == 0 {
		return shop.Order{}, shop.ErrEmptyCart
	}

	items := make([]shop.OrderItem, 0, len(cart))
	var total float64
	for _, ci := range cart {
		items = append(items, shop.OrderItem{
			Title:    ci.Product.Title,
			Price:    ci.Product.Price,
			Quantity: ci.Quantity,
		})
		total += ci.Product.Price * float64(ci.Quantity)
	}

	order, err := s.repo.CreateOrder(ctx, userID, items)
	if err != nil {
		return shop.Order{}, fmt.Errorf("repo create order: %w", err)
	}

	if err := s.publisher.Publish(ctx, shop.OrderEvent{
		EventType: shop.EventOrderCreated,
		OrderID:   order.ID,
		UserID:    userID,
		Total:     total,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish order_created event failed",
			"order_id", order.ID,
			"error", err,
		)
	}

	s.ordersCreated.Inc()
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]shop.Order, error) {
	orders, err := s.repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo list orders: %w", err)
	}
	return orders, nil
}

// OrderForUser loads an order and enforces that it belongs to the requester.
// The ownership check runs before any invoice output is produced.
func (s *Service) OrderForUser(ctx context.Context, orderID, userID int64) (shop.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return shop.Order{}, fmt.Errorf("repo find order: %w", err)
	}

	if order.UserID != userID {
		return shop.Order{}, shop.ErrUnauthorized
	}

	return order, nil
}
