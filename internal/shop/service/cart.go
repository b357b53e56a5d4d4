package service

import (
	"context"
	"fmt"

	"github.com/sirbootoo/minishop-test/internal/shop"
)

// Cart returns the user's cart with product data hydrated in one batch
// lookup. Rows whose product has been deleted since they were added are
// dropped rather than surfaced as an error.
func (s *Service) Cart(ctx context.Context, userID int64) ([]shop.CartItem, error) {
	rows, err := s.repo.CartRows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo cart rows: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}

	products, err := s.repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("repo products by ids: %w", err)
	}

	items := make([]shop.CartItem, 0, len(rows))
	for _, row := range rows {
		product, ok := products[row.ProductID]
		if !ok {
			s.logger.Warn("cart references missing product",
				"user_id", userID,
				"product_id", row.ProductID,
			)
			continue
		}
		items = append(items, shop.CartItem{Product: product, Quantity: row.Quantity})
	}

	return items, nil
}

func (s *Service) AddToCart(ctx context.Context, userID, productID int64) error {
	if _, err := s.repo.FindProduct(ctx, productID); err != nil {
		return fmt.Errorf("repo find product: %w", err)
	}

	if err := s.repo.AddCartItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("repo add cart item: %w", err)
	}
	return nil
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	if err := s.repo.RemoveCartItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("repo remove cart item: %w", err)
	}
	return nil
}

// Checkout returns the hydrated cart together with its total cost.
func (s *Service) Checkout(ctx context.Context, userID int64) ([]shop.CartItem, float64, error) {
	items, err := s.Cart(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}

	return items, total, nil
}
