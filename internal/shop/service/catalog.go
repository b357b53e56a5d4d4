package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirbootoo/minishop-test/internal/shop"
	"github.com/sirbootoo/minishop-test/internal/shop/geo"
	"github.com/sirbootoo/minishop-test/internal/shop/pagination"
)

// ListProducts returns one page of products sorted ascending by their
// distance to the requester. The sort is page-local: items are fetched in
// storage order first and only the fetched slice is reordered. A nil
// requester, or any coordinate the distance computation rejects, pins the
// distance to 0 instead of failing the listing.
func (s *Service) ListProducts(ctx context.Context, page int, requester *geo.Coordinate) ([]shop.AnnotatedProduct, pagination.Meta, error) {
	total, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("repo count: %w", err)
	}

	products, err := s.repo.ListProducts(ctx, s.pager.Size(), s.pager.Offset(page))
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("repo list: %w", err)
	}

	annotated := make([]shop.AnnotatedProduct, 0, len(products))
	for _, p := range products {
		var distance float64
		if requester != nil {
			d, err := geo.Distance(geo.Coordinate{Lat: p.Lat, Long: p.Long}, *requester)
			if err == nil {
				distance = d
			}
		}
		annotated = append(annotated, shop.AnnotatedProduct{Product: p, DistanceFromUser: distance})
	}

	// Stable keeps the fetch order for equal distances.
	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].DistanceFromUser < annotated[j].DistanceFromUser
	})

	return annotated, s.pager.Meta(page, total), nil
}

// ListIndex is the home-page variant of ListProducts: same pagination, no
// distance annotation and no reordering.
func (s *Service) ListIndex(ctx context.Context, page int) ([]shop.Product, pagination.Meta, error) {
	total, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("repo count: %w", err)
	}

	products, err := s.repo.ListProducts(ctx, s.pager.Size(), s.pager.Offset(page))
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("repo list: %w", err)
	}

	return products, s.pager.Meta(page, total), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (shop.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return shop.Product{}, fmt.Errorf("repo find product: %w", err)
	}
	return product, nil
}
