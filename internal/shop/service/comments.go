package service

import (
	"context"
	"fmt"

	"github.com/sirbootoo/minishop-test/internal/shop"
	"github.com/sirbootoo/minishop-test/internal/shop/pagination"
)

// ListComments pages through the comments of one product. Replies come back
// as flat entries next to top-level comments; ReplyTo is carried as data and
// never resolved into a thread here.
func (s *Service) ListComments(ctx context.Context, productID int64, page int) ([]shop.Comment, pagination.Meta, error) {
	total, err := s.repo.CountComments(ctx, productID)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("repo count comments: %w", err)
	}

	comments, err := s.repo.ListComments(ctx, productID, s.pager.Size(), s.pager.Offset(page))
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("repo list comments: %w", err)
	}

	return comments, s.pager.Meta(page, total), nil
}

// AddComment persists a submission that already passed input validation.
func (s *Service) AddComment(ctx context.Context, nc shop.NewComment) (shop.Comment, error) {
	if _, err := s.repo.FindProduct(ctx, nc.ProductID); err != nil {
		return shop.Comment{}, fmt.Errorf("repo find product: %w", err)
	}

	comment, err := s.repo.CreateComment(ctx, nc)
	if err != nil {
		return shop.Comment{}, fmt.Errorf("repo create comment: %w", err)
	}

	s.commentsCreated.Inc()
	return comment, nil
}
