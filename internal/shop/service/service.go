package service

import (
	"context"
	"log/slog"

	"github.com/sirbootoo/minishop-test/internal/shop"
	"github.com/sirbootoo/minishop-test/internal/shop/pagination"

	"github.com/prometheus/client_golang/prometheus"
)

type Repository interface {
	CountProducts(ctx context.Context) (int64, error)
	ListProducts(ctx context.Context, limit, offset int) ([]shop.Product, error)
	FindProduct(ctx context.Context, id int64) (shop.Product, error)
	FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]shop.Product, error)

	CountComments(ctx context.Context, productID int64) (int64, error)
	ListComments(ctx context.Context, productID int64, limit, offset int) ([]shop.Comment, error)
	CreateComment(ctx context.Context, nc shop.NewComment) (shop.Comment, error)

	CartRows(ctx context.Context, userID int64) ([]shop.CartRow, error)
	AddCartItem(ctx context.Context, userID, productID int64) error
	RemoveCartItem(ctx context.Context, userID, productID int64) error

	CreateOrder(ctx context.Context, userID int64, items []shop.OrderItem) (shop.Order, error)
	FindOrder(ctx context.Context, id int64) (shop.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]shop.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, event shop.OrderEvent) error
}

type Service struct {
	repo            Repository
	publisher       Publisher
	pager           pagination.Pager
	logger          *slog.Logger
	ordersCreated   prometheus.Counter
	commentsCreated prometheus.Counter
}

func New(repo Repository, publisher Publisher, pager pagination.Pager, logger *slog.Logger, ordersCreated, commentsCreated prometheus.Counter) *Service {
	return &Service{
		repo:            repo,
		publisher:       publisher,
		pager:           pager,
		logger:          logger,
		ordersCreated:   ordersCreated,
		commentsCreated: commentsCreated,
	}
}
