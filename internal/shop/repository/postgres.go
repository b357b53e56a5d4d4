package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirbootoo/minishop-test/internal/shop"

	"github.com/lib/pq"
)

const healthCheckTimeout = 2 * time.Second

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, title, price, description, image_url, user_id, address, lat, long`

func scanProduct(row interface{ Scan(...any) error }) (shop.Product, error) {
	var p shop.Product
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.ImageURL, &p.UserID, &p.Address, &p.Lat, &p.Long)
	return p, err
}

func (r *PostgresRepository) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// ListProducts returns a page of products in insertion order. The id order
// keeps consecutive pages a disjoint partition of the table; display order is
// decided by the caller, the distance sort happens after this fetch.
func (r *PostgresRepository) ListProducts(ctx context.Context, limit, offset int) ([]shop.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]shop.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) FindProduct(ctx context.Context, id int64) (shop.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Product{}, shop.ErrNotFound
	}
	if err != nil {
		return shop.Product{}, fmt.Errorf("find product %d: %w", id, err)
	}
	return p, nil
}

// FindProductsByIDs batch-resolves product references, e.g. when hydrating a
// cart. Missing ids are silently absent from the result.
func (r *PostgresRepository) FindProductsByIDs(ctx context.Context, ids []int64) (map[int64]shop.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]shop.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		byID[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return byID, nil
}

func (r *PostgresRepository) FindUser(ctx context.Context, id int64) (shop.User, error) {
	query := `SELECT id, email, lat, long FROM users WHERE id = $1`

	var u shop.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Lat, &u.Long)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.User{}, shop.ErrNotFound
	}
	if err != nil {
		return shop.User{}, fmt.Errorf("find user %d: %w", id, err)
	}
	return u, nil
}

func (r *PostgresRepository) CountComments(ctx context.Context, productID int64) (int64, error) {
	var total int64
	query := `SELECT COUNT(*) FROM comments WHERE product_id = $1`
	if err := r.db.QueryRowContext(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) ListComments(ctx context.Context, productID int64, limit, offset int) ([]shop.Comment, error) {
	query := `
		SELECT id, product_id, user_email, body, reply_to, created_at
		FROM comments
		WHERE product_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	list := make([]shop.Comment, 0)
	for rows.Next() {
		var c shop.Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.UserEmail, &c.Body, &c.ReplyTo, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) CreateComment(ctx context.Context, nc shop.NewComment) (shop.Comment, error) {
	query := `
		INSERT INTO comments (product_id, user_email, body, reply_to)
		VALUES ($1, $2, $3, $4)
		RETURNING id, product_id, user_email, body, reply_to, created_at
	`

	var c shop.Comment
	err := r.db.QueryRowContext(ctx, query, nc.ProductID, nc.UserEmail, nc.Body, nc.ReplyTo).
		Scan(&c.ID, &c.ProductID, &c.UserEmail, &c.Body, &c.ReplyTo, &c.CreatedAt)
	if err != nil {
		return shop.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) CartRows(ctx context.Context, userID int64) ([]shop.CartRow, error) {
	query := `
		SELECT product_id, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	list := make([]shop.CartRow, 0)
	for rows.Next() {
		var row shop.CartRow
		if err := rows.Scan(&row.ProductID, &row.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart row: %w", err)
		}
		list = append(list, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) AddCartItem(ctx context.Context, userID, productID int64) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1
	`

	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return shop.ErrNotFound
	}

	return nil
}

// CreateOrder snapshots the given items into a new order and clears the
// user's cart in the same transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, userID int64, items []shop.OrderItem) (shop.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return shop.Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	order := shop.Order{UserID: userID, Items: items}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id) VALUES ($1) RETURNING id, created_at`,
		userID,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return shop.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, title, price, quantity, position) VALUES ($1, $2, $3, $4, $5)`,
			order.ID, item.Title, item.Price, item.Quantity, i,
		)
		if err != nil {
			return shop.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return shop.Order{}, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return shop.Order{}, fmt.Errorf("commit order tx: %w", err)
	}

	return order, nil
}

func (r *PostgresRepository) FindOrder(ctx context.Context, id int64) (shop.Order, error) {
	var order shop.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Order{}, shop.ErrNotFound
	}
	if err != nil {
		return shop.Order{}, fmt.Errorf("find order %d: %w", id, err)
	}

	order.Items, err = r.orderItems(ctx, id)
	if err != nil {
		return shop.Order{}, err
	}
	return order, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, userID int64) ([]shop.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	list := make([]shop.Order, 0)
	for rows.Next() {
		var order shop.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range list {
		list[i].Items, err = r.orderItems(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return list, nil
}

func (r *PostgresRepository) orderItems(ctx context.Context, orderID int64) ([]shop.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT title, price, quantity FROM order_items WHERE order_id = $1 ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]shop.OrderItem, 0)
	for rows.Next() {
		var item shop.OrderItem
		if err := rows.Scan(&item.Title, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}
