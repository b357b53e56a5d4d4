//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirbootoo/minishop-test/internal/shop"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBName = "test_shop"
	testDBUser = "test"
	testDBPass = "test"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17-alpine"),
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	migrationsPath := migrationsDir(t)
	m, err := migrate.New("file://"+migrationsPath, connStr)
	if err != nil {
		t.Fatalf("init migrate: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("run migrations: %v", err)
	}
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		t.Fatalf("close migrate source: %v", srcErr)
	}
	if dbErr != nil {
		t.Fatalf("close migrate db: %v", dbErr)
	}

	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations", "shop")
}

func seedUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO users (email, lat, long) VALUES ($1, 52.52, 13.405) RETURNING id`,
		email,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func seedProduct(t *testing.T, db *sql.DB, userID int64, title string, price float64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO products (title, price, description, image_url, user_id, address, lat, long)
		VALUES ($1, $2, 'desc', 'img.png', $3, 'Somewhere 1', 48.1, 11.6)
		RETURNING id
	`, title, price, userID).Scan(&id)
	if err != nil {
		t.Fatalf("seed product %q: %v", title, err)
	}
	return id
}

func TestPostgresRepository_Products(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	userID := seedUser(t, db, "seller@example.com")
	ids := make([]int64, 0, 5)
	for _, title := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		ids = append(ids, seedProduct(t, db, userID, title, 10))
	}

	t.Run("count", func(t *testing.T) {
		count, err := repo.CountProducts(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 5 {
			t.Fatalf("want 5, got %d", count)
		}
	})

	t.Run("list respects limit and offset", func(t *testing.T) {
		all, err := repo.ListProducts(ctx, 100, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 5 {
			t.Fatalf("want 5 items, got %d", len(all))
		}

		page2, err := repo.ListProducts(ctx, 2, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page2) != 2 {
			t.Fatalf("want 2 items, got %d", len(page2))
		}
	})

	t.Run("consecutive pages partition the table", func(t *testing.T) {
		seen := make(map[int64]int)
		for offset := 0; offset < len(ids); offset += 2 {
			page, err := repo.ListProducts(ctx, 2, offset)
			if err != nil {
				t.Fatalf("list at offset %d: %v", offset, err)
			}
			for _, p := range page {
				seen[p.ID]++
			}
		}

		for _, id := range ids {
			if seen[id] != 1 {
				t.Fatalf("product %d appeared %d times across pages", id, seen[id])
			}
		}
		if len(seen) != len(ids) {
			t.Fatalf("pages covered %d products, want %d", len(seen), len(ids))
		}
	})

	t.Run("offset past the end returns empty non-nil slice", func(t *testing.T) {
		list, err := repo.ListProducts(ctx, 20, 40)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Fatalf("want empty slice, got %v", list)
		}
	})

	t.Run("find by id", func(t *testing.T) {
		p, err := repo.FindProduct(ctx, ids[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Title != "Alpha" || p.Lat != 48.1 {
			t.Fatalf("unexpected product: %+v", p)
		}
	})

	t.Run("find missing id", func(t *testing.T) {
		_, err := repo.FindProduct(ctx, 999999)
		if !errors.Is(err, shop.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("batch find skips missing ids", func(t *testing.T) {
		byID, err := repo.FindProductsByIDs(ctx, []int64{ids[0], ids[1], 999999})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(byID) != 2 {
			t.Fatalf("want 2 products, got %d", len(byID))
		}
		if _, ok := byID[999999]; ok {
			t.Fatal("missing id should be absent")
		}
	})
}

func TestPostgresRepository_Comments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	userID := seedUser(t, db, "seller@example.com")
	productA := seedProduct(t, db, userID, "A", 1)
	productB := seedProduct(t, db, userID, "B", 1)

	first, err := repo.CreateComment(ctx, shop.NewComment{ProductID: productA, UserEmail: "x@y.z", Body: "first"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := repo.CreateComment(ctx, shop.NewComment{ProductID: productA, UserEmail: "x@y.z", Body: "reply", ReplyTo: &first.ID}); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if _, err := repo.CreateComment(ctx, shop.NewComment{ProductID: productB, UserEmail: "x@y.z", Body: "other"}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	t.Run("count is filtered by product", func(t *testing.T) {
		count, err := repo.CountComments(ctx, productA)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 2 {
			t.Fatalf("want 2, got %d", count)
		}
	})

	t.Run("list is filtered by product", func(t *testing.T) {
		list, err := repo.ListComments(ctx, productA, 20, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("want 2 comments, got %d", len(list))
		}
		for _, c := range list {
			if c.ProductID != productA {
				t.Fatalf("comment %d from wrong product %d", c.ID, c.ProductID)
			}
		}
		if list[1].ReplyTo == nil || *list[1].ReplyTo != first.ID {
			t.Fatalf("reply reference lost: %+v", list[1])
		}
	})
}

func TestPostgresRepository_CartAndOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	userID := seedUser(t, db, "buyer@example.com")
	bike := seedProduct(t, db, userID, "Bike", 100)
	bell := seedProduct(t, db, userID, "Bell", 5)

	t.Run("add increments existing rows", func(t *testing.T) {
		if err := repo.AddCartItem(ctx, userID, bike); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := repo.AddCartItem(ctx, userID, bike); err != nil {
			t.Fatalf("add again: %v", err)
		}
		if err := repo.AddCartItem(ctx, userID, bell); err != nil {
			t.Fatalf("add bell: %v", err)
		}

		rows, err := repo.CartRows(ctx, userID)
		if err != nil {
			t.Fatalf("cart rows: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("want 2 rows, got %d", len(rows))
		}
		if rows[0].ProductID != bike || rows[0].Quantity != 2 {
			t.Fatalf("unexpected first row: %+v", rows[0])
		}
	})

	t.Run("remove missing row returns ErrNotFound", func(t *testing.T) {
		err := repo.RemoveCartItem(ctx, userID, 999999)
		if !errors.Is(err, shop.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("create order snapshots items and clears the cart", func(t *testing.T) {
		order, err := repo.CreateOrder(ctx, userID, []shop.OrderItem{
			{Title: "Bike", Price: 100, Quantity: 2},
			{Title: "Bell", Price: 5, Quantity: 1},
		})
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
		if order.ID == 0 || order.CreatedAt.IsZero() {
			t.Fatalf("unexpected order: %+v", order)
		}

		rows, err := repo.CartRows(ctx, userID)
		if err != nil {
			t.Fatalf("cart rows: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("cart not cleared: %v", rows)
		}

		stored, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			t.Fatalf("find order: %v", err)
		}
		if len(stored.Items) != 2 {
			t.Fatalf("want 2 items, got %d", len(stored.Items))
		}
		if stored.Items[0].Title != "Bike" || stored.Items[1].Title != "Bell" {
			t.Fatalf("item order lost: %+v", stored.Items)
		}
	})

	t.Run("list orders for user", func(t *testing.T) {
		orders, err := repo.ListOrders(ctx, userID)
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(orders) != 1 {
			t.Fatalf("want 1 order, got %d", len(orders))
		}

		other := seedUser(t, db, "other@example.com")
		none, err := repo.ListOrders(ctx, other)
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(none) != 0 {
			t.Fatalf("want no orders for other user, got %d", len(none))
		}
	})

	t.Run("find missing order", func(t *testing.T) {
		_, err := repo.FindOrder(ctx, 999999)
		if !errors.Is(err, shop.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresRepository_Users(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	id := seedUser(t, db, "user@example.com")

	user, err := repo.FindUser(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "user@example.com" || user.Lat == nil || *user.Lat != 52.52 {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := repo.FindUser(ctx, 999999); !errors.Is(err, shop.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_Health(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)

	if err := repo.Health(); err != nil {
		t.Fatalf("health check failed: %v", err)
	}
}
