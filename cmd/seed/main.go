// Package main provides a CLI tool for seeding the database with demo data:
// two users selling overlapping product names, batches with mixed expiry
// dates, a week of movements and price history.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/storage/postgres"
	"stocktrack/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)

	for _, u := range demoUsers() {
		if err := seedUser(ctx, txm, log, u); err != nil {
			log.Fatalw("failed to seed user", "email", u.email, "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

type demoUser struct {
	email    string
	username string
	password string
	products []demoProduct
}

type demoProduct struct {
	name     string
	typ      stock.ProductType
	price    string
	quantity int64
	// expiredDaysAgo > 0 seeds an already-expired batch
	expiredDaysAgo int
}

func demoUsers() []demoUser {
	return []demoUser{
		{
			email:    "alice@stocktrack.dev",
			username: "alice",
			password: "Alice123!",
			products: []demoProduct{
				{name: "Rice 5kg", typ: stock.TypeFood, price: "12.50", quantity: 40},
				{name: "Olive Oil 1L", typ: stock.TypeFood, price: "8.90", quantity: 2},
				{name: "Dish Soap", typ: stock.TypeHousehold, price: "2.30", quantity: 15, expiredDaysAgo: 3},
				{name: "Orange Juice 1L", typ: stock.TypeBeverage, price: "3.10", quantity: 12},
			},
		},
		{
			email:    "bob@stocktrack.dev",
			username: "bob",
			password: "Bob12345!",
			products: []demoProduct{
				{name: "Rice 5kg", typ: stock.TypeFood, price: "11.80", quantity: 25},
				{name: "Olive Oil 1L", typ: stock.TypeFood, price: "9.40", quantity: 30},
				{name: "Green Tea", typ: stock.TypeBeverage, price: "4.20", quantity: 8},
			},
		},
	}
}

// seedUser creates one user with products, batches, a week of movements
// and price history, all in a single transaction.
func seedUser(ctx context.Context, txm *postgres.TxManager, log *logger.Logger, u demoUser) error {
	q := txm.GetQuerier(ctx)

	var existingID id.ID
	err := q.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		u.email,
	).Scan(&existingID)
	if err == nil {
		log.Infow("user already exists, skipping", "email", u.email, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check user exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txm.GetQuerier(ctx)

		_, err := q.Exec(ctx, `
			INSERT INTO users (id, email, username, password_hash, is_active, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, 1, $5, $5)
		`, userID, u.email, u.username, string(passwordHash), now)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		var priceRows [][]any
		var movementQueries []postgres.BatchQuery

		for _, p := range u.products {
			productID := id.New()
			batchID := id.New()
			price, err := decimal.NewFromString(p.price)
			if err != nil {
				return fmt.Errorf("parse price for %s: %w", p.name, err)
			}

			_, err = q.Exec(ctx, `
				INSERT INTO stock (id, owner_id, product_name, product_type, price, quantity, version, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $7)
			`, productID, userID, p.name, p.typ, price, p.quantity, now)
			if err != nil {
				return fmt.Errorf("insert product %s: %w", p.name, err)
			}

			var expiredDate *time.Time
			if p.expiredDaysAgo > 0 {
				d := now.AddDate(0, 0, -p.expiredDaysAgo)
				expiredDate = &d
			}

			_, err = q.Exec(ctx, `
				INSERT INTO stock_batches (id, owner_id, product_id, quantity, expired_date, version, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, 1, $6, $6)
			`, batchID, userID, productID, p.quantity, expiredDate, now)
			if err != nil {
				return fmt.Errorf("insert batch for %s: %w", p.name, err)
			}

			// A week of daily price observations drifting toward the
			// current price.
			for day := 6; day >= 0; day-- {
				at := now.AddDate(0, 0, -day)
				drift := decimal.NewFromInt(int64(day)).Mul(decimal.NewFromFloat(0.05))
				priceRows = append(priceRows, []any{
					id.New(), userID, productID, price.Sub(drift), at,
				})
			}

			// The opening IN movement plus a few OUT sales.
			movementQueries = append(movementQueries, movementInsert(
				userID, batchID, movement.TypeIn, p.quantity, now.AddDate(0, 0, -6),
			))
			for day := 5; day >= 1; day -= 2 {
				if p.quantity/4 > 0 {
					movementQueries = append(movementQueries, movementInsert(
						userID, batchID, movement.TypeOut, p.quantity/4, now.AddDate(0, 0, -day),
					))
				}
			}
		}

		inserter := postgres.NewBatchInserter(txm)
		copied, err := inserter.CopyFromSlice(ctx, "price_history",
			[]string{"id", "owner_id", "product_id", "price", "recorded_at"},
			priceRows,
		)
		if err != nil {
			return fmt.Errorf("copy price history: %w", err)
		}

		executor := postgres.NewBatchExecutor(txm)
		if err := executor.ExecuteBatch(ctx, movementQueries); err != nil {
			return fmt.Errorf("insert movements: %w", err)
		}

		log.Infow("seeded user",
			"email", u.email,
			"products", len(u.products),
			"price_points", copied,
			"movements", len(movementQueries),
		)
		return nil
	})
}

func movementInsert(ownerID, batchID id.ID, typ movement.Type, quantity int64, at time.Time) postgres.BatchQuery {
	return postgres.BatchQuery{
		SQL: `
			INSERT INTO stock_movements (id, owner_id, batch_id, movement_type, quantity, movement_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
		`,
		Args: []any{id.New(), ownerID, batchID, typ, quantity, at},
	}
}
