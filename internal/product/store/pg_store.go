package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abgdnv/cafekiosk/internal/product/domain"
	perrors "github.com/abgdnv/cafekiosk/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE reported for a violated UNIQUE constraint.
const uniqueViolation = "23505"

const productColumns = "id, product_number, name, price, type, selling_status, created_at"

const insertProduct = `INSERT INTO products (product_number, name, price, type, selling_status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + productColumns

const findAllBySellingStatusIn = `SELECT ` + productColumns + `
FROM products
WHERE selling_status = ANY($1::text[])`

const findAllByProductNumberIn = `SELECT ` + productColumns + `
FROM products
WHERE product_number = ANY($1::text[])`

// numbers are compared numerically: longer (without leading zeros) first, then by digits.
const findLatestProductNumber = `SELECT product_number
FROM products
ORDER BY length(ltrim(product_number, '0')) DESC, ltrim(product_number, '0') COLLATE "C" DESC
LIMIT 1`

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// productRow mirrors a row of the products table.
type productRow struct {
	ID            int64     `db:"id"`
	ProductNumber string    `db:"product_number"`
	Name          string    `db:"name"`
	Price         int64     `db:"price"`
	Type          string    `db:"type"`
	SellingStatus string    `db:"selling_status"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	createdAt := r.CreatedAt
	return domain.Product{
		ID:            r.ID,
		ProductNumber: r.ProductNumber,
		Name:          r.Name,
		Price:         r.Price,
		Type:          domain.ProductType(r.Type),
		SellingStatus: domain.SellingStatus(r.SellingStatus),
		CreatedAt:     &createdAt,
	}
}

// pgQueries runs the product queries against a pool or a transaction.
type pgQueries struct {
	db dbtx
}

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	pgQueries
	pool *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		pgQueries: pgQueries{db: pool},
		pool:      pool,
	}
}

// Insert adds a new product to the system.
// Returns ErrDuplicateProductNumber if the product number is already taken.
func (q *pgQueries) Insert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	rows, err := q.db.Query(ctx, insertProduct,
		p.ProductNumber, p.Name, p.Price, string(p.Type), string(p.SellingStatus))
	if err != nil {
		return nil, mapError("failed to insert product", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, mapError("failed to insert product", err)
	}
	created := row.toDomain()
	return &created, nil
}

// FindAllBySellingStatusIn retrieves products having one of the given selling statuses.
func (q *pgQueries) FindAllBySellingStatusIn(ctx context.Context, statuses []domain.SellingStatus) ([]domain.Product, error) {
	args := make([]string, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	return q.findAll(ctx, "failed to find products by selling status", findAllBySellingStatusIn, args)
}

// FindAllByProductNumberIn retrieves products having one of the given product numbers.
func (q *pgQueries) FindAllByProductNumberIn(ctx context.Context, numbers []string) ([]domain.Product, error) {
	return q.findAll(ctx, "failed to find products by product number", findAllByProductNumberIn, numbers)
}

// FindLatestProductNumber returns the greatest product number, or nil if the table is empty.
func (q *pgQueries) FindLatestProductNumber(ctx context.Context) (*string, error) {
	var number string
	if err := q.db.QueryRow(ctx, findLatestProductNumber).Scan(&number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest product number: %w", err)
	}
	return &number, nil
}

func (q *pgQueries) findAll(ctx context.Context, op, sql string, args []string) ([]domain.Product, error) {
	rows, err := q.db.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	products := make([]domain.Product, len(collected))
	for i, row := range collected {
		products[i] = row.toDomain()
	}
	return products, nil
}

// WithTx runs fn in a transaction opened with the access mode of mode.
func (p *PgStore) WithTx(ctx context.Context, mode TxMode, fn func(q Queries) error) error {
	accessMode := pgx.ReadOnly
	if mode == ReadWrite {
		accessMode = pgx.ReadWrite
	}
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: accessMode})
	if err != nil {
		return fmt.Errorf("%w: %w", perrors.ErrTransactionBegin, err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(&pgQueries{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("%w: %w", perrors.ErrTransactionRollback, rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", perrors.ErrTransactionCommit, mapError("commit", err))
	}
	return nil
}

// Ping checks the database connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// mapError translates unique violations into ErrDuplicateProductNumber and wraps everything else.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, perrors.ErrDuplicateProductNumber, pgErr.Detail)
	}
	return fmt.Errorf("%s: %w", op, err)
}
