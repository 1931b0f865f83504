package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/product"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, user_id, name, sku, description, rate, tax_rate, unit, is_active, created_at, updated_at`

func scanProduct(s scanner) (*product.Product, error) {
	var p product.Product

	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.SKU, &p.Description, &p.Rate, &p.TaxRate, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func mapWriteError(err error, action string) error {
	switch {
	case database.IsUniqueViolation(err, "products_user_name_key"):
		return product.ErrNameTaken
	case database.IsUniqueViolation(err, "products_user_sku_key"):
		return product.ErrSKUTaken
	}

	return fmt.Errorf("%s product: %w", action, err)
}

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (user_id, name, sku, description, rate, tax_rate, unit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.UserID, p.Name, p.SKU, p.Description, p.Rate, p.TaxRate, p.Unit, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating")
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, userID, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + selectColumns + ` FROM products WHERE id = $1 AND user_id = $2`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Product")
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{filter.UserID}
	argIdx := 2

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%[1]d OR sku ILIKE $%[1]d)", argIdx)

		args = append(args, database.ContainsPattern(filter.Search))
		argIdx++
	}

	if filter.Active != nil {
		where += fmt.Sprintf(" AND is_active = $%d", argIdx)

		args = append(args, *filter.Active)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM products` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating products: %w", err)
	}

	return products, total, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $1, sku = $2, description = $3, rate = $4, tax_rate = $5, unit = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name, p.SKU, p.Description, p.Rate, p.TaxRate, p.Unit, p.IsActive, p.ID, p.UserID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Product")
		}

		return mapWriteError(err, "updating")
	}

	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("Product")
	}

	return nil
}
