package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/business"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `
	id, name, email, password_hash, business_name, address, phone, tax_id,
	invoice_prefix, currency, payment_terms, created_at, updated_at
`

func (s *Store) scan(row *sql.Row) (*business.Business, error) {
	var b business.Business

	err := row.Scan(
		&b.ID, &b.Name, &b.Email, &b.PasswordHash, &b.BusinessName, &b.Address, &b.Phone, &b.TaxID,
		&b.InvoicePrefix, &b.Currency, &b.PaymentTerms, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}

		return nil, fmt.Errorf("scanning business: %w", err)
	}

	return &b, nil
}

func (s *Store) CreateBusiness(ctx context.Context, b *business.Business) error {
	query := `
		INSERT INTO businesses (name, email, password_hash, business_name, address, phone, tax_id,
			invoice_prefix, currency, payment_terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.Name, b.Email, b.PasswordHash, b.BusinessName, b.Address, b.Phone, b.TaxID,
		b.InvoicePrefix, b.Currency, b.PaymentTerms,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "businesses_email_key") {
			return business.ErrEmailTaken
		}

		return fmt.Errorf("creating business: %w", err)
	}

	return nil
}

func (s *Store) GetBusiness(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	query := `SELECT ` + selectColumns + ` FROM businesses WHERE id = $1`
	return s.scan(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*business.Business, error) {
	query := `SELECT ` + selectColumns + ` FROM businesses WHERE email = $1`
	return s.scan(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) UpdateSettings(ctx context.Context, b *business.Business) error {
	query := `
		UPDATE businesses
		SET invoice_prefix = $1, currency = $2, payment_terms = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, b.InvoicePrefix, b.Currency, b.PaymentTerms, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("User")
		}

		return fmt.Errorf("updating business settings: %w", err)
	}

	return nil
}
