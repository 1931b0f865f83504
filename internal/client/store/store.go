package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
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

const selectColumns = `
	id, user_id, name, email, phone, company, address, payment_terms, preferred_payment_method,
	tax_id, notes, status, is_approved, password_hash, approval_token, last_login,
	total_invoiced, total_paid, total_outstanding, created_at, updated_at
`

func scanClient(s scanner) (*client.Client, error) {
	var (
		c      client.Client
		status string
	)

	err := s.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.PaymentTerms, &c.PreferredPaymentMethod,
		&c.TaxID, &c.Notes, &status, &c.IsApproved, &c.PasswordHash, &c.ApprovalToken, &c.LastLogin,
		&c.TotalInvoiced, &c.TotalPaid, &c.TotalOutstanding, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = client.Status(status)

	return &c, nil
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (*client.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Client")
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

// mapWriteError translates the uniqueness constraints of the clients table.
func mapWriteError(err error, action string) error {
	switch {
	case database.IsUniqueViolation(err, "clients_user_email_key"):
		return client.ErrEmailTaken
	case database.IsUniqueViolation(err, "clients_tax_id_key"):
		return client.ErrTaxIDTaken
	}

	return fmt.Errorf("%s client: %w", action, err)
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (user_id, name, email, phone, company, address, payment_terms, preferred_payment_method,
			tax_id, notes, status, is_approved, password_hash, approval_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, total_invoiced, total_paid, total_outstanding, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.UserID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.PaymentTerms, c.PreferredPaymentMethod,
		c.TaxID, c.Notes, c.Status, c.IsApproved, c.PasswordHash, c.ApprovalToken,
	).Scan(&c.ID, &c.TotalInvoiced, &c.TotalPaid, &c.TotalOutstanding, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "creating")
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, userID, id uuid.UUID) (*client.Client, error) {
	return s.getOne(ctx, `SELECT `+selectColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
}

func (s *Store) GetClientByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	return s.getOne(ctx, `SELECT `+selectColumns+` FROM clients WHERE id = $1`, id)
}

func (s *Store) FindByEmail(ctx context.Context, userID uuid.UUID, email string) (*client.Client, error) {
	return s.getOne(ctx, `SELECT `+selectColumns+` FROM clients WHERE user_id = $1 AND email = $2`, userID, email)
}

func (s *Store) FindAllByEmail(ctx context.Context, email string) ([]*client.Client, error) {
	query := `SELECT ` + selectColumns + ` FROM clients WHERE email = $1 ORDER BY updated_at DESC`
	return s.query(ctx, query, email)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*client.Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*client.Client, 0)

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}

// TaxIDTaken reports whether taxID is registered to any other client, or to
// a business.
func (s *Store) TaxIDTaken(ctx context.Context, taxID string, exclude uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM clients WHERE tax_id = $1 AND id <> $2)
			OR EXISTS (SELECT 1 FROM businesses WHERE tax_id = $1)
	`

	var taken bool
	if err := s.db.QueryRowContext(ctx, query, taxID, exclude).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking tax id: %w", err)
	}

	return taken, nil
}

func (s *Store) ListClients(ctx context.Context, filter client.ListFilter) ([]*client.Client, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{filter.UserID}
	argIdx := 2

	if filter.Status != client.StatusAll {
		where += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(
			" AND (name ILIKE $%[1]d OR email ILIKE $%[1]d OR company ILIKE $%[1]d OR phone ILIKE $%[1]d OR tax_id ILIKE $%[1]d OR address ILIKE $%[1]d)",
			argIdx,
		)

		args = append(args, database.ContainsPattern(filter.Search))
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting clients: %w", err)
	}

	query := `SELECT ` + selectColumns + ` FROM clients` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	clients, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// UpdateClient writes the profile and portal state of c. The ledger columns
// are left alone.
func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, company = $4, address = $5, payment_terms = $6,
			preferred_payment_method = $7, tax_id = $8, notes = $9, status = $10, is_approved = $11,
			password_hash = $12, approval_token = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING total_invoiced, total_paid, total_outstanding, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.Address, c.PaymentTerms,
		c.PreferredPaymentMethod, c.TaxID, c.Notes, c.Status, c.IsApproved,
		c.PasswordHash, c.ApprovalToken, c.ID,
	).Scan(&c.TotalInvoiced, &c.TotalPaid, &c.TotalOutstanding, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Client")
		}

		return mapWriteError(err, "updating")
	}

	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.InvalidState("Client has invoices")
		}

		return fmt.Errorf("deleting client: %w", err)
	}

	return nil
}

func (s *Store) CountInvoices(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices WHERE client_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting client invoices: %w", err)
	}

	return count, nil
}

func (s *Store) PeerIDs(ctx context.Context, userID uuid.UUID, email string) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM clients WHERE user_id = $1 AND email = $2`, userID, email)
	if err != nil {
		return nil, fmt.Errorf("listing peer clients: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning peer client: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *Store) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE clients SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("recording client login: %w", err)
	}

	return nil
}
