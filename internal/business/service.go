package business

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

var (
	ErrEmailTaken         = &apperr.Error{Kind: apperr.ErrConflict, Message: "User already exists"}
	ErrInvalidCredentials = &apperr.Error{Kind: apperr.ErrValidation, Message: "Invalid credentials"}
)

// Defaults seed the settings of a newly registered business.
type Defaults struct {
	Prefix       string
	Currency     string
	PaymentTerms string
}

type Service struct {
	repo     Repository
	defaults Defaults
}

func NewService(repo Repository, defaults Defaults) *Service {
	return &Service{repo: repo, defaults: defaults}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Info     Info
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*Business, error) {
	email := normalizeEmail(params.Email)

	if strings.TrimSpace(params.Name) == "" || email == "" {
		return nil, apperr.Validation("Name and email are required")
	}

	if len(params.Password) < auth.MinPasswordLength {
		return nil, apperr.Validation("Password must be at least %d characters", auth.MinPasswordLength)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	b := &Business{
		Name:          strings.TrimSpace(params.Name),
		Email:         email,
		PasswordHash:  hash,
		BusinessName:  strings.TrimSpace(params.Info.BusinessName),
		Address:       strings.TrimSpace(params.Info.Address),
		Phone:         strings.TrimSpace(params.Info.Phone),
		TaxID:         strings.TrimSpace(params.Info.TaxID),
		InvoicePrefix: s.defaults.Prefix,
		Currency:      s.defaults.Currency,
		PaymentTerms:  s.defaults.PaymentTerms,
	}

	if err := s.repo.CreateBusiness(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// Authenticate returns the business owning email if password matches. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Business, error) {
	b, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !auth.CheckPassword(b.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Business, error) {
	return s.repo.GetBusiness(ctx, id)
}

type SettingsParams struct {
	InvoicePrefix *string
	Currency      *string
	PaymentTerms  *string
}

func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, params SettingsParams) (*Business, error) {
	b, err := s.repo.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.InvoicePrefix != nil {
		prefix := strings.TrimSpace(*params.InvoicePrefix)
		if prefix == "" {
			return nil, apperr.Validation("Invoice prefix cannot be empty")
		}

		b.InvoicePrefix = prefix
	}

	if params.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*params.Currency))
		if _, err := currency.ParseISO(code); err != nil {
			return nil, apperr.Validation("Invalid currency code %q", *params.Currency)
		}

		b.Currency = code
	}

	if params.PaymentTerms != nil {
		b.PaymentTerms = strings.TrimSpace(*params.PaymentTerms)
	}

	if err := s.repo.UpdateSettings(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
