package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
)

var (
	ErrEmailTaken         = &apperr.Error{Kind: apperr.ErrConflict, Message: "Client with this email already exists"}
	ErrTaxIDTaken         = &apperr.Error{Kind: apperr.ErrConflict, Message: "GST / Tax ID already in use by another account"}
	ErrInvalidCredentials = &apperr.Error{Kind: apperr.ErrValidation, Message: "Invalid credentials"}
	ErrNotActivated       = &apperr.Error{Kind: apperr.ErrForbidden, Message: "Your account is not activated yet. Please contact the business."}
	ErrInvalidApproval    = &apperr.Error{Kind: apperr.ErrValidation, Message: "Invalid approval token"}
	ErrInvalidSession     = &apperr.Error{Kind: apperr.ErrUnauthorized, Message: "Invalid client session"}
)

const generatedPasswordLength = 8

type Settings struct {
	PaymentTerms string
	PortalURL    string
	Now          func() time.Time
}

type Service struct {
	repo      Repository
	approvals *auth.Issuer
	settings  Settings
}

// NewService wires the client service. approvals signs the invitation links
// clients use to set their portal password.
func NewService(repo Repository, approvals *auth.Issuer, settings Settings) *Service {
	if settings.Now == nil {
		settings.Now = time.Now
	}

	settings.PortalURL = strings.TrimSuffix(settings.PortalURL, "/")

	return &Service{repo: repo, approvals: approvals, settings: settings}
}

type CreateParams struct {
	Name                   string
	Email                  string
	Phone                  string
	Company                string
	Address                string
	PaymentTerms           string
	PreferredPaymentMethod string
	TaxID                  string
	Notes                  string
	CreateCredentials      bool
	Password               string
}

// Created is the outcome of Create. Password holds the generated portal
// password when credentials were requested without one.
type Created struct {
	Client   *Client
	Revived  bool
	Password string
}

// Create adds a client to the business. A client that already exists under
// the same email is reactivated and updated instead.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Created, error) {
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)

	if name == "" {
		return nil, apperr.Validation("Client name is required")
	}

	if email == "" {
		return nil, apperr.Validation("Please enter a valid email")
	}

	existing, err := s.repo.FindByEmail(ctx, userID, email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	c := existing
	if c == nil {
		c = &Client{
			UserID:       userID,
			Email:        email,
			PaymentTerms: s.settings.PaymentTerms,
		}
	}

	c.Name = name
	c.Status = StatusActive
	setIfPresent(&c.Phone, params.Phone)
	setIfPresent(&c.Company, params.Company)
	setIfPresent(&c.Address, params.Address)
	setIfPresent(&c.PaymentTerms, params.PaymentTerms)
	setIfPresent(&c.PreferredPaymentMethod, params.PreferredPaymentMethod)
	setIfPresent(&c.Notes, params.Notes)

	if params.TaxID != "" {
		if err := s.setTaxID(ctx, c, params.TaxID); err != nil {
			return nil, err
		}
	}

	created := &Created{Client: c, Revived: existing != nil}

	if params.CreateCredentials {
		created.Password, err = grantCredentials(c, params.Password)
		if err != nil {
			return nil, err
		}
	}

	if existing != nil {
		err = s.repo.UpdateClient(ctx, c)
	} else {
		err = s.repo.CreateClient(ctx, c)
	}

	if err != nil {
		return nil, err
	}

	return created, nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func assign(dst, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *Service) setTaxID(ctx context.Context, c *Client, raw string) error {
	taxID, err := NormalizeTaxID(raw)
	if err != nil {
		return err
	}

	if taxID != nil {
		taken, err := s.repo.TaxIDTaken(ctx, *taxID, c.ID)
		if err != nil {
			return err
		}

		if taken {
			return ErrTaxIDTaken
		}
	}

	c.TaxID = taxID

	return nil
}

// grantCredentials activates portal access directly. It returns the password
// it generated, if any.
func grantCredentials(c *Client, password string) (string, error) {
	var generated string

	if password == "" {
		pw, err := auth.RandomPassword(generatedPasswordLength)
		if err != nil {
			return "", err
		}

		password, generated = pw, pw
	} else if len(password) < auth.MinPasswordLength {
		return "", apperr.Validation("Password must be at least %d characters", auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	c.PasswordHash = &hash
	c.IsApproved = true
	c.ApprovalToken = nil

	return generated, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, userID, id)
}

// StatusAll disables the status filter of List.
const StatusAll = "all"

type ListFilter struct {
	UserID uuid.UUID
	Search string
	Status string
	Page   int
	Limit  int
}

type Page struct {
	Clients     []*Client
	Total       int
	TotalPages  int
	CurrentPage int
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Status == "" {
		filter.Status = string(StatusActive)
	}

	if filter.Status != StatusAll && !Status(filter.Status).Valid() {
		return nil, apperr.Validation("Invalid status %q", filter.Status)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 {
		filter.Limit = 10
	}

	clients, total, err := s.repo.ListClients(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Clients:     clients,
		Total:       total,
		TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		CurrentPage: filter.Page,
	}, nil
}

// UpdateParams lists the fields a business may change. Ledger totals and
// portal state are not among them.
type UpdateParams struct {
	Name                   *string
	Email                  *string
	Phone                  *string
	Company                *string
	Address                *string
	PaymentTerms           *string
	Status                 *string
	Notes                  *string
	PreferredPaymentMethod *string
	TaxID                  *string
	CreateCredentials      bool
	Password               string
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Client, error) {
	c, err := s.repo.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperr.Validation("Client name cannot be empty")
		}

		c.Name = name
	}

	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if email == "" {
			return nil, apperr.Validation("Please enter a valid email")
		}

		if email != c.Email {
			other, err := s.repo.FindByEmail(ctx, userID, email)
			if err == nil && other.ID != c.ID {
				return nil, ErrEmailTaken
			}

			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}

			c.Email = email
		}
	}

	assign(&c.Phone, params.Phone)
	assign(&c.Company, params.Company)
	assign(&c.Address, params.Address)
	assign(&c.PaymentTerms, params.PaymentTerms)
	assign(&c.Notes, params.Notes)
	assign(&c.PreferredPaymentMethod, params.PreferredPaymentMethod)

	if params.Status != nil {
		status := Status(*params.Status)
		if !status.Valid() {
			return nil, apperr.Validation("Invalid status %q", *params.Status)
		}

		c.Status = status
	}

	if params.TaxID != nil {
		if err := s.setTaxID(ctx, c, *params.TaxID); err != nil {
			return nil, err
		}
	}

	if params.CreateCredentials {
		if _, err := grantCredentials(c, params.Password); err != nil {
			return nil, err
		}

		c.Status = StatusActive
	}

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Archive removes a client. A client with invoices is kept for their ledger
// and only deactivated, with its portal access revoked. It reports whether
// the client was deleted outright.
func (s *Service) Archive(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	c, err := s.repo.GetClient(ctx, userID, id)
	if err != nil {
		return false, err
	}

	count, err := s.repo.CountInvoices(ctx, c.ID)
	if err != nil {
		return false, err
	}

	if count == 0 {
		return true, s.repo.DeleteClient(ctx, c.ID)
	}

	c.Status = StatusInactive
	c.ClearCredentials()

	return false, s.repo.UpdateClient(ctx, c)
}

func (s *Service) RemoveCredentials(ctx context.Context, userID, id uuid.UUID) (*Client, error) {
	c, err := s.repo.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	c.ClearCredentials()

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Invite stores a fresh approval token on the client and returns the link
// the client follows to set a password.
func (s *Service) Invite(ctx context.Context, userID, id uuid.UUID) (string, error) {
	c, err := s.repo.GetClient(ctx, userID, id)
	if err != nil {
		return "", err
	}

	token, err := s.approvals.Issue(c.ID)
	if err != nil {
		return "", err
	}

	c.ApprovalToken = &token

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return "", err
	}

	return s.settings.PortalURL + "/client/approve?token=" + url.QueryEscape(token), nil
}

// Activate redeems an invitation. The token must verify and still be the one
// stored on the client, so each invitation works once.
func (s *Service) Activate(ctx context.Context, token, password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperr.Validation("Password must be at least %d characters", auth.MinPasswordLength)
	}

	id, err := s.approvals.Parse(token)
	if err != nil {
		return apperr.Validation("Invalid or expired token")
	}

	c, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrInvalidApproval
		}

		return err
	}

	if c.ApprovalToken == nil || *c.ApprovalToken != token {
		return ErrInvalidApproval
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	c.PasswordHash = &hash
	c.IsApproved = true
	c.ApprovalToken = nil

	return s.repo.UpdateClient(ctx, c)
}

// Login authenticates a portal user. The same email can belong to clients of
// several businesses; the most recently updated approved record whose
// password matches wins.
func (s *Service) Login(ctx context.Context, email, password string) (*Client, error) {
	candidates, err := s.repo.FindAllByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	var (
		match           *Client
		matchedInactive bool
	)

	for _, c := range candidates {
		if c.PasswordHash == nil || !auth.CheckPassword(*c.PasswordHash, password) {
			continue
		}

		if c.IsApproved {
			match = c
			break
		}

		matchedInactive = true
	}

	if match == nil {
		if matchedInactive {
			return nil, ErrNotActivated
		}

		return nil, ErrInvalidCredentials
	}

	now := s.settings.Now()
	if err := s.repo.TouchLogin(ctx, match.ID, now); err != nil {
		return nil, err
	}

	match.LastLogin = &now

	return match, nil
}

// Authorize resolves the client behind a portal session.
func (s *Service) Authorize(ctx context.Context, id uuid.UUID) (*Client, error) {
	c, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidSession
		}

		return nil, err
	}

	if !c.PortalEnabled() {
		return nil, ErrInvalidSession
	}

	return c, nil
}

// Peers returns the ids of every client record of c's business that shares
// c's email, c included.
func (s *Service) Peers(ctx context.Context, c *Client) ([]uuid.UUID, error) {
	return s.repo.PeerIDs(ctx, c.UserID, c.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
