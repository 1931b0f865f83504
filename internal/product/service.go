package product

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

var ErrNameTaken = &apperr.Error{Kind: apperr.ErrConflict, Message: "Product name already exists"}
var ErrSKUTaken = &apperr.Error{Kind: apperr.ErrConflict, Message: "SKU already exists"}

// Parser turns an uploaded catalogue file into product rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
}

// Row is one line of an imported catalogue. Err is set when the line could
// not be read as a product.
type Row struct {
	Line    int
	Product CreateParams
	Err     error
}

type Service struct {
	repo   Repository
	parser Parser
}

func NewService(repo Repository, parser Parser) *Service {
	return &Service{repo: repo, parser: parser}
}

type CreateParams struct {
	Name        string
	SKU         string
	Description string
	Rate        decimal.Decimal
	TaxRate     decimal.Decimal
	Unit        string
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Product, error) {
	p := &Product{
		UserID:      userID,
		Name:        params.Name,
		SKU:         params.SKU,
		Description: params.Description,
		Rate:        params.Rate,
		TaxRate:     params.TaxRate,
		Unit:        params.Unit,
		IsActive:    true,
	}

	if err := p.normalize(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

type ListFilter struct {
	UserID uuid.UUID
	Search string
	Active *bool
	Page   int
	Limit  int
}

type Page struct {
	Products    []*Product
	Total       int
	TotalPages  int
	CurrentPage int
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 {
		filter.Limit = 50
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Products:    products,
		Total:       total,
		TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		CurrentPage: filter.Page,
	}, nil
}

type UpdateParams struct {
	Name        *string
	SKU         *string
	Description *string
	Rate        *decimal.Decimal
	TaxRate     *decimal.Decimal
	Unit        *string
	IsActive    *bool
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		p.Name = *params.Name
	}

	if params.SKU != nil {
		p.SKU = *params.SKU
	}

	if params.Description != nil {
		p.Description = *params.Description
	}

	if params.Rate != nil {
		p.Rate = *params.Rate
	}

	if params.TaxRate != nil {
		p.TaxRate = *params.TaxRate
	}

	if params.Unit != nil {
		p.Unit = *params.Unit
	}

	if params.IsActive != nil {
		p.IsActive = *params.IsActive
	}

	if err := p.normalize(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, userID, id)
}

// ImportResult reports what an import did with each line.
type ImportResult struct {
	Created []*Product
	Failed  []ImportFailure
}

type ImportFailure struct {
	Line    int
	Name    string
	Message string
}

// Import creates a product for every readable row of r. Rows that fail to
// parse or to save are reported and skipped; the rest are kept.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, r io.Reader) (*ImportResult, error) {
	rows, err := s.parser.Parse(r)
	if err != nil {
		return nil, apperr.Validation("Could not read file: %v", err)
	}

	result := &ImportResult{Created: make([]*Product, 0), Failed: make([]ImportFailure, 0)}

	for _, row := range rows {
		if row.Err != nil {
			result.Failed = append(result.Failed, failure(row, row.Err))
			continue
		}

		p, err := s.Create(ctx, userID, row.Product)
		if err != nil {
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				return nil, fmt.Errorf("importing line %d: %w", row.Line, err)
			}

			result.Failed = append(result.Failed, failure(row, err))

			continue
		}

		result.Created = append(result.Created, p)
	}

	return result, nil
}

func failure(row Row, err error) ImportFailure {
	return ImportFailure{Line: row.Line, Name: row.Product.Name, Message: apperr.Message(err, err.Error())}
}
