// Package csvimport reads product catalogues exported from spreadsheets.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/encoding"
	"github.com/MrJamesThe3rd/invoicer/internal/product"
)

// Header landmarks, matched case-insensitively. The first row naming both a
// name and a rate column is taken as the header; anything above it is
// ignored.
var landmarks = map[string]field{
	"name":         fieldName,
	"product":      fieldName,
	"product name": fieldName,
	"item":         fieldName,
	"rate":         fieldRate,
	"price":        fieldRate,
	"unit price":   fieldRate,
	"sku":          fieldSKU,
	"code":         fieldSKU,
	"description":  fieldDescription,
	"tax rate":     fieldTaxRate,
	"tax":          fieldTaxRate,
	"gst":          fieldTaxRate,
	"tax %":        fieldTaxRate,
	"unit":         fieldUnit,
}

type field int

const (
	fieldName field = iota
	fieldRate
	fieldSKU
	fieldDescription
	fieldTaxRate
	fieldUnit
)

type columns map[field]int

var ErrNoHeader = errors.New("no header row with name and rate columns found")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]product.Row, error) {
	utf8r, _, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	first, err := br.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	firstLine, _, _ := strings.Cut(string(first), "\n")

	reader := csv.NewReader(br)
	reader.Comma = encoding.SniffDelimiter(firstLine)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		records = append(records, record)
		lines = append(lines, line)
	}

	cols, headerIdx := findHeader(records)
	if cols == nil {
		return nil, ErrNoHeader
	}

	rows := make([]product.Row, 0, len(records)-headerIdx-1)

	for i := headerIdx + 1; i < len(records); i++ {
		if blank(records[i]) {
			continue
		}

		row := product.Row{Line: lines[i]}
		row.Product, row.Err = parseRecord(cols, records[i])
		rows = append(rows, row)
	}

	return rows, nil
}

func findHeader(records [][]string) (columns, int) {
	for idx, record := range records {
		cols := make(columns)

		for i, cell := range record {
			f, ok := landmarks[strings.ToLower(strings.TrimSpace(cell))]
			if !ok {
				continue
			}

			if _, seen := cols[f]; !seen {
				cols[f] = i
			}
		}

		_, hasName := cols[fieldName]
		_, hasRate := cols[fieldRate]

		if hasName && hasRate {
			return cols, idx
		}
	}

	return nil, 0
}

func parseRecord(cols columns, record []string) (product.CreateParams, error) {
	params := product.CreateParams{
		Name:        cell(record, cols, fieldName),
		SKU:         cell(record, cols, fieldSKU),
		Description: cell(record, cols, fieldDescription),
		Unit:        cell(record, cols, fieldUnit),
	}

	if params.Name == "" {
		return params, errors.New("missing name")
	}

	rate, err := parseAmount(cell(record, cols, fieldRate))
	if err != nil {
		return params, fmt.Errorf("invalid rate %q", cell(record, cols, fieldRate))
	}

	params.Rate = rate

	if raw := cell(record, cols, fieldTaxRate); raw != "" {
		taxRate, err := parseAmount(raw)
		if err != nil {
			return params, fmt.Errorf("invalid tax rate %q", raw)
		}

		params.TaxRate = taxRate
	} else {
		params.TaxRate = decimal.Zero
	}

	return params, nil
}

func cell(record []string, cols columns, f field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
