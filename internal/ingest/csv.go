// Package ingest turns seller inventory exports into records for the sync
// pipeline. Only tokenization lives here; defaults and validation are
// applied by the services package.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// FormatTCGplayer identifies the TCGplayer seller inventory export
const FormatTCGplayer = "tcgplayer_csv"

// ErrMissingColumns is returned when the header lacks a name or quantity column
var ErrMissingColumns = errors.New("missing required columns")

type field string

const (
	fieldName       field = "product_name"
	fieldSet        field = "set_name"
	fieldQuantity   field = "quantity"
	fieldPrice      field = "price"
	fieldCondition  field = "condition"
	fieldRarity     field = "rarity"
	fieldExternalID field = "tcgplayer_id"
	fieldCategory   field = "category"
)

// Canonical TCGplayer header for each field, tried exactly then case-insensitively
var canonicalColumns = []struct {
	field  field
	column string
}{
	{fieldName, "Product Name"},
	{fieldSet, "Set Name"},
	{fieldQuantity, "Total Quantity"},
	{fieldPrice, "TCG Marketplace Price"},
	{fieldCondition, "Condition"},
	{fieldRarity, "Rarity"},
	{fieldExternalID, "TCGplayer Id"},
	{fieldCategory, "Product Line"},
}

// Lower-case fallbacks, in preference order
var columnVariants = map[field][]string{
	fieldName:       {"product name", "card name", "name", "card", "title"},
	fieldSet:        {"set name", "set", "expansion", "edition"},
	fieldQuantity:   {"quantity", "qty", "count", "total quantity", "add to quantity"},
	fieldPrice:      {"price", "unit price", "tcg market price", "market price", "value", "tcg low price"},
	fieldCondition:  {"condition", "cond"},
	fieldRarity:     {"rarity", "rare"},
	fieldExternalID: {"tcgplayer id", "tcg player id", "id"},
	fieldCategory:   {"product line", "category", "game"},
}

// ParseResult is the outcome of reading one export
type ParseResult struct {
	Records []models.InventoryRecord
	Headers []string
	// Columns maps each recognised field to the header it was read from
	Columns     map[string]string
	TotalRows   int
	SkippedRows int
}

// Metadata describes the parse for snapshot provenance
func (p *ParseResult) Metadata() map[string]any {
	return map[string]any{
		"format":         FormatTCGplayer,
		"total_rows":     p.TotalRows,
		"valid_rows":     len(p.Records),
		"skipped_rows":   p.SkippedRows,
		"column_mapping": p.Columns,
	}
}

// ParseCSV reads a TCGplayer-style inventory export. Rows without a name or
// with a missing, unparseable or non-positive quantity are skipped.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	index := mapColumns(header)
	var missing []string
	for _, f := range []field{fieldName, fieldQuantity} {
		if _, ok := index[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrMissingColumns,
			strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	result := &ParseResult{
		Records: []models.InventoryRecord{},
		Headers: header,
		Columns: make(map[string]string, len(index)),
	}
	for f, i := range index {
		result.Columns[string(f)] = header[i]
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", result.TotalRows+2, err)
		}
		result.TotalRows++

		rec, ok := parseRow(row, index)
		if !ok {
			result.SkippedRows++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// mapColumns resolves each field to a header index
func mapColumns(header []string) map[field]int {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(h)
	}
	find := func(name string, fold bool) (int, bool) {
		for i := range header {
			if (!fold && header[i] == name) || (fold && lower[i] == name) {
				return i, true
			}
		}
		return 0, false
	}

	index := make(map[field]int)
	for _, c := range canonicalColumns {
		if i, ok := find(c.column, false); ok {
			index[c.field] = i
			continue
		}
		if i, ok := find(strings.ToLower(c.column), true); ok {
			index[c.field] = i
			continue
		}
		for _, v := range columnVariants[c.field] {
			if i, ok := find(v, true); ok {
				index[c.field] = i
				break
			}
		}
	}
	return index
}

func parseRow(row []string, index map[field]int) (models.InventoryRecord, bool) {
	get := func(f field) string {
		i, ok := index[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := get(fieldName)
	if name == "" {
		return models.InventoryRecord{}, false
	}
	qty, ok := parseQuantity(get(fieldQuantity))
	if !ok || qty <= 0 {
		return models.InventoryRecord{}, false
	}

	rec := models.InventoryRecord{
		DisplayName: name,
		SetName:     get(fieldSet),
		Quantity:    qty,
		UnitPrice:   parsePrice(get(fieldPrice)),
		Condition:   get(fieldCondition),
		Rarity:      get(fieldRarity),
		Category:    get(fieldCategory),
	}
	if id := normalizeID(get(fieldExternalID)); id != "" {
		rec.ExternalID = &id
	}
	return rec, true
}

// parseQuantity accepts integers and decimals, truncating the fraction
func parseQuantity(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// parsePrice strips currency formatting; unparseable prices read as zero
func parsePrice(s string) decimal.Decimal {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeID turns numeric ids exported as floats ("12345.0") into integers
func normalizeID(s string) string {
	if s == "" {
		return ""
	}
	if strings.Trim(strings.Replace(s, ".", "", 1), "0123456789") == "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return s
}
