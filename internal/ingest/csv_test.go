package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const tcgplayerExport = `TCGplayer Id,Product Line,Set Name,Product Name,Number,Rarity,Condition,TCG Market Price,Total Quantity,TCG Marketplace Price
"5000.0","Magic: The Gathering","Alpha","Lightning Bolt","161","Common","Near Mint","$450.00","2","$1,234.50"
"5001","Pokemon","Base Set","Charizard","4/102","Holo Rare","Lightly Played","$300.00","1.0","$310"
"","Magic: The Gathering","Alpha","","1","Common","Near Mint","$1.00","5","$1.00"
"5003","Magic: The Gathering","Beta","Counterspell","55","Uncommon","Near Mint","$80.00","0","$80"
"5004","Magic: The Gathering","Beta","Dark Ritual","98","Common","Near Mint","$9.00","abc","$9"
`

func TestParseCSVTCGplayerExport(t *testing.T) {
	result, err := ParseCSV(strings.NewReader(tcgplayerExport))
	if err != nil {
		t.Fatalf("ParseCSV() error: %v", err)
	}

	if result.TotalRows != 5 || result.SkippedRows != 3 {
		t.Errorf("rows total=%d skipped=%d, want 5/3", result.TotalRows, result.SkippedRows)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}

	bolt := result.Records[0]
	if bolt.DisplayName != "Lightning Bolt" || bolt.SetName != "Alpha" {
		t.Errorf("bolt = %q/%q", bolt.DisplayName, bolt.SetName)
	}
	if !bolt.UnitPrice.Equal(decimal.RequireFromString("1234.50")) {
		t.Errorf("bolt price = %s, want marketplace price 1234.50", bolt.UnitPrice)
	}
	if bolt.ExternalID == nil || *bolt.ExternalID != "5000" {
		t.Errorf("bolt id = %v, want 5000", bolt.ExternalID)
	}
	if bolt.Category != "Magic: The Gathering" || bolt.Condition != "Near Mint" || bolt.Rarity != "Common" {
		t.Errorf("bolt = %+v", bolt)
	}

	zard := result.Records[1]
	if zard.Quantity != 1 {
		t.Errorf("fractional quantity = %d, want 1", zard.Quantity)
	}

	if result.Columns["price"] != "TCG Marketplace Price" {
		t.Errorf("price column = %q, want exact TCGplayer header", result.Columns["price"])
	}
	meta := result.Metadata()
	if meta["format"] != FormatTCGplayer || meta["valid_rows"] != 2 {
		t.Errorf("metadata = %v", meta)
	}
}

func TestParseCSVColumnVariants(t *testing.T) {
	input := "\ufeffcard name , SET, Qty, Market Price\nOpt,Ixalan,3.7,0.25\n"

	result, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Records))
	}
	r := result.Records[0]
	if r.DisplayName != "Opt" || r.SetName != "Ixalan" || r.Quantity != 3 {
		t.Errorf("record = %+v", r)
	}
	if !r.UnitPrice.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("price = %s, want 0.25", r.UnitPrice)
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no quantity", "Product Name,Set Name\nBolt,Alpha\n"},
		{"no name", "Set Name,Quantity\nAlpha,1\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tt.input)); !errors.Is(err, ErrMissingColumns) {
				t.Errorf("error = %v, want ErrMissingColumns", err)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$1.25", "1.25"},
		{"$1,000.00", "1000"},
		{" 3 ", "3"},
		{"", "0"},
		{"n/a", "0"},
	}
	for _, tt := range tests {
		if got := parsePrice(tt.in); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("parsePrice(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"12345", "12345"},
		{"12345.0", "12345"},
		{"abc-1", "abc-1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeID(tt.in); got != tt.want {
			t.Errorf("normalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
