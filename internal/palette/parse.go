package palette

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
)

var (
	// ErrEmptyPalette is returned when the input contains no rows at all.
	ErrEmptyPalette = errors.New("palette input is empty")

	// ErrMalformedRow is returned for rows with missing fields or a symbol that
	// is empty or made only of letters, digits and ASCII.
	ErrMalformedRow = errors.New("malformed palette row")
)

// header is the literal column row written by the palette generator.
var header = []string{"Emoji", "ASCII Code", "Hex Color"}

// RowError reports the row that failed to parse.
//
// Row is 1-based and counts the header row when present.
type RowError struct {
	Row   int
	cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("palette row %d: %v", e.Row, e.cause)
}

func (e *RowError) Unwrap() error { return e.cause }

// ParseRows converts rows of "emoji, unused, #RRGGBB" into palette entries.
//
// The first row is skipped when it matches the header. Any malformed row
// aborts the load. A header-only input yields an empty, valid palette.
func ParseRows(rows [][]string) ([]Entry, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyPalette
	}

	start := 0
	if isHeader(rows[0]) {
		start = 1
	}

	entries := make([]Entry, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		entry, err := parseRow(rows[i])
		if err != nil {
			return nil, &RowError{Row: i + 1, cause: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRow(row []string) (Entry, error) {
	if len(row) < 3 {
		return Entry{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedRow, len(row))
	}
	symbol := strings.TrimSpace(row[0])
	if symbol == "" {
		return Entry{}, fmt.Errorf("%w: empty symbol", ErrMalformedRow)
	}
	if !isPictographic(symbol) {
		return Entry{}, fmt.Errorf("%w: %q is not an emoji", ErrMalformedRow, symbol)
	}
	c, err := colorspace.ParseHex(row[2])
	if err != nil {
		return Entry{}, err
	}
	return NewEntry(symbol, c), nil
}

// isPictographic rejects plain text: a symbol must contain a non-ASCII rune
// that is neither a letter nor a digit.
func isPictographic(symbol string) bool {
	for _, r := range symbol {
		if r > unicode.MaxASCII && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isHeader(row []string) bool {
	if len(row) < len(header) {
		return false
	}
	for i, name := range header {
		if strings.TrimSpace(row[i]) != name {
			return false
		}
	}
	return true
}

// ReadCSV reads palette rows from r and parses them with ParseRows.
//
// Blank lines are ignored and rows may carry extra trailing fields.
func ReadCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read palette csv: %w", err)
	}
	return ParseRows(rows)
}

// LoadFile reads a palette CSV file from disk.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette: %w", err)
	}
	defer f.Close()

	entries, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
