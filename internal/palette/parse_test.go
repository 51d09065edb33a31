package palette

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
)

func TestParseRows(t *testing.T) {
	rows := [][]string{
		{"Emoji", "ASCII Code", "Hex Color"},
		{"🟥", "128997", "#FF0000"},
		{" 🟦 ", "128998", " #0000ff "},
	}

	entries, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "🟥", entries[0].Symbol)
	assert.Equal(t, colorspace.RGB{R: 255}, entries[0].Color)
	assert.Equal(t, colorspace.RGBToLab(255, 0, 0), entries[0].Lab)

	assert.Equal(t, "🟦", entries[1].Symbol)
	assert.Equal(t, colorspace.RGB{B: 255}, entries[1].Color)
}

func TestParseRows_NoHeader(t *testing.T) {
	entries, err := ParseRows([][]string{{"⬛", "11035", "#000000"}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "⬛", entries[0].Symbol)
}

func TestParseRows_EmojiSequences(t *testing.T) {
	rows := [][]string{
		{"❤️", "10084", "#DD2E44"},
		{"👩‍💻", "128105", "#FFCC4D"},
		{"🇯🇵", "127471", "#FFFFFF"},
	}
	entries, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "👩‍💻", entries[1].Symbol)
}

func TestParseRows_HeaderOnly(t *testing.T) {
	entries, err := ParseRows([][]string{{"Emoji", "ASCII Code", "Hex Color"}})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseRows_Empty(t *testing.T) {
	_, err := ParseRows(nil)
	require.ErrorIs(t, err, ErrEmptyPalette)
}

func TestParseRows_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		wantErr error
		wantRow int
	}{
		{
			"missing fields",
			[][]string{{"🟥", "1", "#FF0000"}, {"🟦", "2"}},
			ErrMalformedRow,
			2,
		},
		{
			"empty symbol",
			[][]string{{"Emoji", "ASCII Code", "Hex Color"}, {"  ", "1", "#FF0000"}},
			ErrMalformedRow,
			2,
		},
		{
			"ascii symbol",
			[][]string{{"Emoji", "ASCII Code", "Hex Color"}, {"🟥", "1", "#FF0000"}, {"A", "65", "#FFFFFF"}},
			ErrMalformedRow,
			3,
		},
		{
			"letter symbol",
			[][]string{{"é", "233", "#FFFFFF"}},
			ErrMalformedRow,
			1,
		},
		{
			"bad hex",
			[][]string{{"Emoji", "ASCII Code", "Hex Color"}, {"🟥", "1", "#FF0000"}, {"🟦", "2", "#XYZXYZ"}},
			colorspace.ErrInvalidHex,
			3,
		},
		{
			"short hex",
			[][]string{{"🟥", "1", "#F00"}},
			colorspace.ErrInvalidHex,
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(tt.rows)
			require.ErrorIs(t, err, tt.wantErr)

			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.wantRow, rowErr.Row)
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "Emoji,ASCII Code,Hex Color\n🟥,128997,#FF0000\n\n🟩,129001,#00FF00\n"

	entries, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "🟩", entries[1].Symbol)
	assert.Equal(t, colorspace.RGB{G: 255}, entries[1].Color)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyPalette)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emoji_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Emoji,ASCII Code,Hex Color\n🟪,129002,#800080\n"), 0o644))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, colorspace.RGB{R: 128, B: 128}, entries[0].Color)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFallback(t *testing.T) {
	entries := Fallback()
	require.Len(t, entries, 9)

	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
		assert.Equal(t, e.Color.Lab(), e.Lab)
	}
	assert.Equal(t, []string{"⬜", "⬛", "🟨", "🟦", "🟥", "🟩", "🟧", "🟫", "🟪"}, symbols)

	// Each call returns an independent slice.
	entries[0].Symbol = "x"
	assert.Equal(t, "⬜", Fallback()[0].Symbol)
}
