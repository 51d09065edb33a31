package palette

import "github.com/ironsheep/emoji-art-mcp/internal/colorspace"

// Blank is the placeholder symbol returned when nothing in the palette can be
// matched.
const Blank = "⬜"

// Entry is a single palette symbol and its color.
type Entry struct {
	Symbol string         `json:"symbol"`
	Color  colorspace.RGB `json:"rgb"`
	Lab    colorspace.Lab `json:"lab"`
}

// NewEntry creates an entry for symbol with its Lab color precomputed.
func NewEntry(symbol string, c colorspace.RGB) Entry {
	return Entry{Symbol: symbol, Color: c, Lab: c.Lab()}
}

// Fallback returns the built-in palette used when no palette could be loaded.
//
// A new slice is returned on every call.
func Fallback() []Entry {
	return []Entry{
		NewEntry("⬜", colorspace.RGB{R: 255, G: 255, B: 255}), // white
		NewEntry("⬛", colorspace.RGB{R: 0, G: 0, B: 0}),       // black
		NewEntry("🟨", colorspace.RGB{R: 255, G: 255, B: 0}),   // yellow
		NewEntry("🟦", colorspace.RGB{R: 0, G: 0, B: 255}),     // blue
		NewEntry("🟥", colorspace.RGB{R: 255, G: 0, B: 0}),     // red
		NewEntry("🟩", colorspace.RGB{R: 0, G: 255, B: 0}),     // green
		NewEntry("🟧", colorspace.RGB{R: 255, G: 165, B: 0}),   // orange
		NewEntry("🟫", colorspace.RGB{R: 139, G: 69, B: 19}),   // brown
		NewEntry("🟪", colorspace.RGB{R: 128, G: 0, B: 128}),   // purple
	}
}
