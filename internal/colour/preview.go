package colour

import (
	"math"
	"strings"

	"github.com/muesli/termenv"
)

const defaultWidth = 8

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(rgb RGB) float64 {
	r := gammaCorrect(float64(rgb.R) / 255.0)
	g := gammaCorrect(float64(rgb.G) / 255.0)
	b := gammaCorrect(float64(rgb.B) / 255.0)

	return 0.2126*r + 0.7152*g + 0.0722*b
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Preview returns a solid colour block for h, width characters wide.
// The escape sequences are chosen for the output's colour profile, so the
// block degrades to the nearest ANSI colour, or to plain spaces when the
// output has no colour support.
func Preview(out *termenv.Output, h Hex, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	block := strings.Repeat(" ", width)
	return out.String(block).Background(out.Color(h.Upper())).String()
}

// PreviewWithText returns a colour block with text overlaid in black or
// white, whichever reads better against the colour.
func PreviewWithText(out *termenv.Output, h Hex, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	fg := "#FFFFFF"
	if Luminance(HexToRGB(h)) > 0.179 {
		fg = "#000000"
	}

	// Pad or truncate text to fit width.
	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return out.String(displayText).
		Foreground(out.Color(fg)).
		Background(out.Color(h.Upper())).
		String()
}
