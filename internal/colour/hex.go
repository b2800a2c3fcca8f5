// Package colour provides colour representations and conversions for picked colours.
package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Hex is a colour in "#RRGGBB" form. Input is case-insensitive; the canonical
// form produced by ParseHex and RGB.Hex is uppercase.
type Hex string

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as an uppercase hex string (e.g., "#1A2B3C").
func (rgb RGB) Hex() Hex {
	return Hex(fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B))
}

// Color converts the RGB value to an opaque color.Color.
func (rgb RGB) Color() color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// HexToRGB parses a "#RRGGBB" string into its channels. The input is assumed
// to be well formed; no validation is performed, and any channel that cannot
// be parsed comes back as zero.
func HexToRGB(hex Hex) RGB {
	s := string(hex)
	return RGB{
		R: hexByte(s, 1),
		G: hexByte(s, 3),
		B: hexByte(s, 5),
	}
}

func hexByte(s string, at int) uint8 {
	if len(s) < at+2 {
		return 0
	}
	v, err := strconv.ParseUint(s[at:at+2], 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// ParseHex validates a hex colour and returns it in canonical uppercase form.
// The leading '#' is optional.
func ParseHex(s string) (Hex, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "#")
	if len(v) != 6 {
		return "", fmt.Errorf("invalid hex colour %q: expected 6 hex digits", s)
	}
	if _, err := strconv.ParseUint(v, 16, 32); err != nil {
		return "", fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return Hex("#" + strings.ToUpper(v)), nil
}

// Upper returns the display form of the colour.
func (h Hex) Upper() string {
	return strings.ToUpper(string(h))
}

// RGB is shorthand for HexToRGB(h).
func (h Hex) RGB() RGB {
	return HexToRGB(h)
}

// HSL converts the colour to HSL.
func (h Hex) HSL() HSL {
	rgb := HexToRGB(h)
	return RGBToHSL(rgb.R, rgb.G, rgb.B)
}
