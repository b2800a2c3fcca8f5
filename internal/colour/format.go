package colour

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Format names a textual representation of a colour.
type Format string

// Supported formats.
const (
	FormatHex Format = "hex"
	FormatRGB Format = "rgb"
	FormatHSL Format = "hsl"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatHex, FormatRGB, FormatHSL}

var _ pflag.Value = (*Format)(nil)

// String implements pflag.Value.
func (f *Format) String() string {
	if f == nil || *f == "" {
		return string(FormatHex)
	}
	return string(*f)
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}

// Label returns the format name as shown in status messages ("HEX").
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatHex:
		return FormatHex, nil
	case FormatRGB:
		return FormatRGB, nil
	case FormatHSL:
		return FormatHSL, nil
	default:
		return "", fmt.Errorf("invalid format: %s (valid: hex, rgb, hsl)", s)
	}
}

// Format renders the colour in the requested format. Unknown formats render
// as hex.
func (h Hex) Format(f Format) string {
	switch f {
	case FormatRGB:
		return HexToRGB(h).String()
	case FormatHSL:
		return h.HSL().String()
	default:
		return h.Upper()
	}
}

// Values holds every representation of a colour, used for JSON output.
type Values struct {
	Hex string `json:"hex"`
	RGB RGB    `json:"rgb"`
	HSL HSL    `json:"hsl"`
}

// ValuesOf returns every representation of h.
func ValuesOf(h Hex) Values {
	rgb := HexToRGB(h)
	return Values{
		Hex: h.Upper(),
		RGB: rgb,
		HSL: RGBToHSL(rgb.R, rgb.G, rgb.B),
	}
}
