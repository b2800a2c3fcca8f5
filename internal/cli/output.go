package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/muesli/termenv"

	"github.com/jmylchreest/pixelpick/internal/colour"
)

const swatchWidth = 4

// swatch returns a colour block, or "" when out cannot show colour.
func swatch(out *termenv.Output, h colour.Hex) string {
	if out.Profile == termenv.Ascii {
		return ""
	}
	return colour.Preview(out, h, swatchWidth)
}

// printColour writes h in format f on one line, after a swatch when the
// output supports colour.
func printColour(out *termenv.Output, h colour.Hex, f colour.Format) {
	if s := swatch(out, h); s != "" {
		fmt.Fprintf(out, "%s %s\n", s, h.Format(f))
		return
	}
	fmt.Fprintln(out, h.Format(f))
}

// colourTable renders entries with every format, numbered from 1. When out
// supports colour the number sits on a swatch of the entry.
func colourTable(out *termenv.Output, entries []colour.Hex) string {
	table := NewTable([]string{"#", "HEX", "RGB", "HSL"})
	for i, e := range entries {
		n := strconv.Itoa(i + 1)
		if out.Profile != termenv.Ascii {
			n = colour.PreviewWithText(out, e, n, swatchWidth)
		}
		v := colour.ValuesOf(e)
		table.AddRow([]string{n, v.Hex, v.RGB.String(), v.HSL.String()})
	}
	return table.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
