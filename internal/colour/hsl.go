package colour

import (
	"fmt"
	"math"
)

// HSL is a colour in integer HSL form: hue in degrees (0-359), saturation
// and lightness as percentages (0-100).
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// String returns the HSL colour in the format "hsl(h, s%, l%)".
func (hsl HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hsl.H, hsl.S, hsl.L)
}

// RGBToHSL converts 8-bit sRGB channels to HSL.
//
// When two channels tie for the maximum, red wins over green and green over
// blue. A hue that rounds up to 360 wraps to 0.
func RGBToHSL(r, g, b uint8) HSL {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	maxVal := math.Max(rf, math.Max(gf, bf))
	minVal := math.Min(rf, math.Min(gf, bf))
	diff := maxVal - minVal
	sum := maxVal + minVal

	l := sum / 2
	var h, s float64

	if diff != 0 {
		if l > 0.5 {
			s = diff / (2 - sum)
		} else {
			s = diff / sum
		}

		switch maxVal {
		case rf:
			h = (gf - bf) / diff
			if gf < bf {
				h += 6
			}
		case gf:
			h = (bf-rf)/diff + 2
		case bf:
			h = (rf-gf)/diff + 4
		}
		h /= 6
	}

	hue := roundHalfUp(h * 360)
	if hue >= 360 {
		hue -= 360
	}

	return HSL{
		H: hue,
		S: roundHalfUp(s * 100),
		L: roundHalfUp(l * 100),
	}
}

// roundHalfUp rounds to the nearest integer with halves going towards
// positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
