// Package color converts scene colors between normalized RGB triples and
// hexadecimal strings.
//
// Design tools report colors as three float channels in [0, 1]. The DSL
// represents the same value as a "#rrggbb" string, which is both shorter and
// easier for a text model to reproduce. The conversion quantizes each channel
// to 8 bits, so it is lossy for arbitrary floats but exact for channels that
// are already multiples of 1/255.
package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/scenedsl/pkg/errors"
)

// quantizeEpsilon absorbs float error in c*255 so that k/255 truncates to k.
const quantizeEpsilon = 1e-9

// RGB is a color with channels in [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Encode returns the "#rrggbb" form of c.
// Each channel is scaled by 255 and truncated toward zero, then clamped to
// the 0..255 range.
func Encode(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", quantize(c.R), quantize(c.G), quantize(c.B))
}

func quantize(ch float64) int {
	v := int(ch*255 + quantizeEpsilon)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}

// Decode parses a hex color string.
//
// A single leading '#' is optional. The remaining digits are split into three
// runs of equal length, so both "#f00" and "#ff0000" are accepted; each run is
// parsed as a hexadecimal integer and divided by 255.
//
// Decode returns an error with code MALFORMED_COLOR when the digit count is
// zero or not divisible by three, or when a run is not valid hex.
func Decode(s string) (RGB, error) {
	digits := strings.TrimPrefix(s, "#")
	n := len(digits)
	if n == 0 || n%3 != 0 {
		return RGB{}, errors.New(errors.ErrCodeMalformedColor, "color %q: %d hex digits cannot form 3 channels", s, n)
	}

	run := n / 3
	var ch [3]float64
	for i := range ch {
		part := digits[i*run : (i+1)*run]
		v, err := strconv.ParseUint(part, 16, 64)
		if err != nil {
			return RGB{}, errors.Wrap(errors.ErrCodeMalformedColor, err, "color %q: invalid channel %q", s, part)
		}
		ch[i] = float64(v) / 255.0
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}
