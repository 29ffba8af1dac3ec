// Package harmony classifies sets of clothing colors by their hue
// relationships and turns the classification into a deterministic
// compatibility score, star rating and descriptive text. It has no
// dependency on the HTTP layer or on image decoding.
package harmony

import (
	"math"
	"strconv"
	"strings"
)

// Label is the categorical tag describing the hue relationship among a set
// of colors.
type Label string

const (
	LabelMonochrome    Label = "monochrome"
	LabelComplementary Label = "complementary"
	LabelAnalogous     Label = "analogous"
	LabelTriadic       Label = "triadic"
	LabelDiverse       Label = "diverse"
)

// Hue-difference window for complementary detection, in degrees.
const (
	complementaryMin = 160.0
	complementaryMax = 200.0
)

// Classify determines the harmony label for a set of hex colors.
//
// Fewer than two parseable colors classify as monochrome. Any unordered pair
// whose absolute hue difference falls in [160,200] degrees makes the whole
// set complementary; this takes priority over the range-based labels even
// when one of those would also apply. Otherwise the total hue range decides:
// up to 60 degrees is analogous, up to 120 triadic, anything wider diverse.
func Classify(hexColors []string) Label {
	hues := make([]float64, 0, len(hexColors))
	for _, hex := range hexColors {
		if h, ok := HueFromHex(hex); ok {
			hues = append(hues, h)
		}
	}

	if len(hues) < 2 {
		return LabelMonochrome
	}

	for i := 0; i < len(hues); i++ {
		for j := i + 1; j < len(hues); j++ {
			diff := math.Abs(hues[i] - hues[j])
			if diff >= complementaryMin && diff <= complementaryMax {
				return LabelComplementary
			}
		}
	}

	minHue, maxHue := hues[0], hues[0]
	for _, h := range hues[1:] {
		minHue = math.Min(minHue, h)
		maxHue = math.Max(maxHue, h)
	}

	switch hueRange := maxHue - minHue; {
	case hueRange <= 60:
		return LabelAnalogous
	case hueRange <= 120:
		return LabelTriadic
	default:
		return LabelDiverse
	}
}

// HueFromHex converts a 6-hex-digit color string ("#ff0000" or "ff0000") to
// its hue in degrees [0,360). The second return value is false when the
// string is not a valid color.
func HueFromHex(hex string) (float64, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}

	r := float64(v>>16&0xff) / 255.0
	g := float64(v>>8&0xff) / 255.0
	b := float64(v&0xff) / 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC
	if delta == 0 {
		return 0, true
	}

	var h float64
	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, true
}
