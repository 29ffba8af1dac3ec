package analyzer

// namedColor pairs a human-readable name with its reference RGB value.
type namedColor struct {
	name    string
	r, g, b int
}

// Reference colors for naming cluster centroids. Matching is by nearest
// squared Euclidean distance in RGB space.
var namedColors = []namedColor{
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
	{"gray", 128, 128, 128},
	{"red", 255, 0, 0},
	{"orange", 255, 165, 0},
	{"yellow", 255, 255, 0},
	{"green", 0, 128, 0},
	{"teal", 0, 128, 128},
	{"cyan", 0, 255, 255},
	{"blue", 0, 0, 255},
	{"navy", 0, 0, 128},
	{"purple", 128, 0, 128},
	{"pink", 255, 192, 203},
	{"brown", 165, 42, 42},
	{"beige", 245, 245, 220},
}

// nearestColorName returns the reference color name closest to the given
// RGB triple.
func nearestColorName(r, g, b int) string {
	best := namedColors[0].name
	bestDist := -1
	for _, nc := range namedColors {
		dr := r - nc.r
		dg := g - nc.g
		db := b - nc.b
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = nc.name
		}
	}
	return best
}
