package harmony

// Score bounds. Clamping keeps every result feeling reasonably good rather
// than letting the table extremes through.
const (
	MinScore = 65
	MaxScore = 95

	MinRating = 1
	MaxRating = 5
)

// baseScores maps each harmony label to its base compatibility score.
var baseScores = map[Label]int{
	LabelComplementary: 95,
	LabelAnalogous:     90,
	LabelTriadic:       85,
	LabelMonochrome:    80,
	LabelDiverse:       75,
}

// unknownLabelBase applies when a label is absent from the table.
const unknownLabelBase = 70

// occasionRule describes how an occasion weights the base score: favored
// harmony labels get the higher multiplier, everything else the lower one.
type occasionRule struct {
	favored     map[Label]bool
	favoredMult float64
	defaultMult float64
}

var occasionRules = map[string]occasionRule{
	"formal": {
		favored:     map[Label]bool{LabelComplementary: true, LabelMonochrome: true},
		favoredMult: 0.9,
		defaultMult: 0.8,
	},
	"party": {
		favored:     map[Label]bool{LabelComplementary: true, LabelDiverse: true},
		favoredMult: 0.95,
		defaultMult: 0.85,
	},
	"casual": {
		favored:     map[Label]bool{LabelAnalogous: true, LabelTriadic: true},
		favoredMult: 0.95,
		defaultMult: 0.9,
	},
	"business": {
		favored:     map[Label]bool{LabelMonochrome: true, LabelAnalogous: true},
		favoredMult: 0.9,
		defaultMult: 0.8,
	},
	"sport": {
		favored:     map[Label]bool{LabelComplementary: true, LabelTriadic: true},
		favoredMult: 0.95,
		defaultMult: 0.9,
	},
	"date": {
		favored:     map[Label]bool{LabelAnalogous: true, LabelComplementary: true},
		favoredMult: 0.95,
		defaultMult: 0.85,
	},
}

// unknownOccasionMult applies to occasions absent from the rules table.
const unknownOccasionMult = 0.9

// Score computes the compatibility score for a harmony label under an
// occasion. Base score times the occasion multiplier, truncated to an
// integer and clamped to [MinScore, MaxScore].
func Score(label Label, occasion string) int {
	base, ok := baseScores[label]
	if !ok {
		base = unknownLabelBase
	}

	mult := unknownOccasionMult
	if rule, ok := occasionRules[occasion]; ok {
		if rule.favored[label] {
			mult = rule.favoredMult
		} else {
			mult = rule.defaultMult
		}
	}

	score := int(float64(base) * mult)
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Rating derives the star rating from a score: floor(score/20)+1, clamped
// to [MinRating, MaxRating].
func Rating(score int) int {
	rating := score/20 + 1
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}

// Occasions lists every occasion with an explicit scoring rule.
func Occasions() []string {
	out := make([]string, 0, len(occasionRules))
	for occasion := range occasionRules {
		out = append(out, occasion)
	}
	return out
}

// Labels lists every harmony label with an explicit base score.
func Labels() []Label {
	out := make([]Label, 0, len(baseScores))
	for label := range baseScores {
		out = append(out, label)
	}
	return out
}
