package harmony

import (
	"fmt"
	"strings"
)

// Canned phrase tables. Description text is assembled by label lookup, not
// generated; the same inputs always produce the same words.

var harmonyPhrases = map[Label]string{
	LabelComplementary: "Opposing hues play off each other for a bold, high-contrast look.",
	LabelAnalogous:     "Neighboring hues blend into a smooth, cohesive palette.",
	LabelTriadic:       "Three distinct hue families balance each other with lively tension.",
	LabelMonochrome:    "A single hue family keeps the outfit clean and understated.",
	LabelDiverse:       "A wide spread of hues gives the outfit an eclectic, expressive feel.",
}

const unknownHarmonyPhrase = "The colors work together comfortably."

var occasionPhrases = map[string]string{
	"casual":   "Easy to wear day to day without feeling overdone.",
	"formal":   "Restrained enough to hold up in a formal setting.",
	"party":    "Enough visual energy to stand out at a party.",
	"business": "Polished and professional for the office.",
	"sport":    "Energetic tones that suit an active day.",
	"date":     "Warm and flattering for an evening out.",
}

const unknownOccasionPhrase = "A safe pick for most occasions."

var typeClauses = map[string]string{
	"top":       "The tops anchor the palette here.",
	"bottom":    "Let the bottoms carry the statement color.",
	"dress":     "A dress-led look keeps the silhouette simple.",
	"outerwear": "The outer layer ties the palette together.",
	"shoes":     "Footwear adds the finishing accent.",
	"accessory": "Accessories give the look its final touch.",
}

// StyleNotes builds the description for a combination: a harmony phrase, an
// occasion phrase, and an optional clause when the user asked for a specific
// clothing type.
func StyleNotes(label Label, occasion, clothingType string) string {
	parts := make([]string, 0, 3)

	if phrase, ok := harmonyPhrases[label]; ok {
		parts = append(parts, phrase)
	} else {
		parts = append(parts, unknownHarmonyPhrase)
	}

	if phrase, ok := occasionPhrases[occasion]; ok {
		parts = append(parts, phrase)
	} else {
		parts = append(parts, unknownOccasionPhrase)
	}

	if clause, ok := typeClauses[clothingType]; ok {
		parts = append(parts, clause)
	}

	return strings.Join(parts, " ")
}

// ColorAnalysis describes the palette relationship, naming the leading
// colors when available.
func ColorAnalysis(label Label, colorNames []string) string {
	relation := map[Label]string{
		LabelComplementary: "a complementary contrast",
		LabelAnalogous:     "an analogous flow",
		LabelTriadic:       "a triadic balance",
		LabelMonochrome:    "a monochrome base",
		LabelDiverse:       "a diverse mix",
	}[label]
	if relation == "" {
		relation = "a balanced mix"
	}

	leads := leadingNames(colorNames, 2)
	if len(leads) == 0 {
		return fmt.Sprintf("The palette forms %s.", relation)
	}
	return fmt.Sprintf("Built around %s, the palette forms %s.", strings.Join(leads, " and "), relation)
}

// Recommendation gives the occasion-level verdict for a scored combination.
func Recommendation(label Label, occasion string, rating int) string {
	subject := occasion
	if _, ok := occasionPhrases[occasion]; !ok {
		subject = "most occasions"
	}
	switch {
	case rating >= 5:
		return fmt.Sprintf("An excellent match for %s.", subject)
	case rating >= 4:
		return fmt.Sprintf("A strong choice for %s.", subject)
	default:
		return fmt.Sprintf("A workable option for %s.", subject)
	}
}

// leadingNames returns up to n distinct color names in palette order.
func leadingNames(names []string, n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == n {
			break
		}
	}
	return out
}
