package analyzer

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"
)

// ClothingTypeUnknown is returned when no keyword matches the file name.
const ClothingTypeUnknown = "unknown"

// typeKeywords maps file-name keywords to clothing type tags.
var typeKeywords = map[string]string{
	"shirt":    "top",
	"tshirt":   "top",
	"tee":      "top",
	"blouse":   "top",
	"top":      "top",
	"sweater":  "top",
	"pants":    "bottom",
	"trousers": "bottom",
	"jeans":    "bottom",
	"shorts":   "bottom",
	"skirt":    "bottom",
	"dress":    "dress",
	"gown":     "dress",
	"jacket":   "outerwear",
	"coat":     "outerwear",
	"hoodie":   "outerwear",
	"blazer":   "outerwear",
	"shoes":    "shoes",
	"sneakers": "shoes",
	"boots":    "shoes",
	"heels":    "shoes",
	"hat":      "accessory",
	"cap":      "accessory",
	"scarf":    "accessory",
	"belt":     "accessory",
	"bag":      "accessory",
}

// sortedKeywords keeps the fuzzy pass deterministic; map iteration order
// would make equal-distance ties come out differently between runs.
var sortedKeywords = func() []string {
	keys := make([]string, 0, len(typeKeywords))
	for k := range typeKeywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// maxKeywordDistance bounds the fuzzy match so short tokens cannot jump
// between unrelated keywords ("tee" vs "bee").
const maxKeywordDistance = 2

// filenameClassifier infers a clothing type from the uploaded file name.
// Tokens are matched against the keyword table exactly first, then by
// Levenshtein distance to tolerate typos like "jaket" or "snickers".
type filenameClassifier struct{}

// NewFilenameClassifier creates a classifier driven by file-name keywords
func NewFilenameClassifier() TypeClassifier {
	return &filenameClassifier{}
}

// Classify returns the clothing type tag for an original file name
func (fc *filenameClassifier) Classify(originalName string) string {
	for _, token := range tokenizeFilename(originalName) {
		if tag, ok := typeKeywords[token]; ok {
			return tag
		}
	}

	// Fuzzy pass only after all exact matches failed. Tokens shorter than
	// four letters are skipped; at distance 2 they match almost anything
	// ("img" is two edits from "bag").
	for _, token := range tokenizeFilename(originalName) {
		if len(token) < 4 {
			continue
		}
		bestTag := ""
		bestDist := maxKeywordDistance + 1
		for _, keyword := range sortedKeywords {
			d := levenshtein.Distance(token, keyword)
			if d < bestDist {
				bestDist = d
				bestTag = typeKeywords[keyword]
			}
		}
		if bestDist <= maxKeywordDistance && bestTag != "" {
			return bestTag
		}
	}

	return ClothingTypeUnknown
}

// tokenizeFilename lowercases the name and splits it on anything that is not
// a letter, dropping the extension first so "photo.png" cannot fuzzy-match
// "png" against a keyword.
func tokenizeFilename(name string) []string {
	lower := strings.ToLower(name)
	lower = strings.TrimSuffix(lower, filepath.Ext(lower))
	return strings.FieldsFunc(lower, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}
