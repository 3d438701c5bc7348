package language

import (
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

// manglishMarkers is the closed set of Manglish marker words: grammatical
// particles, pronouns and common verb roots transliterated from Malayalam.
// A single hit classifies the whole input as Manglish.
//
// This table is versioned behavior: adding or removing an entry changes
// classification and must be reflected in the detector tests.
var manglishMarkers = map[string]struct{}{
	// particles and pronouns
	"anu": {}, "und": {}, "alle": {}, "eda": {},
	"njan": {}, "avan": {}, "aval": {},
	"ente": {}, "ninte": {}, "ninne": {}, "avante": {}, "avalude": {},
	// numerals and question words
	"oru": {}, "randu": {}, "moonu": {}, "naalu": {},
	"ethra": {}, "evide": {}, "eppo": {}, "pattumo": {}, "vendi": {},
	// common verb forms
	"vantha": {}, "poya": {}, "cheythu": {}, "vayichu": {}, "paranju": {},
	"kitti": {}, "koduthu": {}, "eduthu": {}, "vechu": {},
}

// Detector classifies input text. It is safe for concurrent use; Detect is
// pure and performs no I/O.
type Detector struct {
	lingua lingua.LanguageDetector
}

// NewDetector builds a Detector. Construction is comparatively expensive
// (the statistical models are loaded once); callers should create a single
// instance and share it.
func NewDetector() *Detector {
	// The statistical step only has to answer "is this English?". The
	// candidate set adds the languages most likely to appear in Latin
	// script around a Kerala campus so English is not a forced winner.
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Hindi, lingua.Tamil, lingua.French).
		WithLowAccuracyMode().
		Build()

	return &Detector{lingua: d}
}

// Detect classifies text. See the package comment for the cascade order.
// Empty or whitespace-only input returns English without consulting the
// statistical model.
func (d *Detector) Detect(text string) Language {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return English
	}

	if containsMalayalamScript(trimmed) {
		return Malayalam
	}

	for _, word := range tokenize(trimmed) {
		if _, ok := manglishMarkers[word]; ok {
			return Manglish
		}
	}

	if lang, exists := d.lingua.DetectLanguageOf(trimmed); exists && lang == lingua.English {
		return English
	}

	// Inconclusive detection defaults to English.
	return English
}

// containsMalayalamScript reports whether any rune falls in the Malayalam
// Unicode block (U+0D00–U+0D7F).
func containsMalayalamScript(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Malayalam, r) {
			return true
		}
	}
	return false
}

// tokenize splits text into lowercase alphabetic words.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
