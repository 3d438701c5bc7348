// Package language classifies query text into one of the three languages the
// assistant answers in: English, Malayalam, and Manglish (Malayalam written
// in Latin script).
//
// Classification is an ordered cascade:
//
//  1. Malayalam script present → Malayalam (authoritative, wins over any
//     accompanying Latin text)
//  2. A known Manglish marker word present → Manglish
//  3. Statistical identification reports English → English
//  4. Everything else → English (default)
//
// There is no "unknown" result; every input resolves to exactly one Language.
package language

// Language identifies one of the supported response languages.
type Language string

// Supported languages. The string values double as wire codes in the HTTP
// API and as prompt template keys.
const (
	English   Language = "en"
	Malayalam Language = "ml"
	Manglish  Language = "manglish"
)

// All returns every supported language.
func All() []Language {
	return []Language{English, Malayalam, Manglish}
}

// Parse maps a wire code to a Language. It accepts a few common aliases so
// that callers sending "english" or "malayalam" instead of the short codes
// still get what they meant. Returns false for anything unrecognized.
func Parse(s string) (Language, bool) {
	switch s {
	case "en", "english":
		return English, true
	case "ml", "malayalam":
		return Malayalam, true
	case "manglish":
		return Manglish, true
	}
	return "", false
}

// String returns the wire code.
func (l Language) String() string {
	return string(l)
}
