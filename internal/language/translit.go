package language

import "strings"

// translitMap maps Malayalam letters to an approximate Latin rendering.
// Vowel signs and virama are intentionally coarse; the goal is a readable
// Manglish rendition for documents that lack one, not linguistic accuracy.
var translitMap = map[rune]string{
	'അ': "a", 'ആ': "aa", 'ഇ': "i", 'ഈ': "ee", 'ഉ': "u", 'ഊ': "oo",
	'എ': "e", 'ഏ': "e", 'ഐ': "ai", 'ഒ': "o", 'ഓ': "o", 'ഔ': "au",
	'ക': "ka", 'ഖ': "kha", 'ഗ': "ga", 'ഘ': "gha", 'ങ': "nga",
	'ച': "cha", 'ഛ': "chha", 'ജ': "ja", 'ഝ': "jha", 'ഞ': "nja",
	'ട': "tta", 'ഠ': "ttha", 'ഡ': "dda", 'ഢ': "ddha", 'ണ': "nna",
	'ത': "tha", 'ഥ': "thha", 'ദ': "dha", 'ധ': "dhha", 'ന': "na",
	'പ': "pa", 'ഫ': "pha", 'ബ': "ba", 'ഭ': "bha", 'മ': "ma",
	'യ': "ya", 'ര': "ra", 'ല': "la", 'വ': "va", 'ശ': "sha",
	'ഷ': "ssa", 'സ': "sa", 'ഹ': "ha", 'ള': "lla", 'ഴ': "zha", 'റ': "rra",
	'ൻ': "n", 'ൺ': "n", 'ർ': "r", 'ൽ': "l", 'ൾ': "l", 'ൿ': "k",
}

// Transliterate renders Malayalam-script text in Latin letters. Characters
// without a mapping (Latin text, digits, punctuation, vowel signs) pass
// through unchanged.
func Transliterate(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if latin, ok := translitMap[r]; ok {
			b.WriteString(latin)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
