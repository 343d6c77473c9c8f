// Package arabic provides pure-function normalization and counting for
// Arabic-script text: diacritic stripping, composite-character folding,
// digit normalization, and tokenization.
package arabic

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// arChars lists the characters counted as Arabic for character and token
// counts: the consonants, short vowels, tatweel, and common Persian/Urdu
// additions used in corpus texts.
const arChars = "ءآأؤإئابةتثجحخدذرزسشصضطظعغـفقكلمنهوىيًٌٍَُِّْٮٰٹپچژکگیے"

// arNums lists Arabic-Indic and extended Arabic-Indic digits.
const arNums = "٠١٢٣٤٥٦٧٨٩۰۱۲۳۴۵۶۷۸۹"

var (
	// one Arabic character
	arCharRe = regexp.MustCompile("[" + arChars + "]")
	// one Arabic token (an unbroken run of Arabic characters)
	arTokRe = regexp.MustCompile("[" + arChars + "]+")
)

// noiseChars holds the non-consonantal characters removed by Denoise.
var noiseChars = map[rune]struct{}{
	'ّ': {}, // Tashdid / Shadda
	'َ': {}, // Fatha
	'ً': {}, // Tanwin Fath / Fathatan
	'ُ': {}, // Damma
	'ٌ': {}, // Tanwin Damm / Dammatan
	'ِ': {}, // Kasra
	'ٍ': {}, // Tanwin Kasr / Kasratan
	'ْ': {}, // Sukun
	'ۡ': {}, // Quranic Sukun (small high dotless head of khah)
	'ࣰ': {}, // Quranic Open Fathatan
	'ࣱ': {}, // Quranic Open Dammatan
	'ࣲ': {}, // Quranic Open Kasratan
	'ٰ': {}, // Dagger Alif (superscript alef)
	'ـ': {}, // Tatwil / Kashida
	'ٖ': {}, // Subscript Alef
	'ٗ': {}, // Inverted Damma
	'ۤ': {}, // Small High Madda
}

// Denoise removes non-consonantal characters (harakat, tanwin, shadda,
// sukun, Quranic vowel signs, dagger alif, tatweel) from Arabic text.
// Denoise is idempotent.
func Denoise(text string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := noiseChars[r]; ok {
			return -1
		}
		return r
	}, text)
}

// FoldComposites normalizes composite characters, ligatures, and contextual
// letter forms using Unicode NFKC normalization: combining sequences are
// composed, ligatures decomposed into their constituent letters, and
// positional presentation forms replaced by the general code points.
func FoldComposites(text string) string {
	return norm.NFKC.String(text)
}

// replacePairs applies ordered literal replacements, first to last.
func replacePairs(text string, pairs [][2]string) string {
	for _, p := range pairs {
		text = strings.ReplaceAll(text, p[0], p[1])
	}
	return text
}

// NormalizeLight lightly normalizes Arabic text: alifs and alif maqsura are
// simplified, hamzas on carriers replaced by standalone hamzas, and Persian
// letter variants mapped to their Arabic counterparts.
func NormalizeLight(text string) string {
	text = FoldComposites(text)
	return replacePairs(text, [][2]string{
		{"أ", "ا"}, {"ٱ", "ا"}, {"آ", "ا"}, {"إ", "ا"}, // alifs
		{"ى", "ي"},                                     // alif maqsura
		{"يء", "ء"}, {"ىء", "ء"}, {"ؤ", "ء"}, {"ئ", "ء"}, // hamzas
		{"ک", "ك"}, {"ی", "ي"}, {"ۀ", "ه"}, // Persian letters
	})
}

// NormalizeHeavy normalizes Arabic text by simplifying complex characters:
// alifs, alif maqsura, hamzas (removed), and ta marbuta.
func NormalizeHeavy(text string) string {
	text = FoldComposites(text)
	return replacePairs(text, [][2]string{
		{"أ", "ا"}, {"ٱ", "ا"}, {"آ", "ا"}, {"إ", "ا"}, // alifs
		{"ى", "ي"},                         // alif maqsura
		{"ؤ", ""}, {"ئ", ""}, {"ء", ""},    // hamzas
		{"ک", "ك"}, {"ی", "ي"},             // Persian letters
		{"ة", "ه"}, {"ۀ", "ه"},             // ta marbuta / ha
	})
}

var persianRepl = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile("ك"), "ک"},
	{regexp.MustCompile("[أاإٱ]"), "ا"},
	{regexp.MustCompile("[يى]ء?"), "ی"},
	{regexp.MustCompile("ؤِ"), "و"},
	{regexp.MustCompile("ئ"), "ی"},
	{regexp.MustCompile("[ءًِ]"), ""},
	{regexp.MustCompile("[ۀة]"), "ه"},
}

// NormalizePersian normalizes Persian strings by converting Arabic
// characters to their Persian counterparts (kaf, ya, ta marbuta) and
// removing hamza, fathatan, and kasra.
func NormalizePersian(text string) string {
	for _, r := range persianRepl {
		text = r.re.ReplaceAllString(text, r.with)
	}
	return text
}

// NormalizeDigits replaces extended Arabic-Indic (Persian/Urdu) digit forms
// with the Arabic-Indic digits used in the corpus.
func NormalizeDigits(text string) string {
	return replacePairs(text, [][2]string{
		{"۰", "٠"}, {"۱", "١"}, {"۲", "٢"}, {"۳", "٣"}, {"۴", "٤"},
		{"۵", "٥"}, {"۶", "٦"}, {"۷", "٧"}, {"۸", "٨"}, {"۹", "٩"},
	})
}

var (
	denormAlif       = regexp.MustCompile("[إأٱآا]")
	denormMaqsuraEnd = regexp.MustCompile(`[يى]\b`)
	denormMarbutaEnd = regexp.MustCompile(`[هة]\b`)
	denormHamza      = regexp.MustCompile("[ؤئء]")
)

// Denormalize replaces normalizable characters with regex character classes
// covering all their variants, for building search patterns that match any
// spelling.
func Denormalize(text string) string {
	text = denormAlif.ReplaceAllString(text, "[إأٱآا]")
	text = denormMaqsuraEnd.ReplaceAllString(text, "[يى]")
	text = denormMarbutaEnd.ReplaceAllString(text, "[هة]")
	text = denormHamza.ReplaceAllString(text, "(?:[ؤئ]|[وي]ء)")
	return text
}

// Token is a word token with its byte offsets in the source string.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into Arabic tokens with byte offsets.
func Tokenize(text string) []Token {
	idx := arTokRe.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(idx))
	for _, m := range idx {
		tokens = append(tokens, Token{Text: text[m[0]:m[1]], Start: m[0], End: m[1]})
	}
	return tokens
}

// CountChars counts the Arabic characters in a string.
func CountChars(text string) int {
	return len(arCharRe.FindAllString(text, -1))
}

// CountTokens counts the Arabic tokens in a string.
func CountTokens(text string) int {
	return len(arTokRe.FindAllString(text, -1))
}

// IsArabicToken reports whether s is an unbroken run of Arabic characters.
func IsArabicToken(s string) bool {
	return s != "" && arTokRe.FindString(s) == s
}

// ContainsArabic reports whether s contains at least one Arabic character.
func ContainsArabic(s string) bool {
	return arCharRe.MatchString(s)
}
