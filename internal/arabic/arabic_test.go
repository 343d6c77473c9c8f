package arabic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDenoise_StripsHarakat(t *testing.T) {
	in := "بِسْمِ الْلّه"
	require.Equal(t, "بسم الله", Denoise(in))
}

func TestDenoise_Idempotent(t *testing.T) {
	in := "وَالَّذِينَ يُؤْمِنُونَ بِمَا أُنْزِلَ إِلَيْكَ"
	once := Denoise(in)
	require.Equal(t, once, Denoise(once))
}

func TestDenoise_RemovesAllNoiseCharacters(t *testing.T) {
	in := "ْ ً ٌ ٍ َ ُ ِ ّ ۡ ࣰ ࣱ ࣲ ٰ ـ"
	require.Equal(t, strings.Repeat(" ", 13), Denoise(in))
}

func TestFoldComposites_DecomposesLigatures(t *testing.T) {
	// U+FDF2 ARABIC LIGATURE ALLAH ISOLATED FORM
	folded := FoldComposites("ﷲ")
	require.Equal(t, []rune{'ا', 'ل', 'ل', 'ه'}, []rune(folded))
}

func TestFoldComposites_ComposesHamzaCarrier(t *testing.T) {
	// ALEF + COMBINING HAMZA ABOVE composes to a single code point
	folded := FoldComposites("أ")
	require.Len(t, []rune(folded), 1)
}

func TestNormalizeLight(t *testing.T) {
	require.Equal(t, "الف الف الف الف الف", NormalizeLight("ألف الف إلف آلف ٱلف"))
	require.Equal(t, "يحيي", NormalizeLight("يحيى"))
	require.Equal(t, "مقرء فء", NormalizeLight("مقرئ فيء"))
	require.Equal(t, "قهوة", NormalizeLight("قهوة"))
}

func TestNormalizeHeavy(t *testing.T) {
	require.Equal(t, "الف الف الف الف الف", NormalizeHeavy("ألف الف إلف آلف ٱلف"))
	require.Equal(t, "يحيي", NormalizeHeavy("يحيى"))
	require.Equal(t, "مقر في", NormalizeHeavy("مقرئ فيء"))
	require.Equal(t, "قهوه", NormalizeHeavy("قهوة"))
}

func TestNormalizePersian(t *testing.T) {
	require.Equal(t, "سیاسی", NormalizePersian("سياسي"))
	require.Equal(t, "مدرک", NormalizePersian("مدرك"))
	require.Equal(t, "حتما", NormalizePersian("حتماً"))
}

func TestNormalizeDigits(t *testing.T) {
	require.Equal(t, "٠١٢٣٤", NormalizeDigits("۰۱۲۳۴"))
}

func TestDenormalize_BuildsVariantClasses(t *testing.T) {
	require.Equal(t, "يحي[يى]", Denormalize("يحيى"))
	require.Equal(t, "هوي[هة]", Denormalize("هوية"))
}

func TestCountCharsAndTokens(t *testing.T) {
	in := "ابجد ابجد اَبًجٌدُ"
	require.Equal(t, 16, CountChars(in))
	require.Equal(t, 3, CountTokens(in))
}

func TestTokenize_OffsetsSliceSource(t *testing.T) {
	in := "ابجد ابجد اَبًجٌدُ"
	tokens := Tokenize(in)
	require.Len(t, tokens, 3)
	require.Equal(t, "ابجد", tokens[0].Text)
	for _, tok := range tokens {
		require.Equal(t, tok.Text, in[tok.Start:tok.End])
	}
}

func TestCountText_SkipsHeader(t *testing.T) {
	text := "######OpenITI#\n#META# title: x\n#META#Header#End#\nابجد ابجد"
	require.Equal(t, 2, CountText(text, CountOptions{Mode: CountModeToken}))
	// without a splitter the whole text is counted
	require.Equal(t, 2, CountText("ابجد ابجد", CountOptions{Mode: CountModeToken}))
}

func TestCountText_EditorialSections(t *testing.T) {
	text := "### | باب\nابجد ابجد\n### |EDITOR|\nابجد\n"

	// default: editorial sections are included
	require.Equal(t, 4, CountText(text, CountOptions{Mode: CountModeToken}))
	require.Equal(t, 3, CountText(text, CountOptions{
		Mode:             CountModeToken,
		ExcludeEditorial: true,
	}))
}

func TestIsArabicToken(t *testing.T) {
	require.True(t, IsArabicToken("ابجد"))
	require.False(t, IsArabicToken("abc"))
	require.False(t, IsArabicToken("ابجد ابجد"))
	require.False(t, IsArabicToken(""))
}
