package convert

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuskha/nuskha/internal/mdown"
)

func writeShamelaDB(t *testing.T, dir string) string {
	t.Helper()
	fp := filepath.Join(dir, "123.sqlite")
	db, err := sql.Open("sqlite", fp)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE b123 (id TEXT, nass TEXT, page TEXT, part TEXT)`,
		`CREATE TABLE t123 (id TEXT, tit TEXT, lvl TEXT)`,
		`CREATE TABLE Main (bk TEXT, betaka TEXT)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	_, err = db.Exec(`INSERT INTO b123 VALUES
		('2', 'نص آخر______حاشية هنا', '2', '1'),
		('1', 'كتاب الحيوان¶هذا نص الكتاب', '1', '1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t123 VALUES ('1', 'كتاب الحيوان', '1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Main VALUES ('الحيوان',
		'المؤلف: الجاحظ` + "\n" + `الناشر: دار الكتب')`)
	require.NoError(t, err)
	return fp
}

func TestShamela_ConvertFile_FullDocument(t *testing.T) {
	dir := t.TempDir()
	src := writeShamelaDB(t, dir)

	c := NewShamela(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true})
	require.NoError(t, c.ConvertFile(context.Background(), src, ""))

	out, err := os.ReadFile(filepath.Join(dir, "out", "123"+mdown.Extension))
	require.NoError(t, err)
	text := string(out)

	require.True(t, strings.HasPrefix(text, mdown.MagicValue))
	require.Contains(t, text, "#META# bk: الحيوان")
	require.Contains(t, text, "#META# Shamela_short_metadata_record")
	require.Contains(t, text, "#META# المؤلف: الجاحظ")
	require.Contains(t, text, "#META# الناشر: دار الكتب")

	// rows ordered by id, each closed with its page marker
	require.Contains(t, text, "PageV01P001")
	require.Contains(t, text, "PageV01P002")
	require.Less(t, strings.Index(text, "هذا نص الكتاب"), strings.Index(text, "نص آخر"))

	// the toc title found in the passage is marked in place
	require.Contains(t, text, "### | AUTO")
	require.Contains(t, text, "كتاب الحيوان")

	// footnote moved behind the endnote splitter
	require.Contains(t, text, "ENDNOTES")
	noteStart := strings.Index(text, "ENDNOTES")
	require.Contains(t, text[noteStart:], "حاشية هنا")
	require.NotContains(t, text[:noteStart], "حاشية")
	require.NotContains(t, text, "______")
}

func TestShamela_MissingBookTable_Error(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "empty.sqlite")
	db, err := sql.Open("sqlite", fp)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (x TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c := NewShamela(Options{DestFolder: dir, Overwrite: true})
	err = c.ConvertFile(context.Background(), fp, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}

func TestAnnotateTitle_TitleInPassage_AUTO(t *testing.T) {
	passage := "كتاب البيان\nنص يتبع العنوان"
	got := annotateTitle(passage, tocEntry{id: 1, title: "كتاب البيان", level: 2})
	require.True(t, strings.HasPrefix(got, "\n\n### || AUTO كتاب البيان\n\n"))
	require.Contains(t, got, "نص يتبع العنوان")
}

func TestAnnotateTitle_TitleMatchesAcrossPunctuation(t *testing.T) {
	passage := "كتاب - البيان، والتبيين"
	got := annotateTitle(passage, tocEntry{id: 1, title: "كتاب البيان", level: 1})
	require.Contains(t, got, "### | AUTO")
}

func TestAnnotateTitle_TitleAbsent_CHECK(t *testing.T) {
	got := annotateTitle("نص بلا عنوان", tocEntry{id: 1, title: "باب المقدمة", level: 1})
	require.True(t, strings.HasPrefix(got, "\n\n### | CHECK [باب المقدمة]\n\n"))
	require.Contains(t, got, "نص بلا عنوان")
}

func TestShamelaPostProcess_MidSentenceMarker_ContinuesLine(t *testing.T) {
	got := shamelaPostProcess("كلام يتواصل\n\nPageV01P001\n\nبقية الكلام")
	require.Contains(t, got, "كلام يتواصل PageV01P001\n~~بقية الكلام")
}

func TestShamelaPostProcess_MarkerAfterSentenceEnd_OwnLine(t *testing.T) {
	got := shamelaPostProcess("نهاية الجملة.\n\nPageV01P001\n\nكلام جديد")
	require.Contains(t, got, "نهاية الجملة.\nPageV01P001\n# كلام جديد")
}

func TestFormatShamelaMetadata_BetakaSplit(t *testing.T) {
	got := formatShamelaMetadata([][2]string{
		{"bk", "العقد الفريد"},
		{"betaka", "المؤلف: ابن عبد ربه\nتعليق بلا مفتاح"},
		{"empty", ""},
	})
	require.Contains(t, got, "#META# bk: العقد الفريد")
	require.Contains(t, got, "#META# Shamela_short_metadata_record")
	require.Contains(t, got, "#META# المؤلف: ابن عبد ربه")
	require.Contains(t, got, "#META# digitization_comments: تعليق بلا مفتاح")
	require.NotContains(t, got, "#META# empty")
}
