package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuskha/nuskha/internal/mdown"
)

func writeEpub(t *testing.T, dir, name string, members map[string]string) string {
	t.Helper()
	fp := filepath.Join(dir, name)
	f, err := os.Create(fp)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for member, content := range members {
		w, err := zw.Create(member)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return fp
}

func TestEpub_ConvertFile_TOCOrder(t *testing.T) {
	dir := t.TempDir()
	src := writeEpub(t, dir, "book.epub", map[string]string{
		"OEBPS/nav.xhtml": `<html><body><nav><ol>` +
			`<li><a href="ch2.xhtml">Two</a></li>` +
			`<li><a href="ch1.xhtml">One</a></li>` +
			`</ol></nav></body></html>`,
		"OEBPS/ch1.xhtml": `<html><body><p>الفصل الاول</p></body></html>`,
		"OEBPS/ch2.xhtml": `<html><body><h1>العنوان</h1><p>الفصل الثاني</p></body></html>`,
	})

	c, err := NewEpub(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true},
		EpubOptions{TOCName: "nav.xhtml"})
	require.NoError(t, err)
	require.NoError(t, c.ConvertFile(context.Background(), src, ""))

	out, err := os.ReadFile(filepath.Join(dir, "out", "book"+mdown.Extension))
	require.NoError(t, err)
	text := string(out)

	require.Contains(t, text, "### | العنوان")
	require.Contains(t, text, "# الفصل الثاني")
	require.Less(t, strings.Index(text, "الفصل الثاني"), strings.Index(text, "الفصل الاول"),
		"chapters should follow the table of contents, not the archive order")
	require.NotContains(t, text, "<p>", "markup delimiters left in output")
}

func TestEpub_NoTOC_LexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	src := writeEpub(t, dir, "book.epub", map[string]string{
		"OEBPS/b.xhtml": `<html><body><p>второй second</p></body></html>`,
		"OEBPS/a.xhtml": `<html><body><p>first text</p></body></html>`,
	})

	c, err := NewEpub(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true}, EpubOptions{})
	require.NoError(t, err)
	require.NoError(t, c.ConvertFile(context.Background(), src, ""))

	out, err := os.ReadFile(filepath.Join(dir, "out", "book"+mdown.Extension))
	require.NoError(t, err)
	require.Less(t, strings.Index(string(out), "first text"), strings.Index(string(out), "second"))
}

func TestHindawi_ExternalMetadata(t *testing.T) {
	dir := t.TempDir()
	metaFp := filepath.Join(dir, "hindawi_metadata.yml")
	metaYAML := "\"26362727\":\n  Title: كتاب الاعتبار\n  Author: اسامة بن منقذ\n"
	require.NoError(t, os.WriteFile(metaFp, []byte(metaYAML), 0o644))

	src := writeEpub(t, dir, "26362727.epub", map[string]string{
		"nav.xhtml":       `<html><body><nav><ol><li><a href="ch1.xhtml">One</a></li></ol></nav></body></html>`,
		"OEBPS/ch1.xhtml": `<html><body><p>نص الكتاب</p></body></html>`,
	})

	c, err := NewHindawi(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true}, metaFp)
	require.NoError(t, err)
	require.NoError(t, c.ConvertFile(context.Background(), src, ""))

	out, err := os.ReadFile(filepath.Join(dir, "out", "26362727"+mdown.Extension))
	require.NoError(t, err)
	text := string(out)
	require.Contains(t, text, "#META# Author: اسامة بن منقذ")
	require.Contains(t, text, "#META# Title: كتاب الاعتبار")
	require.Less(t, strings.Index(text, "#META# Author"), strings.Index(text, "#META# Title"),
		"metadata keys should be sorted")
	require.Contains(t, text, mdown.HeaderSplitter)
}

func TestHindawi_MissingBookEntry_HeaderLeftBlank(t *testing.T) {
	dir := t.TempDir()
	metaFp := filepath.Join(dir, "meta.yml")
	require.NoError(t, os.WriteFile(metaFp, []byte("\"999\":\n  Title: x\n"), 0o644))

	src := writeEpub(t, dir, "12345.epub", map[string]string{
		"OEBPS/ch1.xhtml": `<html><body><p>نص</p></body></html>`,
	})

	c, err := NewHindawi(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true}, metaFp)
	require.NoError(t, err)
	require.NoError(t, c.ConvertFile(context.Background(), src, ""),
		"missing metadata entry degrades, it does not fail the file")

	out, err := os.ReadFile(filepath.Join(dir, "out", "12345"+mdown.Extension))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), mdown.MagicValue))
	require.NotContains(t, string(out), "#META# Title")
}
