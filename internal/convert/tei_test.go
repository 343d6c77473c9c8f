package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuskha/nuskha/internal/mdown"
)

const teiSample = `<TEI>
<teiHeader>
<fileDesc>
<titleStmt>
<title>كتاب الحيوان</title>
<author>الجاحظ</author>
</titleStmt>
</fileDesc>
</teiHeader>
<text>
<body>
<div1 type="book" n="1">
<head>المقدمة</head>
<p>نص الفقرة الاولى</p>
<pb n="1"/>
<p>نص الصفحة الثانية</p>
</div1>
</body>
</text>
</TEI>`

func TestTEI_ConvertFile_FullDocument(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "edition.xml")
	require.NoError(t, os.WriteFile(src, []byte(teiSample), 0o644))

	c := NewTEI(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true})
	require.NoError(t, c.ConvertFile(context.Background(), src, ""))

	out, err := os.ReadFile(filepath.Join(dir, "out", "edition"+mdown.Extension))
	require.NoError(t, err)
	text := string(out)

	require.True(t, strings.HasPrefix(text, mdown.MagicValue))
	require.Contains(t, text, "#META# author: الجاحظ")
	require.Contains(t, text, "#META# title: كتاب الحيوان")
	require.Contains(t, text, "### |")
	require.Contains(t, text, "المقدمة")
	require.Contains(t, text, "نص الفقرة الاولى")
	require.Contains(t, text, "PageV00P001")
	require.NotContains(t, text, "<p>", "markup delimiters left in output")
	require.NotContains(t, text, "<pb")
}

func TestTEI_ConvertFile_NoHeader_MetadataLeftBlank(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bare.xml")
	require.NoError(t, os.WriteFile(src,
		[]byte(`<TEI><text><body><p>نص بلا ترويسة</p></body></text></TEI>`), 0o644))

	c := NewTEI(Options{DestFolder: filepath.Join(dir, "out"), Overwrite: true})
	require.NoError(t, c.ConvertFile(context.Background(), src, ""))

	out, err := os.ReadFile(filepath.Join(dir, "out", "bare"+mdown.Extension))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), mdown.MagicValue))
	require.Contains(t, string(out), "نص بلا ترويسة")
}
