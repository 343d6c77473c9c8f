package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nuskha/nuskha/internal/mdown"
)

func TestRender_HeadingDepthPreserved(t *testing.T) {
	out, err := Render("### | العنوان الاول\n\n### || عنوان فرعي\n")
	require.NoError(t, err)
	html := string(out)
	require.Contains(t, html, "<h1>العنوان الاول</h1>")
	require.Contains(t, html, "<h2>عنوان فرعي</h2>")
}

func TestRender_DropsMetadataHeader(t *testing.T) {
	doc := mdown.NewHeader("#META# title: test") + "# نص الكتاب\n"
	out, err := Render(doc)
	require.NoError(t, err)
	require.NotContains(t, string(out), "#META#")
	require.Contains(t, string(out), "نص الكتاب")
}

func TestRender_PageMarkerBecomesAnchor(t *testing.T) {
	out, err := Render("# نص PageV01P005 يتواصل\n")
	require.NoError(t, err)
	require.Contains(t, string(out), `<a class="page" n="01.005"></a>`)
	require.NotContains(t, string(out), "PageV01P005")
}

func TestRender_MilestonesStripped(t *testing.T) {
	out, err := Render("# نص ms0001 يتواصل\n")
	require.NoError(t, err)
	require.NotContains(t, string(out), "ms0001")
}

func TestRender_WrappedLinesUnwrapped(t *testing.T) {
	out, err := Render("# سطر طويل\n~~يكمل هنا\n")
	require.NoError(t, err)
	require.Contains(t, string(out), "سطر طويل يكمل هنا")
}

func TestRender_EditorialBlock(t *testing.T) {
	out, err := Render("### |EDITOR|\n# ملاحظة المحرر\n\n### | عنوان\n")
	require.NoError(t, err)
	require.Contains(t, string(out), `<div class="editorial">`)
	require.Contains(t, string(out), "ملاحظة المحرر")
}

func TestRender_PoetryHemistychs(t *testing.T) {
	out, err := Render("# الشطر الاول %~% الشطر الثاني\n")
	require.NoError(t, err)
	require.Contains(t, string(out), `<span class="hemistych1">الشطر الاول</span>`)
	require.Contains(t, string(out), `<span class="hemistych2">الشطر الثاني</span>`)
}

func TestRender_StandalonePage(t *testing.T) {
	out, err := Render("# نص\n")
	require.NoError(t, err)
	html := string(out)
	require.True(t, strings.HasPrefix(html, "<html>"))
	require.True(t, strings.HasSuffix(html, "</html>"))
}

func TestRenderWith_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path,
		[]byte("<html><body class=\"dark\">{{content}}</body></html>"), 0o644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)
	out, err := RenderWith("# نص\n", tpl)
	require.NoError(t, err)
	html := string(out)
	require.True(t, strings.HasPrefix(html, `<html><body class="dark">`))
	require.True(t, strings.HasSuffix(html, "</body></html>"))
	require.Contains(t, html, "نص")
}

func TestLoadTemplate_MissingPlaceholder_Error(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

	_, err := LoadTemplate(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "{{content}}")
}
