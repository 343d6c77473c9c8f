package convert

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"gopkg.in/yaml.v3"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/html2md"
	"github.com/nuskha/nuskha/internal/mdown"
)

// EpubOptions configures EPUB extraction.
type EpubOptions struct {
	// TOCName is the file name of the table of contents inside the
	// archive. Empty means autodetect (first member containing "toc.").
	TOCName string

	// HTML configures the markdown conversion of the archive members.
	HTML html2md.Options
}

// NewEpub returns a converter for EPUB archives. The text of the member
// HTML files is extracted in table-of-contents order (lexicographic when
// no usable TOC is found) and converted to markdown during extraction.
func NewEpub(opts Options, epub EpubOptions) (*Converter, error) {
	hconv, err := html2md.New(epub.HTML)
	if err != nil {
		return nil, err
	}
	hooks := Hooks{
		GetData:     epubGetData(epub.TOCName, hconv),
		RemoveNotes: stageExtractFootnotes,
	}
	return New(opts, hooks), nil
}

// NewHindawi returns a converter preconfigured for EPUBs from the
// Hindawi library: a fixed nav.xhtml table of contents and book metadata
// looked up by book ID in an external YAML file.
func NewHindawi(opts Options, metadataPath string) (*Converter, error) {
	hconv, err := html2md.New(html2md.Options{Autolinks: true})
	if err != nil {
		return nil, err
	}
	hooks := Hooks{
		GetData:     epubGetData("nav.xhtml", hconv),
		GetMetadata: hindawiMetadata(metadataPath),
		RemoveNotes: stageExtractFootnotes,
	}
	return New(opts, hooks), nil
}

var (
	brTagRe       = regexp.MustCompile(`<br ?/?>`)
	tripleBlankRe = regexp.MustCompile(`\n{3,}`)
)

func epubGetData(tocName string, hconv *html2md.Converter) StageFn {
	return func(ctx context.Context, c *Converter, r *Run) error {
		zr, err := zip.OpenReader(r.SourcePath)
		if err != nil {
			return cerrors.ReadFailed(r.SourcePath, err)
		}
		defer zr.Close()

		var tocFile *zip.File
		var htmlFiles []*zip.File
		for _, f := range zr.File {
			switch {
			case tocName != "" && strings.HasSuffix(f.Name, tocName):
				tocFile = f
			case tocName == "" && strings.Contains(path.Base(f.Name), "toc."):
				tocFile = f
			case strings.HasSuffix(f.Name, "html"):
				htmlFiles = append(htmlFiles, f)
			}
		}

		ordered := orderByTOC(tocFile, htmlFiles)

		var b strings.Builder
		for _, f := range ordered {
			data, err := readZipMember(f)
			if err != nil {
				return cerrors.ReadFailed(r.SourcePath+":"+f.Name, err)
			}
			text := brTagRe.ReplaceAllString(data, "\n")
			md, err := hconv.Convert(text)
			if err != nil {
				return cerrors.ParseFailed(r.SourcePath+":"+f.Name, err)
			}
			b.WriteString("\n\n\n\n")
			b.WriteString(md)
		}
		r.Text = tripleBlankRe.ReplaceAllString(b.String(), "\n\n")
		return nil
	}
}

// orderByTOC sorts the archive members in reading order. The ncx format
// lists content/@src, the nav format anchors inside the first ol. Files
// not named by the TOC are dropped, matching the reading order of the
// book; with no TOC at all the file names decide.
func orderByTOC(tocFile *zip.File, htmlFiles []*zip.File) []*zip.File {
	byName := make(map[string]*zip.File, len(htmlFiles))
	for _, f := range htmlFiles {
		byName[path.Base(f.Name)] = f
	}

	lexicographic := func() []*zip.File {
		sorted := append([]*zip.File(nil), htmlFiles...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		return sorted
	}

	if tocFile == nil {
		return lexicographic()
	}
	data, err := readZipMember(tocFile)
	if err != nil {
		return lexicographic()
	}
	doc, err := xmlquery.Parse(strings.NewReader(data))
	if err != nil {
		slog.Warn("Unparseable table of contents, using file name order", "toc", tocFile.Name)
		return lexicographic()
	}

	var refs []string
	if strings.HasSuffix(tocFile.Name, "ncx") {
		for _, n := range xmlquery.Find(doc, "//content") {
			refs = append(refs, n.SelectAttr("src"))
		}
	} else if ol := xmlquery.FindOne(doc, "//ol"); ol != nil {
		for _, n := range xmlquery.Find(ol, ".//a") {
			refs = append(refs, n.SelectAttr("href"))
		}
	}
	if len(refs) == 0 {
		return lexicographic()
	}

	var ordered []*zip.File
	for _, ref := range refs {
		ref, _, _ = strings.Cut(ref, "#")
		if f, ok := byName[path.Base(ref)]; ok {
			ordered = append(ordered, f)
		}
	}
	if len(ordered) == 0 {
		return lexicographic()
	}
	return ordered
}

func readZipMember(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// hindawiMetadata builds the header from an external metadata file that
// maps book IDs to key/value pairs. A missing book entry is a warning,
// not an error: the header is left empty for manual completion.
func hindawiMetadata(metadataPath string) StageFn {
	return func(ctx context.Context, c *Converter, r *Run) error {
		r.Metadata = mdown.NewHeader("")

		data, err := yamlFile(metadataPath)
		if err != nil {
			return cerrors.Wrap(err, cerrors.CategoryMetadata, cerrors.SeverityWarning,
				"metadata file unreadable: "+metadataPath)
		}
		bookID := strings.TrimSuffix(filepath.Base(r.SourcePath), filepath.Ext(r.SourcePath))
		entry, ok := data[bookID]
		if !ok {
			return cerrors.MetadataMissing(bookID)
		}

		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("#META# %s: %v", k, entry[k]))
		}
		r.Metadata = mdown.NewHeader(strings.Join(lines, "\n"))
		return nil
	}
}

func yamlFile(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
