package convert

import (
	"path/filepath"
	"strings"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/html2md"
)

// Format selects a source format converter.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatText    Format = "text"
	FormatHTML    Format = "html"
	FormatEpub    Format = "epub"
	FormatTEI     Format = "tei"
	FormatShamela Format = "shamela"
)

// Detect guesses the source format from the file extension. Unknown
// extensions fall back to plain text.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".epub":
		return FormatEpub
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".xml", ".tei":
		return FormatTEI
	case ".db", ".sqlite", ".sqlite3", ".bok":
		return FormatShamela
	default:
		return FormatText
	}
}

// ForFormat builds the converter for a resolved format. FormatAuto must
// be resolved through Detect first.
func ForFormat(f Format, opts Options) (*Converter, error) {
	switch f {
	case FormatText:
		return New(opts, Hooks{}), nil
	case FormatHTML:
		return NewHTML(opts, html2md.Options{Autolinks: true})
	case FormatEpub:
		return NewEpub(opts, EpubOptions{})
	case FormatTEI:
		return NewTEI(opts), nil
	case FormatShamela:
		return NewShamela(opts), nil
	default:
		return nil, cerrors.ConfigInvalid("format", "unknown format "+string(f))
	}
}
