// Package uri parses, builds and validates corpus URIs.
//
// A full URI names one digital version of one book by one author:
//
//	0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed
//
// The first component is a four-digit death date (AH) glued to the author
// name, the second the book title, the third a version identifier with a
// language code and optional edition number, and the fourth an optional
// work-state extension. Shorter URIs name a book (two components) or an
// author (one component).
package uri

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	cerrors "github.com/nuskha/nuskha/internal/errors"
)

// Type selects which URI variant or path to build.
type Type string

const (
	TypeDate        Type = "date"
	TypeAuthor      Type = "author"
	TypeAuthorYML   Type = "author_yml"
	TypeBook        Type = "book"
	TypeBookYML     Type = "book_yml"
	TypeVersion     Type = "version"
	TypeVersionYML  Type = "version_yml"
	TypeVersionFile Type = "version_file"
)

// Extensions allowed as the final URI component, in ascending order of
// annotation progress for the first three.
var Extensions = []string{"inProgress", "completed", "mARkdown", "yml", "", "pdf", "zip", "rar"}

// annotation progress ladder; higher index means further along
var extensionRank = map[string]int{"inProgress": 0, "completed": 1, "mARkdown": 2}

// URI holds the components of a corpus URI. Empty components are simply
// absent from the built string.
type URI struct {
	Date      string // four digits, death date in AH
	Author    string // ASCII letters only
	Title     string // ASCII letters and digits
	Version   string // ASCII letters and digits
	Language  string // ISO 639-2 code, three letters
	EditionNo string // digits, may be empty
	Extension string
}

var (
	nonLetterRe       = regexp.MustCompile(`[^A-Za-z]`)
	nonAlphanumericRe = regexp.MustCompile(`[^A-Za-z0-9]`)
	leadingDigitsRe   = regexp.MustCompile(`^\d+`)
	digitsRe          = regexp.MustCompile(`\d+`)
)

func invalid(format string, args ...any) error {
	return cerrors.New(cerrors.CategoryValidation, cerrors.SeverityError,
		fmt.Sprintf(format, args...))
}

// Parse splits a corpus URI string into its components, validating each.
// Path inputs are accepted; only the final path component is read.
func Parse(s string) (*URI, error) {
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return nil, invalid("uri %q has too many parts separated by dots", s)
	}

	u := &URI{}
	dateAuthor := parts[0]
	u.Date = leadingDigitsRe.FindString(dateAuthor)
	if len(u.Date) != 4 {
		return nil, invalid("uri must start with a date of 4 digits (%q has %d)",
			u.Date, len(u.Date))
	}
	u.Author = dateAuthor[4:]
	if u.Author == "" {
		return nil, invalid("no author name found in %q", s)
	}
	if culprits := nonLetterRe.FindAllString(u.Author, -1); culprits != nil {
		return nil, invalid("author name %q may only contain ASCII letters (culprits: %v)",
			u.Author, culprits)
	}

	if len(parts) > 1 && parts[1] != "yml" {
		if culprits := nonAlphanumericRe.FindAllString(parts[1], -1); culprits != nil {
			return nil, invalid("book title %q may only contain ASCII letters and digits (culprits: %v)",
				parts[1], culprits)
		}
		u.Title = parts[1]
	}

	if len(parts) > 2 && parts[2] != "yml" {
		version, lang, found := strings.Cut(parts[2], "-")
		if !found {
			return nil, invalid("version component %q misses a language code", parts[2])
		}
		if culprits := nonAlphanumericRe.FindAllString(version, -1); culprits != nil {
			return nil, invalid("version id %q may only contain ASCII letters and digits (culprits: %v)",
				version, culprits)
		}
		u.Version = version
		u.EditionNo = digitsRe.FindString(lang)
		u.Language = digitsRe.ReplaceAllString(lang, "")
		if !isISO6392(u.Language) {
			return nil, invalid("language code %q is not an ISO 639-2 code", u.Language)
		}
	}

	if len(parts) > 3 {
		if !validExtension(parts[3]) {
			return nil, invalid("extension %q is not among the allowed extensions %v",
				parts[3], Extensions)
		}
		u.Extension = parts[3]
	}
	return u, nil
}

func validExtension(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// String builds the longest URI the available components allow.
func (u *URI) String() string {
	switch {
	case u.Version != "" && u.Language != "":
		if u.Extension != "" {
			s, _ := u.Build(TypeVersionFile)
			return s
		}
		s, _ := u.Build(TypeVersion)
		return s
	case u.Title != "":
		s, _ := u.Build(TypeBook)
		return s
	case u.Author != "":
		s, _ := u.Build(TypeAuthor)
		return s
	default:
		return u.Date
	}
}

// Build assembles the URI variant named by t. It fails when a component
// the variant needs is missing.
func (u *URI) Build(t Type) (string, error) {
	var s string
	switch t {
	case TypeDate:
		if u.Date == "" {
			return "", invalid("the date component of the uri is not set")
		}
		s = u.Date
	case TypeAuthor, TypeAuthorYML:
		if u.Author == "" {
			return "", invalid("the author component of the uri is not set")
		}
		s = u.Date + u.Author
	case TypeBook, TypeBookYML:
		if u.Title == "" {
			return "", invalid("the title component of the uri is not set")
		}
		author, err := u.Build(TypeAuthor)
		if err != nil {
			return "", err
		}
		s = author + "." + u.Title
	case TypeVersion, TypeVersionYML, TypeVersionFile:
		if u.Version == "" || u.Language == "" {
			return "", invalid("the version and language components of the uri are not set")
		}
		book, err := u.Build(TypeBook)
		if err != nil {
			return "", err
		}
		s = fmt.Sprintf("%s.%s-%s%s", book, u.Version, u.Language, u.EditionNo)
		if t == TypeVersionFile && u.Extension != "" {
			s += "." + u.Extension
		}
	default:
		return "", invalid("unknown uri type %q", t)
	}
	if t == TypeAuthorYML || t == TypeBookYML || t == TypeVersionYML {
		s += ".yml"
	}
	return s, nil
}

// PathOptions controls how Path lays out the corpus tree.
type PathOptions struct {
	// Flat disables the 25-year folder layer, placing author folders
	// directly under the base path.
	Flat bool
}

// DateFolder returns the name of the 25-year folder the URI's date falls
// into, e.g. "0275AH" for the date 0255.
func (u *URI) DateFolder() (string, error) {
	if u.Date == "" {
		return "", invalid("the date component of the uri is not set")
	}
	d, err := strconv.Atoi(u.Date)
	if err != nil {
		return "", invalid("the date component %q is not numeric", u.Date)
	}
	if d%25 != 0 {
		d = (d/25 + 1) * 25
	}
	return fmt.Sprintf("%04dAH", d), nil
}

// Path builds the corpus path for the URI variant named by t, rooted at
// base. Paths always use forward slashes. The layout groups authors in
// 25-year folders by death date, with a "data" layer in between:
//
//	<base>/0275AH/data/0255Jahiz/0255Jahiz.Hayawan/<version file>
func (u *URI) Path(t Type, base string, opts PathOptions) (string, error) {
	var dir string
	switch t {
	case TypeDate:
		folder, err := u.DateFolder()
		if err != nil {
			return "", err
		}
		return path.Join(base, folder), nil
	case TypeAuthor, TypeAuthorYML:
		author, err := u.Build(TypeAuthor)
		if err != nil {
			return "", err
		}
		if opts.Flat {
			dir = path.Join(base, author)
		} else {
			dateDir, err := u.Path(TypeDate, base, opts)
			if err != nil {
				return "", err
			}
			dir = path.Join(dateDir, "data", author)
		}
	case TypeBook, TypeBookYML, TypeVersion, TypeVersionYML, TypeVersionFile:
		authorDir, err := u.Path(TypeAuthor, base, opts)
		if err != nil {
			return "", err
		}
		book, err := u.Build(TypeBook)
		if err != nil {
			return "", err
		}
		dir = path.Join(authorDir, book)
	default:
		return "", invalid("unknown uri type %q", t)
	}

	switch t {
	case TypeAuthorYML, TypeBookYML, TypeVersionYML, TypeVersionFile:
		file, err := u.Build(t)
		if err != nil {
			return "", err
		}
		return dir + "/" + file, nil
	}
	return dir, nil
}

// MostAdvanced returns the sibling version file whose extension is
// furthest along the inProgress < completed < mARkdown ladder. Entries
// may be bare names or paths; entries that do not parse as version URIs
// are skipped. Returns "" when nothing qualifies.
func MostAdvanced(files []string) string {
	best := ""
	bestExt := ""
	for _, f := range files {
		u, err := Parse(f)
		if err != nil || u.Version == "" {
			continue
		}
		if best == "" || MoreAdvanced(u.Extension, bestExt) {
			best, bestExt = f, u.Extension
		}
	}
	return best
}

// MoreAdvanced reports whether extension a marks a later annotation stage
// than b on the inProgress < completed < mARkdown ladder. Extensions off
// the ladder never rank above anything.
func MoreAdvanced(a, b string) bool {
	ra, ok := extensionRank[a]
	if !ok {
		return false
	}
	rb, ok := extensionRank[b]
	if !ok {
		return true
	}
	return ra > rb
}
