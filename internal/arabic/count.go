package arabic

import (
	"os"
	"regexp"
	"strings"
)

// headerSplitter marks the end of the metadata header in corpus text files.
const headerSplitter = "#META#Header#End#"

// editorialRe matches editorial sections (### |EDITOR| ... up to the next
// section heading or end of text).
var editorialRe = regexp.MustCompile(`(?s)### \|EDITOR.+?(### |\z)`)

// CountMode selects what CountText and CountFile count.
type CountMode string

const (
	CountModeToken CountMode = "token"
	CountModeChar  CountMode = "char"
)

// CountOptions controls Arabic character/token counting.
//
// Editorial sections are included in the count by default; set
// ExcludeEditorial to leave out text between an editorial section heading
// and the next section.
type CountOptions struct {
	Mode             CountMode
	ExcludeEditorial bool
}

// CountText counts Arabic characters or tokens in a corpus text. If the
// text carries a metadata header, only the body after the header splitter
// is counted.
func CountText(text string, opts CountOptions) int {
	if i := strings.LastIndex(text, headerSplitter); i >= 0 {
		text = text[i+len(headerSplitter):]
	}
	if opts.ExcludeEditorial {
		text = editorialRe.ReplaceAllString(text, "$1")
	}
	if opts.Mode == CountModeChar {
		return CountChars(text)
	}
	return CountTokens(text)
}

// CountFile counts Arabic characters or tokens in the file at path.
func CountFile(path string, opts CountOptions) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return CountText(string(data), opts), nil
}
