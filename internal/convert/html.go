package convert

import (
	"context"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/html2md"
)

// NewHTML returns a converter for scraped single-file HTML books. The
// structure stage runs the HTML through the markdown converter; footnotes
// marked with FOOTNOTE lines are collected into endnotes.
func NewHTML(opts Options, htmlOpts html2md.Options) (*Converter, error) {
	hconv, err := html2md.New(htmlOpts)
	if err != nil {
		return nil, err
	}
	hooks := Hooks{
		RemoveNotes: stageExtractFootnotes,
		Annotate: func(ctx context.Context, c *Converter, r *Run) error {
			out, err := hconv.Convert(r.Text)
			if err != nil {
				return cerrors.ParseFailed(r.SourcePath, err)
			}
			r.Text = out
			return nil
		},
	}
	return New(opts, hooks), nil
}

func stageExtractFootnotes(ctx context.Context, c *Converter, r *Run) error {
	r.Text, r.Notes = ExtractFootnotes(r.Text)
	return nil
}
