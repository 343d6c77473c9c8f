package convert

import (
	"context"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
	"github.com/nuskha/nuskha/internal/tei2md"
)

// NewTEI returns a converter for TEI XML editions. The header is built
// from the teiHeader element, page beginnings become page-ending markers
// before conversion, and the document body is converted through the TEI
// handler table.
func NewTEI(opts Options) *Converter {
	tconv := tei2md.New()
	hooks := Hooks{
		GetMetadata: func(ctx context.Context, c *Converter, r *Run) error {
			r.Metadata = mdown.NewHeader("")
			meta, err := tei2md.Metadata(r.Text)
			if err != nil {
				return cerrors.Wrap(err, cerrors.CategoryMetadata, cerrors.SeverityWarning,
					"header extraction failed, leaving metadata blank")
			}
			r.Metadata = meta
			return nil
		},
		PreProcess: func(ctx context.Context, c *Converter, r *Run) error {
			r.Text = Clean(r.Text)
			r.Text = tei2md.PreprocessPageNumbers(r.Text)
			r.Text = tei2md.PreprocessWrappedLines(r.Text)
			return nil
		},
		Annotate: func(ctx context.Context, c *Converter, r *Run) error {
			out, err := tconv.Convert(r.Text)
			if err != nil {
				return cerrors.ParseFailed(r.SourcePath, err)
			}
			r.Text = out
			return nil
		},
		PostProcess: func(ctx context.Context, c *Converter, r *Run) error {
			r.Text = tei2md.PostProcess(r.Text)
			return nil
		},
	}
	return New(opts, hooks)
}
