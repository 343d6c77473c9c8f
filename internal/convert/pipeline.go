package convert

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nuskha/nuskha/internal/arabic"
	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
)

func newRunID() string {
	return uuid.NewString()
}

func stageReadFile(ctx context.Context, c *Converter, r *Run) error {
	data, err := os.ReadFile(r.SourcePath)
	if err != nil {
		return cerrors.ReadFailed(r.SourcePath, err)
	}
	r.Text = string(data)
	return nil
}

func stageEmptyMetadata(ctx context.Context, c *Converter, r *Run) error {
	r.Metadata = mdown.NewHeader("")
	return nil
}

// Persian and presentation forms folded into the Arabic letters used in
// the corpus. Digit folding lives in arabic.NormalizeDigits.
var persianFold = [][2]string{
	{"ک", "ك"},
	{"ی", "ي"},
	{"ے", "ي"},
	{"‌", ""}, // zero width non-joiner
	{"‍", ""}, // zero width joiner
	{"ۀ", "ة"},
	{"ۂ", "ة"},
}

// wa- and a- prefixes separated from their word by whitespace. \b does
// not know Arabic word characters, so the boundary is spelled out.
var prefixGapRe = regexp.MustCompile(`(^|[^\p{L}\p{N}_])([وأ])[\s~]+`)

// Clean applies the standard text cleaning every format gets: vowel and
// noise removal, composite folding, digit and Persian letter folding,
// and re-attachment of split conjunction prefixes.
func Clean(text string) string {
	text = arabic.Denoise(text)
	text = arabic.FoldComposites(text)
	text = arabic.NormalizeDigits(text)
	for _, p := range persianFold {
		text = strings.ReplaceAll(text, p[0], p[1])
	}
	return prefixGapRe.ReplaceAllString(text, "$1$2")
}

func stagePreProcess(ctx context.Context, c *Converter, r *Run) error {
	r.Text = Clean(r.Text)
	return nil
}

func stageNoop(ctx context.Context, c *Converter, r *Run) error {
	return nil
}

func stageReflow(ctx context.Context, c *Converter, r *Run) error {
	r.Text = mdown.Reflow(r.Text, c.opts.MaxLineLen)
	return nil
}

func stageMilestones(ctx context.Context, c *Converter, r *Run) error {
	if c.opts.MilestoneLength <= 0 {
		return nil
	}
	tagged, count, err := mdown.InsertMilestones(r.Text, mdown.MilestoneOptions{
		Length: c.opts.MilestoneLength,
		Letter: c.opts.MilestoneLetter,
	})
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryConvert, cerrors.SeverityWarning,
			"milestone insertion skipped")
	}
	r.Text = tagged
	r.Milestones = count
	return nil
}

func stageMarkParagraphs(ctx context.Context, c *Converter, r *Run) error {
	r.Text = mdown.MarkParagraphs(r.Text)
	return nil
}

func stageCompose(ctx context.Context, c *Converter, r *Run) error {
	r.Text = mdown.Compose(r.Metadata, r.Text, r.Notes)
	return nil
}

func stageSave(ctx context.Context, c *Converter, r *Run) error {
	if err := os.MkdirAll(filepath.Dir(r.DestPath), 0o755); err != nil {
		return cerrors.WriteFailed(r.DestPath, err)
	}
	if err := os.WriteFile(r.DestPath, []byte(r.Text), 0o644); err != nil {
		return cerrors.WriteFailed(r.DestPath, err)
	}
	return nil
}
