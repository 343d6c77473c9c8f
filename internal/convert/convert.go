// Package convert turns scraped book files into mARkdown documents.
//
// The conversion is a fixed pipeline of named stages run in order over a
// per-file Run state. Format-specific converters (HTML, EPUB, TEI, Shamela
// database dumps) override individual stage functions through a Hooks
// struct; everything left nil falls back to the generic behavior.
package convert

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageGetData        StageName = "extract"
	StageGetMetadata    StageName = "metadata"
	StagePreProcess     StageName = "preprocess"
	StageAddPageNumbers StageName = "pagenumbers"
	StageRemoveNotes    StageName = "notes"
	StageAnnotate       StageName = "structure"
	StageReflow         StageName = "reflow"
	StageAddMilestones  StageName = "milestones"
	StagePostProcess    StageName = "postprocess"
	StageCompose        StageName = "compose"
	StageSave           StageName = "save"
)

// Run carries the state of one file through the pipeline.
type Run struct {
	SourcePath string
	DestPath   string

	Metadata string // header incl. magic value and splitter
	Text     string
	Notes    string // collected endnotes, without the splitter

	Milestones int
	Durations  map[StageName]time.Duration
	Warnings   []string
}

// Warn records a non-fatal problem on the run.
func (r *Run) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// StageFn transforms the run state. Returned errors abort the file;
// degraded output is reported through r.Warn instead.
type StageFn func(ctx context.Context, c *Converter, r *Run) error

// StageDef pairs a stage with its name for logging and timing.
type StageDef struct {
	Name StageName
	Fn   StageFn
}

// Hooks overrides individual pipeline stages. Nil fields keep the
// generic behavior.
type Hooks struct {
	GetData        StageFn
	GetMetadata    StageFn
	PreProcess     StageFn
	AddPageNumbers StageFn
	RemoveNotes    StageFn
	Annotate       StageFn
	PostProcess    StageFn
}

// Options controls pipeline behavior shared by all formats.
type Options struct {
	// DestFolder receives converted files. Empty means a "converted"
	// folder next to the source file.
	DestFolder string

	// Overwrite replaces an existing destination file. When false an
	// existing file is left alone and the source is skipped.
	Overwrite bool

	// Extension is appended to converted files. Defaults to
	// mdown.Extension.
	Extension string

	// MaxLineLen is the reflow column. Defaults to
	// mdown.DefaultMaxLineLen.
	MaxLineLen int

	// MilestoneLength is the number of Arabic tokens per milestone.
	// Zero disables milestone insertion.
	MilestoneLength int

	// MilestoneLetter distinguishes the parts of books split over
	// several files.
	MilestoneLetter string
}

// Converter runs the conversion pipeline for one source format.
type Converter struct {
	opts   Options
	hooks  Hooks
	stages []StageDef
}

// New returns a Converter for plain text sources; format-specific
// constructors pass their own hooks.
func New(opts Options, hooks Hooks) *Converter {
	if opts.Extension == "" {
		opts.Extension = mdown.Extension
	}
	if opts.MaxLineLen <= 0 {
		opts.MaxLineLen = mdown.DefaultMaxLineLen
	}
	c := &Converter{opts: opts, hooks: hooks}
	c.stages = []StageDef{
		{StageGetData, pick(hooks.GetData, stageReadFile)},
		{StageGetMetadata, pick(hooks.GetMetadata, stageEmptyMetadata)},
		{StagePreProcess, pick(hooks.PreProcess, stagePreProcess)},
		{StageAddPageNumbers, pick(hooks.AddPageNumbers, stageNoop)},
		{StageRemoveNotes, pick(hooks.RemoveNotes, stageNoop)},
		{StageAnnotate, pick(hooks.Annotate, stageNoop)},
		{StageReflow, stageReflow},
		{StageAddMilestones, stageMilestones},
		{StagePostProcess, pick(hooks.PostProcess, stageMarkParagraphs)},
		{StageCompose, stageCompose},
		{StageSave, stageSave},
	}
	return c
}

// Options returns the options the converter was built with.
func (c *Converter) Options() Options { return c.opts }

func pick(hook, fallback StageFn) StageFn {
	if hook != nil {
		return hook
	}
	return fallback
}

// DestPath derives the destination file path for src. The source
// extension is replaced unless it is too long to be a real extension,
// in which case the new extension is appended.
func (c *Converter) DestPath(src string) string {
	dir, fn := filepath.Split(src)
	ext := filepath.Ext(fn)
	if len(ext) <= 10 {
		fn = strings.TrimSuffix(fn, ext)
	}
	destDir := c.opts.DestFolder
	if destDir == "" {
		destDir = filepath.Join(dir, "converted")
	}
	return filepath.Join(destDir, fn+c.opts.Extension)
}

// ConvertFile runs the full pipeline on one source file. An empty
// destPath derives the destination from the source path and options.
func (c *Converter) ConvertFile(ctx context.Context, src, destPath string) error {
	if destPath == "" {
		destPath = c.DestPath(src)
	}
	if !c.opts.Overwrite {
		if _, err := os.Stat(destPath); err == nil {
			slog.Info("Destination exists, skipping", "source", src, "dest", destPath)
			return nil
		}
	}

	r := &Run{
		SourcePath: src,
		DestPath:   destPath,
		Durations:  make(map[StageName]time.Duration),
	}
	slog.Info("Converting", "source", src, "dest", destPath)
	return c.runStages(ctx, r)
}

func (c *Converter) runStages(ctx context.Context, r *Run) error {
	for _, st := range c.stages {
		select {
		case <-ctx.Done():
			return cerrors.Wrap(ctx.Err(), cerrors.CategoryConvert, cerrors.SeverityFatal,
				"conversion canceled at stage "+string(st.Name))
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, c, r)
		dur := time.Since(t0)
		r.Durations[st.Name] = dur

		if err != nil {
			var ce *cerrors.CorpusError
			if !cerrors.As(err, &ce) {
				ce = cerrors.ConvertFailed(string(st.Name), r.SourcePath, err)
			}
			if ce.Severity == cerrors.SeverityWarning {
				slog.Warn("Stage degraded", "stage", st.Name, "source", r.SourcePath, "err", ce)
				r.Warn(ce.Error())
				continue
			}
			slog.Error("Stage failed", "stage", st.Name, "source", r.SourcePath, "err", ce)
			return ce
		}
		slog.Debug("Stage complete", "stage", st.Name, "duration", dur)
	}
	for _, w := range r.Warnings {
		slog.Warn("Conversion warning", "source", r.SourcePath, "warning", w)
	}
	return nil
}

// FolderOptions filters the files picked up by ConvertFolder.
type FolderOptions struct {
	// Extensions restricts conversion to files whose extension (with or
	// without a leading period) is listed. Empty means all files.
	Extensions []string

	// ExcludeExtensions skips files whose extension is listed.
	ExcludeExtensions []string

	// NameRegex, when non-empty, restricts conversion to file names
	// matching the pattern.
	NameRegex string
}

// Report summarizes a folder conversion batch.
type Report struct {
	RunID     string
	Converted []string
	Skipped   []string
	Failed    map[string]error
	Started   time.Time
	Duration  time.Duration
}

// ConvertFolder converts every matching file directly under srcDir,
// sequentially. A failing file is recorded in the report and does not
// stop the batch.
func (c *Converter) ConvertFolder(ctx context.Context, srcDir string, opts FolderOptions) (*Report, error) {
	files, err := filterFiles(srcDir, opts)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:   newRunID(),
		Failed:  make(map[string]error),
		Started: time.Now(),
	}
	slog.Info("Converting folder", "run_id", rep.RunID, "source", srcDir, "files", len(files))

	for _, fp := range files {
		if ctx.Err() != nil {
			rep.Duration = time.Since(rep.Started)
			return rep, cerrors.Wrap(ctx.Err(), cerrors.CategoryConvert, cerrors.SeverityFatal,
				"folder conversion canceled")
		}
		dest := c.DestPath(fp)
		if !c.opts.Overwrite {
			if _, err := os.Stat(dest); err == nil {
				slog.Info("Destination exists, skipping", "source", fp, "dest", dest)
				rep.Skipped = append(rep.Skipped, fp)
				continue
			}
		}
		if err := c.ConvertFile(ctx, fp, dest); err != nil {
			var ce *cerrors.CorpusError
			if cerrors.As(err, &ce) && ce.Severity == cerrors.SeverityFatal {
				rep.Failed[fp] = err
				rep.Duration = time.Since(rep.Started)
				return rep, err
			}
			slog.Error("File conversion failed", "run_id", rep.RunID, "source", fp, "err", err)
			rep.Failed[fp] = err
			continue
		}
		rep.Converted = append(rep.Converted, fp)
	}

	rep.Duration = time.Since(rep.Started)
	slog.Info("Folder conversion finished", "run_id", rep.RunID,
		"converted", len(rep.Converted), "skipped", len(rep.Skipped),
		"failed", len(rep.Failed), "duration", rep.Duration)
	return rep, nil
}

func filterFiles(srcDir string, opts FolderOptions) ([]string, error) {
	var nameRe *regexp.Regexp
	if opts.NameRegex != "" {
		var err error
		nameRe, err = regexp.Compile(opts.NameRegex)
		if err != nil {
			return nil, cerrors.ConfigInvalid("name regex", err.Error())
		}
	}
	incl := normalizeExts(opts.Extensions)
	excl := normalizeExts(opts.ExcludeExtensions)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, cerrors.ReadFailed(srcDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fn := e.Name()
		ext := filepath.Ext(fn)
		if nameRe != nil && !nameRe.MatchString(fn) {
			continue
		}
		if len(incl) > 0 && !incl[ext] {
			continue
		}
		if excl[ext] {
			continue
		}
		files = append(files, filepath.Join(srcDir, fn))
	}
	return files, nil
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m[ext] = true
	}
	return m
}
