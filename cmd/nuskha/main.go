package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/nuskha/nuskha/internal/arabic"
	"github.com/nuskha/nuskha/internal/config"
	"github.com/nuskha/nuskha/internal/convert"
	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
	"github.com/nuskha/nuskha/internal/preview"
	"github.com/nuskha/nuskha/internal/uri"
	"github.com/nuskha/nuskha/internal/watcher"
	"github.com/nuskha/nuskha/internal/yml"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Convert struct {
		Src       string   `arg:"" help:"Source file or folder"`
		Dest      string   `short:"d" help:"Destination folder"`
		Format    string   `short:"f" enum:"auto,text,html,epub,tei,shamela" default:"auto" help:"Source format (auto detects by extension)"`
		Preset    string   `enum:",hindawi" default:"" help:"Publisher preset"`
		Metadata  string   `help:"External metadata file for publisher presets"`
		Overwrite bool     `help:"Replace existing destination files"`
		Ext       []string `help:"Only convert files with these extensions (folders only)"`
	} `cmd:"" help:"Convert source files to OpenITI mARkdown"`

	Normalize struct {
		File string `arg:"" optional:"" help:"Input file (stdin when omitted)"`
		Mode string `short:"m" enum:"light,heavy,denoise" default:"light" help:"Normalization mode"`
	} `cmd:"" help:"Normalize Arabic text"`

	Count struct {
		File             string `arg:"" help:"Input file"`
		Mode             string `short:"m" enum:"token,char" default:"token" help:"Count Arabic tokens or characters"`
		ExcludeEditorial bool   `help:"Leave out editorial sections"`
	} `cmd:"" help:"Count Arabic tokens or characters in a file"`

	Yml struct {
		Check struct {
			File string `arg:"" help:"YML file"`
		} `cmd:"" help:"Parse a YML file and report its completeness"`
		Fix struct {
			File string `arg:"" help:"YML file"`
		} `cmd:"" help:"Repair a broken YML file in place"`
		Show struct {
			File string `arg:"" help:"YML file"`
		} `cmd:"" help:"Print a YML file re-serialized"`
	} `cmd:"" help:"Work with OpenITI YML metadata files"`

	URI struct {
		Parse struct {
			URI string `arg:"" help:"Corpus URI"`
		} `cmd:"" help:"Split a corpus URI into its components"`
		Path struct {
			URI  string `arg:"" help:"Corpus URI"`
			Base string `short:"b" default:"." help:"Corpus root folder"`
			Type string `short:"t" enum:"date,author,author_yml,book,book_yml,version,version_yml,version_file" default:"version_file" help:"Path type to build"`
			Flat bool   `help:"Skip the 25-year folder layer"`
		} `cmd:"" help:"Build the corpus path for a URI"`
	} `cmd:"" help:"Work with OpenITI corpus URIs"`

	Milestones struct {
		Folder string `arg:"" help:"Folder of mARkdown files"`
		Length int    `default:"300" help:"Arabic tokens per milestone"`
		Letter string `help:"Tag letter for multi-part books"`
	} `cmd:"" help:"Insert milestone tags into converted files"`

	Preview struct {
		File   string `arg:"" help:"mARkdown file"`
		Output string `short:"o" help:"HTML output file (stdout when omitted)"`
	} `cmd:"" help:"Render a mARkdown file as HTML"`

	Watch struct {
		Src  string `arg:"" help:"Folder to watch"`
		Dest string `short:"d" help:"Destination folder"`
	} `cmd:"" help:"Watch a folder and convert files as they appear"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := run(kctx.Command()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(command string) error {
	switch command {
	case "convert <src>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		return runConvert(cfg)
	case "normalize", "normalize <file>":
		return runNormalize(CLI.Normalize.File, CLI.Normalize.Mode)
	case "count <file>":
		return runCount(CLI.Count.File, CLI.Count.Mode, CLI.Count.ExcludeEditorial)
	case "yml check <file>":
		return runYmlCheck(CLI.Yml.Check.File)
	case "yml fix <file>":
		return runYmlFix(CLI.Yml.Fix.File)
	case "yml show <file>":
		return runYmlShow(CLI.Yml.Show.File)
	case "uri parse <uri>":
		return runURIParse(CLI.URI.Parse.URI)
	case "uri path <uri>":
		return runURIPath(CLI.URI.Path.URI, CLI.URI.Path.Type, CLI.URI.Path.Base, CLI.URI.Path.Flat)
	case "milestones <folder>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		letter := CLI.Milestones.Letter
		if letter == "" {
			letter = cfg.Convert.MilestoneLetter
		}
		return runMilestones(CLI.Milestones.Folder, CLI.Milestones.Length, letter)
	case "preview <file>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		return runPreview(cfg, CLI.Preview.File, CLI.Preview.Output)
	case "watch <src>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		return runWatch(cfg, CLI.Watch.Src, CLI.Watch.Dest)
	case "init":
		return config.Init(CLI.Config, CLI.Init.Force)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func convertOptions(cfg *config.Config, dest string, overwrite bool) convert.Options {
	if dest == "" {
		dest = cfg.Convert.DestFolder
	}
	return convert.Options{
		DestFolder:      dest,
		Overwrite:       overwrite || cfg.Convert.Overwrite,
		MaxLineLen:      cfg.Convert.ReflowWidth,
		MilestoneLength: cfg.Convert.MilestoneLength,
		MilestoneLetter: cfg.Convert.MilestoneLetter,
	}
}

func newConverter(format convert.Format, preset string, opts convert.Options, metadataPath string) (*convert.Converter, error) {
	if preset == "hindawi" {
		return convert.NewHindawi(opts, metadataPath)
	}
	return convert.ForFormat(format, opts)
}

func runConvert(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src := CLI.Convert.Src
	opts := convertOptions(cfg, CLI.Convert.Dest, CLI.Convert.Overwrite)
	metadataPath := CLI.Convert.Metadata
	if metadataPath == "" {
		metadataPath = cfg.Convert.MetadataFile
	}

	info, err := os.Stat(src)
	if err != nil {
		return cerrors.ReadFailed(src, err)
	}

	if !info.IsDir() {
		format := convert.Format(CLI.Convert.Format)
		if format == convert.FormatAuto {
			format = convert.Detect(src)
		}
		conv, err := newConverter(format, CLI.Convert.Preset, opts, metadataPath)
		if err != nil {
			return err
		}
		return conv.ConvertFile(ctx, src, "")
	}

	// Folder batches use one converter, so auto-detection per file is
	// not available.
	if CLI.Convert.Format == string(convert.FormatAuto) && CLI.Convert.Preset == "" {
		return cerrors.ConfigInvalid("format", "folder conversion needs an explicit --format")
	}
	conv, err := newConverter(convert.Format(CLI.Convert.Format), CLI.Convert.Preset, opts, metadataPath)
	if err != nil {
		return err
	}
	exts := CLI.Convert.Ext
	if len(exts) == 0 {
		exts = cfg.Convert.Extensions
	}
	report, err := conv.ConvertFolder(ctx, src, convert.FolderOptions{Extensions: exts})
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(report.Failed),
			len(report.Converted)+len(report.Skipped)+len(report.Failed))
	}
	return nil
}

func runNormalize(file, mode string) error {
	var data []byte
	var err error
	if file == "" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return cerrors.ReadFailed("stdin", err)
		}
	} else {
		data, err = os.ReadFile(file)
		if err != nil {
			return cerrors.ReadFailed(file, err)
		}
	}

	text := string(data)
	switch mode {
	case "heavy":
		text = arabic.NormalizeHeavy(text)
	case "denoise":
		text = arabic.Denoise(text)
	default:
		text = arabic.NormalizeLight(text)
	}
	fmt.Print(text)
	return nil
}

func runCount(file, mode string, excludeEditorial bool) error {
	n, err := arabic.CountFile(file, arabic.CountOptions{
		Mode:             arabic.CountMode(mode),
		ExcludeEditorial: excludeEditorial,
	})
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func runYmlCheck(file string) error {
	rec, err := yml.ReadFile(file, yml.ParseOptions{})
	if err != nil {
		return err
	}
	fmt.Println(ymlCheckSummary(file, rec))
	return nil
}

func ymlCheckSummary(file string, rec yml.Record) string {
	return fmt.Sprintf("%s: %d fields, %.0f%% filled in",
		file, len(rec), 100*yml.CompletenessPct(rec))
}

func runYmlFix(file string) error {
	rec, err := yml.RepairFile(file)
	if err != nil {
		return err
	}
	slog.Info("yml file repaired", "file", file, "fields", len(rec))
	return nil
}

func runYmlShow(file string) error {
	rec, err := yml.ReadFile(file, yml.ParseOptions{Reflow: true})
	if err != nil {
		return err
	}
	fmt.Print(yml.Serialize(rec, yml.SerializeOptions{Reflow: true}))
	return nil
}

func runURIParse(s string) error {
	u, err := uri.Parse(s)
	if err != nil {
		return err
	}
	print := func(name, value string) {
		if value != "" {
			fmt.Printf("%-10s %s\n", name+":", value)
		}
	}
	print("date", u.Date)
	print("author", u.Author)
	print("title", u.Title)
	print("version", u.Version)
	print("language", u.Language)
	print("edition", u.EditionNo)
	print("extension", u.Extension)
	return nil
}

func runURIPath(s, pathType, base string, flat bool) error {
	u, err := uri.Parse(s)
	if err != nil {
		return err
	}
	p, err := u.Path(uri.Type(pathType), base, uri.PathOptions{Flat: flat})
	if err != nil {
		return err
	}
	fmt.Println(p)
	return nil
}

func runMilestones(folder string, length int, letter string) error {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return cerrors.ReadFailed(folder, err)
	}

	start := time.Now()
	tagged := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		if err := milestoneFile(path, length, letter); err != nil {
			slog.Error("milestone insertion failed", "file", path, "error", err)
			continue
		}
		tagged++
	}
	slog.Info("milestones inserted", "files", tagged, "duration", time.Since(start))
	return nil
}

func milestoneFile(path string, length int, letter string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cerrors.ReadFailed(path, err)
	}

	// Milestones go into the body only; an unheadered file is tagged
	// whole.
	headered := true
	header, body, err := mdown.SplitHeader(string(data))
	if err != nil {
		headered, body = false, string(data)
	}

	tagged, count, err := mdown.InsertMilestones(body, mdown.MilestoneOptions{
		Length: length,
		Letter: letter,
	})
	if err != nil {
		return err
	}
	out := tagged
	if headered {
		// SplitHeader swallows the newlines around the marker, so the
		// separators go back in here.
		out = strings.TrimRight(header, " \n\r\t") + "\n\n" +
			mdown.HeaderSplitter + "\n\n" + tagged
	}
	slog.Debug("milestones placed", "file", path, "count", count)
	return os.WriteFile(path, []byte(out), 0o644)
}

func runPreview(cfg *config.Config, file, output string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return cerrors.ReadFailed(file, err)
	}

	var html []byte
	if cfg.Preview.Template != "" {
		tpl, err := preview.LoadTemplate(cfg.Preview.Template)
		if err != nil {
			return err
		}
		html, err = preview.RenderWith(string(data), tpl)
		if err != nil {
			return err
		}
	} else {
		html, err = preview.Render(string(data))
		if err != nil {
			return err
		}
	}

	if output == "" && cfg.Preview.OutputDir != "" {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		output = filepath.Join(cfg.Preview.OutputDir, base+".html")
		if err := os.MkdirAll(cfg.Preview.OutputDir, 0o755); err != nil {
			return cerrors.WriteFailed(cfg.Preview.OutputDir, err)
		}
	}
	if output == "" {
		_, err = os.Stdout.Write(html)
		return err
	}
	if err := os.WriteFile(output, html, 0o644); err != nil {
		return cerrors.WriteFailed(output, err)
	}
	slog.Info("preview written", "file", output)
	return nil
}

func runWatch(cfg *config.Config, src, dest string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := convertOptions(cfg, dest, false)
	fn := func(ctx context.Context, path string) error {
		conv, err := convert.ForFormat(convert.Detect(path), opts)
		if err != nil {
			return err
		}
		return conv.ConvertFile(ctx, path, "")
	}
	return watcher.Watch(ctx, src, fn, watcher.Options{
		Debounce:   time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond,
		Extensions: cfg.Convert.Extensions,
	})
}
