package convert

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nuskha/nuskha/internal/arabic"
	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
)

// NewShamela returns a converter for Shamela library database exports
// stored as SQLite files. A dump holds one book table (bNNNN: passage
// rows with page and volume numbers), one table of contents table
// (tNNNN: titles with their passage id and level), and a Main table with
// the book metadata.
func NewShamela(opts Options) *Converter {
	hooks := Hooks{
		GetData:     stageShamelaGetData,
		GetMetadata: stageNoop, // filled during extraction
		PreProcess:  stageNoop, // applied per passage
		PostProcess: stageShamelaPostProcess,
	}
	return New(opts, hooks)
}

type shamelaRow struct {
	id      int
	nass    string
	page    int
	part    int
	hasPage bool
}

type tocEntry struct {
	id    int
	title string
	level int
}

var (
	// Five or more underscores separate a passage from its footnotes.
	shamelaFootnoteRe = regexp.MustCompile(`(?s)[\r¶\n ]*¬?_{5,}[\r\n¶ ]*(.*)`)

	pilcrowBreakRe = regexp.MustCompile(` ?¶ ?`)
	lineEndRe      = regexp.MustCompile(` *LINE_END *`)
	metaLineEndRe  = regexp.MustCompile(`(?: *LINE_END *)+`)

	// the follower is matched instead of a lookahead and put back
	passageParaRe = regexp.MustCompile(`[\n\r¶]+ *(?:([^#|P])|$)`)

	wordRunRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

func stageShamelaGetData(ctx context.Context, c *Converter, r *Run) error {
	db, err := sql.Open("sqlite", r.SourcePath)
	if err != nil {
		return cerrors.ReadFailed(r.SourcePath, err)
	}
	defer db.Close()

	bookTable, tocTable, err := findShamelaTables(ctx, db)
	if err != nil {
		return cerrors.ParseFailed(r.SourcePath, err)
	}

	book, err := loadShamelaBook(ctx, db, bookTable)
	if err != nil {
		return cerrors.ParseFailed(r.SourcePath, err)
	}
	toc, err := loadShamelaTOC(ctx, db, tocTable)
	if err != nil {
		return cerrors.ParseFailed(r.SourcePath, err)
	}
	meta, err := loadShamelaMetadata(ctx, db)
	if err != nil {
		r.Warn("metadata table unreadable: " + err.Error())
	}

	r.Metadata = mdown.NewHeader(formatShamelaMetadata(meta))
	r.Text, r.Notes = formatShamelaText(book, toc)
	return nil
}

// findShamelaTables locates the book and toc tables by their bNNNN and
// tNNNN naming convention.
func findShamelaTables(ctx context.Context, db *sql.DB) (book, toc string, err error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return "", "", err
	}
	defer rows.Close()

	bookRe := regexp.MustCompile(`^b\d+$`)
	tocRe := regexp.MustCompile(`^t\d+$`)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", "", err
		}
		switch {
		case bookRe.MatchString(name):
			book = name
		case tocRe.MatchString(name):
			toc = name
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", err
	}
	if book == "" {
		return "", "", fmt.Errorf("no book table found")
	}
	return book, toc, nil
}

func loadShamelaBook(ctx context.Context, db *sql.DB, table string) ([]shamelaRow, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, nass, page, part FROM %q`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var book []shamelaRow
	for rows.Next() {
		var id, nass, page, part sql.NullString
		if err := rows.Scan(&id, &nass, &page, &part); err != nil {
			return nil, err
		}
		book = append(book, shamelaRow{
			id:      numeric(id.String),
			nass:    nass.String,
			page:    numeric(page.String),
			part:    numeric(part.String),
			hasPage: page.Valid,
		})
	}
	return book, rows.Err()
}

func loadShamelaTOC(ctx context.Context, db *sql.DB, table string) ([]tocEntry, error) {
	if table == "" {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, tit, lvl FROM %q`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var toc []tocEntry
	for rows.Next() {
		var id, tit, lvl sql.NullString
		if err := rows.Scan(&id, &tit, &lvl); err != nil {
			return nil, err
		}
		toc = append(toc, tocEntry{
			id:    numeric(id.String),
			title: tit.String,
			level: numeric(lvl.String),
		})
	}
	return toc, rows.Err()
}

// loadShamelaMetadata reads the first row of the Main table as key/value
// pairs, whatever its column set is.
func loadShamelaMetadata(ctx context.Context, db *sql.DB) ([][2]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT * FROM "Main"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		return nil, rows.Err()
	}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	meta := make([][2]string, 0, len(cols))
	for i, col := range cols {
		meta = append(meta, [2]string{col, vals[i].String})
	}
	return meta, nil
}

var (
	betakaLineRe = regexp.MustCompile(`[\n\r]+`)
	metaLineNLRe = regexp.MustCompile(`\.?[\r\n]+`)
)

// formatShamelaMetadata turns the Main table row into #META# lines. The
// betaka field holds a multi-line record of its own; each of its lines
// becomes a separate entry.
func formatShamelaMetadata(meta [][2]string) string {
	var m []string
	for _, kv := range meta {
		k, v := kv[0], kv[1]
		if v == "" {
			continue
		}
		if k == "betaka" {
			m = append(m, "#META# Shamela_short_metadata_record: ")
			for _, line := range betakaLineRe.Split(v, -1) {
				if key, val, ok := strings.Cut(line, ": "); ok {
					m = append(m, fmt.Sprintf("#META# %s: %s", key, val))
				} else if line != "" {
					m = append(m, "#META# digitization_comments: "+line)
				}
			}
			continue
		}
		v = metaLineNLRe.ReplaceAllString(v, ". ")
		m = append(m, fmt.Sprintf("#META# %s: %s", k, v))
	}
	out := strings.Join(m, "\n\n")
	return metaLineEndRe.ReplaceAllString(out, " ¶ ")
}

// formatShamelaText assembles the passages in reading order, moving
// footnotes to the endnotes and marking titles from the table of
// contents. Every passage is closed with its page marker.
func formatShamelaText(book []shamelaRow, toc []tocEntry) (text, notes string) {
	sort.SliceStable(book, func(i, j int) bool {
		if book[i].id != book[j].id {
			return book[i].id < book[j].id
		}
		if book[i].part != book[j].part {
			return book[i].part < book[j].part
		}
		return book[i].page < book[j].page
	})

	byID := make(map[int][]tocEntry)
	for _, e := range toc {
		byID[e.id] = append(byID[e.id], e)
	}

	var tb, nb strings.Builder
	for _, row := range book {
		passage := pilcrowBreakRe.ReplaceAllString(row.nass, "\n\n")
		passage = Clean(passage)

		if m := shamelaFootnoteRe.FindStringSubmatch(passage); m != nil {
			fmt.Fprintf(&nb, "\n\n%s\n%s", m[1], mdown.PageMarker(row.part, row.page))
			passage = shamelaFootnoteRe.ReplaceAllString(passage, "")
		}

		for _, e := range sortedByLevelDesc(byID[row.id]) {
			passage = annotateTitle(passage, e)
		}
		passage = passageParaRe.ReplaceAllString(passage, "\n\n# $1")

		tb.WriteString(passage)
		if row.hasPage {
			fmt.Fprintf(&tb, "\n\n%s\n\n", mdown.PageMarker(row.part, row.page))
		} else if row.nass != "" {
			tb.WriteString(row.nass + "\n\n\n----NO PAGE NO------\n\n\n\n")
		}
	}

	text = lineEndRe.ReplaceAllString(tb.String(), "\n# ")
	return text, nb.String()
}

func sortedByLevelDesc(entries []tocEntry) []tocEntry {
	out := append([]tocEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].level > out[j].level })
	return out
}

// annotateTitle marks the toc title inside the passage with an AUTO
// heading; a title that cannot be located is prepended as a CHECK
// heading for manual review.
func annotateTitle(passage string, e tocEntry) string {
	title := arabic.Denoise(e.title)
	if title == "" {
		title = "[NO TITLE]"
	}
	bar := strings.Repeat("|", e.level)

	re, ok := titleRegexp(title)
	if ok {
		if loc := re.FindStringSubmatchIndex(passage); loc != nil {
			heading := fmt.Sprintf("\n\n### %s AUTO %s\n\n", bar, passage[loc[2]:loc[3]])
			return passage[:loc[0]] + heading + passage[loc[1]:]
		}
	}
	return fmt.Sprintf("\n\n### %s CHECK [%s]\n\n", bar, title) + passage
}

// titleRegexp builds a pattern that matches the title's word runs in
// order while disregarding punctuation and spacing between them.
func titleRegexp(title string) (*regexp.Regexp, bool) {
	runs := wordRunRe.FindAllString(title, -1)
	if len(runs) == 0 {
		return nil, false
	}
	for i := range runs {
		runs[i] = regexp.QuoteMeta(runs[i])
	}
	pat := `[\n\r¶]*(.*` + strings.Join(runs, `[^\p{L}\p{N}_]*`) + `.*)`
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, false
	}
	return re, true
}

var (
	multiSpaceRe     = regexp.MustCompile(`  +`)
	spaceAfterNLRe   = regexp.MustCompile(`\n `)
	emptyParaMarkRe  = regexp.MustCompile(`\n# ?\n+`)
	pageToWrapRe     = regexp.MustCompile(` *\n+ *(PageV\d+P\d+)\n+`)
	pageAfterStopRe  = regexp.MustCompile(`([.:!؟|*"]|AUTO|CHECK) +(PageV\d+P\d+)\n~~`)
	pageBeforeHeadRe = regexp.MustCompile(`\s+(PageV\d+P\d+)\n~~\s*(#+)`)
	pageThenParaRe   = regexp.MustCompile(`(PageV\d+P\d+)(\n\n+)(?:([^#])|$)`)
	blankRunRe       = regexp.MustCompile(`\n{2,}`)
	danglingParaRe   = regexp.MustCompile(`[\r\n]+# *(?:[\r\n]+|\z)`)
	inlineHeadingRe  = regexp.MustCompile(` ### `)

	noteParaRe    = regexp.MustCompile(`(\n+)(?:([^\n~P])|$)`)
	noteLineEndRe = regexp.MustCompile(`(?:[\r\n]*# )? *LINE_END *`)
)

func stageShamelaPostProcess(ctx context.Context, c *Converter, r *Run) error {
	r.Text = shamelaPostProcess(r.Text)

	if r.Notes != "" {
		notes := mdown.Reflow(r.Notes, c.opts.MaxLineLen)
		notes = noteParaRe.ReplaceAllString(notes, "${1}# ${2}")
		notes = noteLineEndRe.ReplaceAllString(notes, "\n# ")
		r.Notes = notes
	}
	return nil
}

// shamelaPostProcess folds page markers into the line flow: a marker in
// mid-sentence continues the line with ~~, while a marker after a
// sentence end or before a heading keeps its own line.
func shamelaPostProcess(text string) string {
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = spaceAfterNLRe.ReplaceAllString(text, "\n")
	text = emptyParaMarkRe.ReplaceAllString(text, "\n")
	text = pageToWrapRe.ReplaceAllString(text, " $1\n~~")
	text = pageAfterStopRe.ReplaceAllString(text, "$1\n\n$2\n\n")
	text = pageBeforeHeadRe.ReplaceAllString(text, "\n\n$1\n\n$2")
	text = pageThenParaRe.ReplaceAllString(text, "$1$2# $3")
	text = blankRunRe.ReplaceAllString(text, "\n")
	text = danglingParaRe.ReplaceAllString(text, "\n")
	text = inlineHeadingRe.ReplaceAllString(text, "\n### ")
	return text
}

func numeric(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
