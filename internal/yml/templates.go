package yml

// Templates for fresh corpus metadata files. Values are placeholder text
// that editors replace; the completeness check treats a field that still
// holds its template value as unfilled.

const AuthorTemplate = `00#AUTH#URI######:
10#AUTH#ISM####AR: Fulān
10#AUTH#KUNYA##AR: Abū Fulān, Abū Fulānaŧ
10#AUTH#LAQAB##AR: Fulān al-dīn, Fulān al-dawlaŧ
10#AUTH#NASAB##AR: b. Fulān b. Fulān b. Fulān b. Fulān
10#AUTH#NISBA##AR: al-Fulānī, al-Fāʿil, al-Fulānī, al-Mufaʿʿil
10#AUTH#SHUHRA#AR: Ibn Fulān al-Fulānī
20#AUTH#BORN#####: URIs from Althurayya, comma separated
20#AUTH#DIED#####: URIs from Althurayya, comma separated
20#AUTH#RESIDED##: URIs from Althurayya, comma separated
20#AUTH#VISITED##: URIs from Althurayya, comma separated
30#AUTH#BORN###AH: YEAR-MON-DA (X+ for unknown)
30#AUTH#DIED###AH: YEAR-MON-DA (X+ for unknown)
40#AUTH#STUDENTS#: AUTH_URI from OpenITI, comma separated
40#AUTH#TEACHERS#: AUTH_URI from OpenITI, comma separated
80#AUTH#BIBLIO###: src@id, src@id, src@id, src@id, src@id
90#AUTH#COMMENT##: a free running comment here; you can add as many
    lines as you see fit; the main goal of this comment section is to have a
    place to record valuable information, which is difficult to formalize
    into the above given categories.`

const BookTemplate = `00#BOOK#URI######:
10#BOOK#GENRES###: src@keyword, src@keyword, src@keyword
10#BOOK#TITLEA#AR: Kitāb al-Muʾallif
10#BOOK#TITLEB#AR: Risālaŧ al-Muʾallif
20#BOOK#WROTE####: URIs from Althurayya, comma separated
30#BOOK#WROTE##AH: YEAR-MON-DA (X+ for unknown)
40#BOOK#RELATED##: URI of a book from OpenITI, or [Author's Title],
    followed by abbreviation for relation type between brackets (see
    book_relations repo). Only include relations with older books. Separate
    related books with semicolon.
80#BOOK#EDITIONS#: permalink, permalink, permalink
80#BOOK#LINKS####: permalink, permalink, permalink
80#BOOK#MSS######: permalink, permalink, permalink
80#BOOK#STUDIES##: permalink, permalink, permalink
80#BOOK#TRANSLAT#: permalink, permalink, permalink
90#BOOK#COMMENT##: a free running comment here; you can add as many
    lines as you see fit; the main goal of this comment section is to have a
    place to record valuable information, which is difficult to formalize
    into the above given categories.`

const VersionTemplate = `00#VERS#LENGTH###:
00#VERS#CLENGTH##:
00#VERS#URI######:
80#VERS#BASED####: permalink, permalink, permalink
80#VERS#COLLATED#: permalink, permalink, permalink
80#VERS#LINKS####: all@id, vol1@id, vol2@id, vol3@id, volX@id
90#VERS#ANNOTATOR: the name of the annotator (latin characters; please
    use consistently)
90#VERS#COMMENT##: a free running comment here; you can add as many
    lines as you see fit; the main goal of this comment section is to have a
    place to record valuable information, which is difficult to formalize
    into the above given categories.
90#VERS#DATE#####: YYYY-MM-DD
90#VERS#ISSUES###: formalized issues, separated with commas`

var allTemplates = []string{AuthorTemplate, BookTemplate, VersionTemplate}

// keys filled in automatically rather than by editors; the completeness
// check skips them
var autoFilledKeys = map[string]struct{}{
	"00#AUTH#URI######:": {},
	"00#BOOK#URI######:": {},
	"00#VERS#LENGTH###:": {},
	"00#VERS#CLENGTH##:": {},
	"00#VERS#URI######:": {},
}

// Completeness reports which fields of rec hold a non-default value.
// A value is default when it is empty or matches the corresponding
// template placeholder. Automatically filled keys (URIs, token counts)
// are not counted as relevant.
func Completeness(rec Record) (nonDefault, relevant []string) {
	// record both the reflowed and layout-preserving readings of each
	// template value, so rec may have been parsed either way
	defaults := make(map[string]map[string]struct{})
	for _, t := range allTemplates {
		for _, reflow := range []bool{false, true} {
			tr, err := Parse(t, ParseOptions{Reflow: reflow})
			if err != nil {
				continue
			}
			for _, f := range tr {
				if defaults[f.Key] == nil {
					defaults[f.Key] = map[string]struct{}{"": {}}
				}
				defaults[f.Key][f.Value] = struct{}{}
			}
		}
	}

	for _, f := range rec {
		if _, auto := autoFilledKeys[f.Key]; auto {
			continue
		}
		relevant = append(relevant, f.Key)
		vals, known := defaults[f.Key]
		if !known {
			nonDefault = append(nonDefault, f.Key)
			continue
		}
		if _, isDefault := vals[f.Value]; !isDefault {
			nonDefault = append(nonDefault, f.Key)
		}
	}
	return nonDefault, relevant
}

// CompletenessPct returns the proportion of relevant fields filled in,
// between 0 and 1. A record with no relevant fields counts as 0.
func CompletenessPct(rec Record) float64 {
	nonDefault, relevant := Completeness(rec)
	if len(relevant) == 0 {
		return 0
	}
	return float64(len(nonDefault)) / float64(len(relevant))
}
