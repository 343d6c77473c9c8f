package uri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_FullURI_AllComponents(t *testing.T) {
	u, err := Parse("0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed")
	require.NoError(t, err)
	require.Equal(t, "0255", u.Date)
	require.Equal(t, "Jahiz", u.Author)
	require.Equal(t, "Hayawan", u.Title)
	require.Equal(t, "Sham19Y0023775", u.Version)
	require.Equal(t, "ara", u.Language)
	require.Equal(t, "1", u.EditionNo)
	require.Equal(t, "completed", u.Extension)
}

func TestParse_AuthorAndBookURIs(t *testing.T) {
	u, err := Parse("0255Jahiz")
	require.NoError(t, err)
	require.Equal(t, "0255Jahiz", u.String())

	u, err = Parse("0255Jahiz.Hayawan")
	require.NoError(t, err)
	require.Equal(t, "0255Jahiz.Hayawan", u.String())
}

func TestParse_YMLComponent_Skipped(t *testing.T) {
	u, err := Parse("0255Jahiz.yml")
	require.NoError(t, err)
	require.Empty(t, u.Title)

	u, err = Parse("0255Jahiz.Hayawan.yml")
	require.NoError(t, err)
	require.Equal(t, "Hayawan", u.Title)
	require.Empty(t, u.Version)
}

func TestParse_ShortDate_Error(t *testing.T) {
	_, err := Parse("255Jahiz")
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 digits")
}

func TestParse_NonASCIIAuthor_Error(t *testing.T) {
	_, err := Parse("0255Jāḥiẓ")
	require.Error(t, err)
}

func TestParse_MissingAuthor_Error(t *testing.T) {
	_, err := Parse("0255.Hayawan")
	require.Error(t, err)
	require.Contains(t, err.Error(), "author")
}

func TestParse_MissingLanguage_Error(t *testing.T) {
	_, err := Parse("0255Jahiz.Hayawan.Shamela00123545")
	require.Error(t, err)
	require.Contains(t, err.Error(), "language")
}

func TestParse_BadLanguageCode_Error(t *testing.T) {
	_, err := Parse("0255Jahiz.Hayawan.Shamela00123545-arab1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ISO 639-2")
}

func TestParse_UnknownExtension_Error(t *testing.T) {
	_, err := Parse("0255Jahiz.Hayawan.Shamela00123545-ara1.markdown")
	require.Error(t, err)
	require.Contains(t, err.Error(), "allowed extensions")
}

func TestParse_TooManyParts_Error(t *testing.T) {
	_, err := Parse("0255Jahiz.Hayawan.Shamela00123545-ara1.completed.extra")
	require.Error(t, err)
}

func TestBuild_AllTypes(t *testing.T) {
	u, err := Parse("0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed")
	require.NoError(t, err)

	cases := map[Type]string{
		TypeDate:        "0255",
		TypeAuthor:      "0255Jahiz",
		TypeAuthorYML:   "0255Jahiz.yml",
		TypeBook:        "0255Jahiz.Hayawan",
		TypeBookYML:     "0255Jahiz.Hayawan.yml",
		TypeVersion:     "0255Jahiz.Hayawan.Sham19Y0023775-ara1",
		TypeVersionYML:  "0255Jahiz.Hayawan.Sham19Y0023775-ara1.yml",
		TypeVersionFile: "0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed",
	}
	for typ, want := range cases {
		got, err := u.Build(typ)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestBuild_MissingComponent_Error(t *testing.T) {
	u := &URI{Date: "0255", Author: "Jahiz"}
	_, err := u.Build(TypeVersion)
	require.Error(t, err)
}

func TestString_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"0255Jahiz",
		"0255Jahiz.Hayawan",
		"0255Jahiz.Hayawan.Sham19Y0023775-ara1",
		"0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed",
	} {
		u, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, s, u.String())
	}
}

func TestDateFolder_RoundsUpTo25(t *testing.T) {
	u := &URI{Date: "0255"}
	folder, err := u.DateFolder()
	require.NoError(t, err)
	require.Equal(t, "0275AH", folder)

	u.Date = "0250"
	folder, err = u.DateFolder()
	require.NoError(t, err)
	require.Equal(t, "0250AH", folder)
}

func TestPath_AllTypes(t *testing.T) {
	u, err := Parse("0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed")
	require.NoError(t, err)

	cases := map[Type]string{
		TypeDate:        "/master/0275AH",
		TypeAuthor:      "/master/0275AH/data/0255Jahiz",
		TypeAuthorYML:   "/master/0275AH/data/0255Jahiz/0255Jahiz.yml",
		TypeBook:        "/master/0275AH/data/0255Jahiz/0255Jahiz.Hayawan",
		TypeBookYML:     "/master/0275AH/data/0255Jahiz/0255Jahiz.Hayawan/0255Jahiz.Hayawan.yml",
		TypeVersion:     "/master/0275AH/data/0255Jahiz/0255Jahiz.Hayawan",
		TypeVersionFile: "/master/0275AH/data/0255Jahiz/0255Jahiz.Hayawan/0255Jahiz.Hayawan.Sham19Y0023775-ara1.completed",
	}
	for typ, want := range cases {
		got, err := u.Path(typ, "/master", PathOptions{})
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPath_Flat_SkipsDateFolder(t *testing.T) {
	u, err := Parse("0255Jahiz.Hayawan")
	require.NoError(t, err)

	got, err := u.Path(TypeBook, ".", PathOptions{Flat: true})
	require.NoError(t, err)
	require.Equal(t, "0255Jahiz/0255Jahiz.Hayawan", got)
}

func TestMoreAdvanced_Ladder(t *testing.T) {
	require.True(t, MoreAdvanced("completed", "inProgress"))
	require.True(t, MoreAdvanced("mARkdown", "completed"))
	require.False(t, MoreAdvanced("inProgress", "completed"))
	require.False(t, MoreAdvanced("inProgress", "inProgress"))
	require.True(t, MoreAdvanced("completed", "pdf"))
	require.False(t, MoreAdvanced("pdf", "inProgress"))
}

func TestParse_PathInput(t *testing.T) {
	u, err := Parse("corpus/0275AH/data/0255Jahiz/0255Jahiz.Hayawan/0255Jahiz.Hayawan.Shamela0001-ara1.completed")
	require.NoError(t, err)
	require.Equal(t, "0255", u.Date)
	require.Equal(t, "Jahiz", u.Author)
	require.Equal(t, "Hayawan", u.Title)
	require.Equal(t, "Shamela0001", u.Version)
	require.Equal(t, "completed", u.Extension)
}

func TestParse_WindowsPathInput(t *testing.T) {
	u, err := Parse(`corpus\0255Jahiz\0255Jahiz.Hayawan.yml`)
	require.NoError(t, err)
	require.Equal(t, "Hayawan", u.Title)
}

func TestMostAdvanced_PicksLadderTop(t *testing.T) {
	files := []string{
		"0255Jahiz.Hayawan.Shamela0001-ara1.inProgress",
		"0255Jahiz.Hayawan.Shamela0001-ara1.mARkdown",
		"0255Jahiz.Hayawan.Shamela0001-ara1.completed",
	}
	require.Equal(t, files[1], MostAdvanced(files))
}

func TestMostAdvanced_LadderBeatsBareVersion(t *testing.T) {
	files := []string{
		"0255Jahiz.Hayawan.Shamela0001-ara1",
		"0255Jahiz.Hayawan.Shamela0001-ara1.inProgress",
	}
	require.Equal(t, files[1], MostAdvanced(files))
}

func TestMostAdvanced_SkipsNonVersionEntries(t *testing.T) {
	files := []string{
		"0255Jahiz.Hayawan.yml",
		"not a uri at all",
		"texts/0255Jahiz.Hayawan.Shamela0001-ara1.completed",
	}
	require.Equal(t, files[2], MostAdvanced(files))
}

func TestMostAdvanced_NothingQualifies_Empty(t *testing.T) {
	require.Equal(t, "", MostAdvanced([]string{"0255Jahiz.Hayawan.yml", "README.md"}))
}
