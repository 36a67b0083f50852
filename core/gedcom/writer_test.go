package gedcom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	long := strings.Repeat("paraula ", 60)
	src := gedLines(
		"0 HEAD",
		"1 SOUR CercaGedcom",
		"1 CHAR UTF-8",
		"0 @I1@ INDI",
		"1 NAME Pere /Puig/",
		"1 SEX M",
		"1 BIRT",
		"2 DATE ABT 1850",
		"2 PLAC Girona",
		"1 DEAT",
		"2 DATE @#DJULIAN@ BET 1700 AND 1710",
		"1 NOTE correu pere@@example.com",
		"2 CONT segona línia",
		"2 CONC "+long,
		"1 FAMS @F1@",
		"0 @I2@ INDI",
		"1 NAME Jordi /Puig/",
		"1 FAMC @F1@",
		"2 PEDI adopted",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 CHIL @I2@",
		"1 MARR",
		"2 DATE 12 MAY 1875",
		"0 @S1@ SOUR",
		"1 TITL Padró",
		"0 TRLR",
	)
	first := readString(t, src)
	require.True(t, first.OK)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteDatabase(first.Database))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "0 HEAD\r\n"))
	assert.True(t, strings.HasSuffix(out, "0 TRLR\r\n"))
	for _, l := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len([]rune(l)), 255)
	}

	second := readString(t, out)
	require.True(t, second.OK)
	assert.Empty(t, second.Warnings)

	a, b := first.Database.Individual("I1"), second.Database.Individual("I1")
	require.NotNil(t, b)
	assert.Equal(t, a.Names[0].Value, b.Names[0].Value)
	assert.Equal(t, a.Sex, b.Sex)
	assert.Equal(t, a.NoteTexts, b.NoteTexts)
	assert.Equal(t, "correu pere@example.com\nsegona línia"+long, b.NoteTexts[0])
	assert.Equal(t, "ABT 1850", b.Birth().DateText())
	assert.Equal(t, "Girona", b.Birth().Place.Name)
	assert.Equal(t, a.Death().DateText(), b.Death().DateText())
	assert.Equal(t, a.Death().Date.Date.DateTime1(), b.Death().Date.Date.DateTime1())

	fam := second.Database.Family("F1")
	require.NotNil(t, fam)
	assert.Equal(t, "I1", fam.Husband)
	assert.Equal(t, []string{"I2"}, fam.Children)
	assert.Equal(t, "12 MAY 1875", fam.Marriage().DateText())
	assert.Equal(t, PedigreeAdopted, second.Database.Individual("I2").ChildInFamily("F1").Pedigree)
	assert.Equal(t, "Padró", second.Database.Source("S1").Title)
}

func TestWriterKeepsPlaceSpelling(t *testing.T) {
	src := gedLines(
		"0 HEAD",
		"1 CHAR UTF-8",
		"0 @I1@ INDI",
		"1 BIRT",
		"2 PLAC Paris",
		"0 @I3@ INDI",
		"1 BIRT",
		"2 PLAC PARIS",
		"0 TRLR",
	)
	res := readString(t, src)
	require.True(t, res.OK)
	assert.Equal(t, "Paris", res.Database.Individual("I1").Birth().Place.Name)
	assert.Equal(t, "PARIS", res.Database.Individual("I3").Birth().Place.Name)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteDatabase(res.Database))
	assert.Contains(t, buf.String(), "2 PLAC Paris\r\n")
	assert.Contains(t, buf.String(), "2 PLAC PARIS\r\n")
}

func TestSplitValue(t *testing.T) {
	short := "curt"
	assert.Equal(t, []string{short}, splitValue(short))

	s := strings.Repeat("a", 300)
	parts := splitValue(s)
	require.Len(t, parts, 2)
	assert.Equal(t, s, strings.Join(parts, ""))
	assert.Len(t, parts[0], maxValueLength)

	// no es talla just al costat d'un espai
	s = strings.Repeat("a", maxValueLength-1) + " " + strings.Repeat("b", 20)
	parts = splitValue(s)
	assert.Equal(t, s, strings.Join(parts, ""))
	assert.False(t, strings.HasSuffix(parts[0], " "))
	assert.False(t, strings.HasPrefix(parts[1], " "))
}
