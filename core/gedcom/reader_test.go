package gedcom

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// gedLines ajunta les línies amb CRLF, com ho fan la majoria de programes.
func gedLines(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func readString(t *testing.T, s string) *Result {
	t.Helper()
	res, err := NewReader(DefaultParserOptions()).ReadString(s)
	require.NoError(t, err)
	return res
}

func TestReadMinimalIndividual(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"1 CHAR UTF-8",
		"0 @I1@ INDI",
		"1 NAME John /Doe/",
		"1 SEX M",
		"1 BIRT",
		"2 DATE 1 JAN 1950",
		"0 TRLR",
	))
	require.True(t, res.OK)
	assert.False(t, res.Restarted)
	assert.Empty(t, res.Warnings)

	inds := res.Database.Individuals()
	require.Len(t, inds, 1)
	ind := inds[0]
	assert.Equal(t, "I1", ind.XrefID)
	assert.Equal(t, SexMale, ind.Sex)
	require.Len(t, ind.Names, 1)
	assert.Equal(t, "John", ind.Names[0].Given)
	assert.Equal(t, "Doe", ind.Names[0].Surname)

	birth := ind.Birth()
	require.NotNil(t, birth)
	require.NotNil(t, birth.Date)
	assert.Equal(t, "1950-01-01", birth.Date.Date.ISO())
	assert.Equal(t, 3, birth.Date.Date.PartsParsed1())
	assert.Equal(t, "1 JAN 1950", birth.DateText())
}

func TestReadFamilyBackLinks(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Pere /Puig/",
		"1 SEX M",
		"0 @I2@ INDI",
		"1 NAME Maria /Vila/",
		"1 SEX F",
		"0 @I3@ INDI",
		"1 NAME Jordi /Puig/",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 WIFE @I2@",
		"1 CHIL @I3@",
		"0 TRLR",
	))
	db := res.Database
	assert.Empty(t, res.Warnings)
	assert.NotNil(t, db.Individual("I1").SpouseInFamily("F1"))
	assert.NotNil(t, db.Individual("I2").SpouseInFamily("F1"))
	assert.NotNil(t, db.Individual("I3").ChildInFamily("F1"))
	assert.Nil(t, db.Individual("I3").SpouseInFamily("F1"))
}

func TestReadIndividualFamilyRepair(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 SEX F",
		"1 FAMS @F1@",
		"0 @I2@ INDI",
		"1 FAMC @F1@",
		"0 @F1@ FAM",
		"0 TRLR",
	))
	fam := res.Database.Family("F1")
	require.NotNil(t, fam)
	assert.Equal(t, "I1", fam.Wife)
	assert.Empty(t, fam.Husband)
	assert.Equal(t, []string{"I2"}, fam.Children)
}

func TestReadEmptyNoteIsDropped(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Anna",
		"1 NOTE @N1@",
		"0 @N1@ NOTE",
		"1 CONT",
		"1 CONT   ",
		"0 @N2@ NOTE Text de la nota",
		"1 CONC  continuat",
		"0 TRLR",
	))
	db := res.Database
	assert.Nil(t, db.Note("N1"))
	require.NotNil(t, db.Note("N2"))
	assert.Equal(t, "Text de la nota continuat", db.Note("N2").Text)
	for _, w := range res.Warnings {
		assert.NotContains(t, w, "N1")
	}
	assert.Empty(t, db.Individual("I1").Notes)
}

func TestReadForwardSourceReference(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Anna",
		"1 BIRT",
		"2 SOUR @S1@",
		"3 PAGE foli 12",
		"3 DATA",
		"4 TEXT Baptizata fuit",
		"5 CONC  Anna",
		"0 @S1@ SOUR",
		"1 TITL Llibre de baptismes",
		"2 CONC  de Sant Feliu",
		"1 REPO @R1@",
		"2 CALN 42",
		"0 @R1@ REPO",
		"1 NAME Arxiu Diocesà",
		"0 TRLR",
	))
	assert.Empty(t, res.Warnings)
	db := res.Database

	src := db.Source("S1")
	require.NotNil(t, src)
	assert.Equal(t, "Llibre de baptismes de Sant Feliu", src.Title)
	require.Len(t, src.Citations, 1)
	assert.Equal(t, "foli 12", src.Citations[0].Page)
	assert.Equal(t, "Baptizata fuit Anna", src.Citations[0].Text)
	assert.Equal(t, "I1", src.Citations[0].OwnerXref)

	birth := db.Individual("I1").Birth()
	require.Len(t, birth.Citations, 1)
	assert.Same(t, src.Citations[0], birth.Citations[0])

	repo := db.Repository("R1")
	require.NotNil(t, repo)
	require.Len(t, repo.Citations, 1)
	assert.Equal(t, []string{"42"}, repo.Citations[0].CallNumbers)
}

func TestReadBrokenReferencesAreWarnings(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 FAMS @F9@",
		"1 SOUR @S9@",
		"0 TRLR",
	))
	assert.True(t, res.OK)
	joined := strings.Join(res.Warnings, "\n")
	assert.Contains(t, joined, "@F9@")
	assert.Contains(t, joined, "@S9@")
	require.NotNil(t, res.Database.Individual("I1"))
}

func TestReadPedigreePrecedence(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 SEX M",
		"1 FAMS @F1@",
		"0 @I2@ INDI",
		"1 SEX F",
		"1 FAMS @F1@",
		"0 @I3@ INDI",
		"1 FAMC @F1@",
		"2 PEDI birth",
		"1 ADOP",
		"2 FAMC @F1@",
		"3 ADOP HUSB",
		"0 @I4@ INDI",
		"1 BIRT",
		"2 FAMC @F1@",
		"0 @I5@ INDI",
		"1 FAMC @F1@",
		"2 PEDI foster",
		"0 @I6@ INDI",
		"1 FAMC @F1@",
		"2 PEDI birth",
		"1 ADOP",
		"2 FAMC @F1@",
		"3 ADOP Husband",
		"0 @I7@ INDI",
		"1 FAMC @F1@",
		"2 PEDI birth",
		"1 ADOP",
		"2 FAMC @F1@",
		"3 ADOP wife ",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 WIFE @I2@",
		"1 CHIL @I3@",
		"1 CHIL @I4@",
		"1 CHIL @I5@",
		"2 _FREL Natural",
		"1 CHIL @I6@",
		"1 CHIL @I7@",
		"0 TRLR",
	))
	db := res.Database

	l3 := db.Individual("I3").ChildInFamily("F1")
	require.NotNil(t, l3)
	assert.Equal(t, PedigreeAdopted, l3.FatherPedigree)
	assert.Equal(t, PedigreeBirth, l3.MotherPedigree)
	assert.Equal(t, PedigreeAdopted, l3.Pedigree)

	l4 := db.Individual("I4").ChildInFamily("F1")
	require.NotNil(t, l4)
	assert.Equal(t, PedigreeBirth, l4.Pedigree)
	assert.Equal(t, PedigreeBirth, l4.FatherPedigree)
	assert.Equal(t, PedigreeBirth, l4.MotherPedigree)

	l5 := db.Individual("I5").ChildInFamily("F1")
	require.NotNil(t, l5)
	assert.Equal(t, PedigreeBirth, l5.FatherPedigree)
	assert.Equal(t, PedigreeFoster, l5.MotherPedigree)

	l6 := db.Individual("I6").ChildInFamily("F1")
	require.NotNil(t, l6)
	assert.Equal(t, PedigreeAdopted, l6.FatherPedigree)
	assert.Equal(t, PedigreeBirth, l6.MotherPedigree)

	l7 := db.Individual("I7").ChildInFamily("F1")
	require.NotNil(t, l7)
	assert.Equal(t, PedigreeBirth, l7.FatherPedigree)
	assert.Equal(t, PedigreeAdopted, l7.MotherPedigree)
}

func TestReadTagAliasesAndCustomFacts(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Joan /Puig/",
		"1 _AKA Jack /Puig/",
		"1 _DEG Enginyer",
		"1 EMAL joan@@example.com",
		"1 _URL http://example.com",
		"1 _MILT",
		"2 DATE 1914",
		"2 PLAC Verdun",
		"1 _HEIG 180 cm",
		"1 _MDCL Diabetis",
		"1 _WEIG 75 kg",
		"0 TRLR",
	))
	ind := res.Database.Individual("I1")
	require.NotNil(t, ind)
	require.Len(t, ind.Names, 2)
	assert.Equal(t, "aka", ind.Names[1].Type)
	assert.Equal(t, "Jack", ind.Names[1].Given)

	grad := ind.FindEvents(EventGraduation)
	require.Len(t, grad, 1)
	assert.Equal(t, "Enginyer", grad[0].Value)

	milt := ind.FindEvents(EventGeneric)
	require.Len(t, milt, 1)
	assert.Equal(t, "Military Service", milt[0].Classification)
	require.NotNil(t, milt[0].Place)
	assert.Equal(t, "Verdun", milt[0].Place.Name)
	assert.Equal(t, "1914-01-01", milt[0].Date.Date.ISO())

	facts := ind.FindEvents(EventFact)
	require.Len(t, facts, 3)
	assert.Equal(t, "Height", facts[0].Classification)
	assert.Equal(t, "180 cm", facts[0].Value)
	assert.Equal(t, "Medical", facts[1].Classification)
	assert.Equal(t, "Diabetis", facts[1].Value)
	assert.Equal(t, "Weight", facts[2].Classification)
	assert.Equal(t, "75 kg", facts[2].Value)

	resi := ind.FindEvents(EventResidence)
	require.Len(t, resi, 1)
	assert.Equal(t, []string{"joan@example.com"}, resi[0].Address.Email)
	assert.Equal(t, []string{"http://example.com"}, resi[0].Address.WWW)
}

func TestReadIndividualAddressBecomesResidence(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Anna",
		"1 ADDR Carrer Major, 12",
		"2 CONT 17001",
		"2 CITY Girona",
		"2 CTRY Catalunya",
		"0 TRLR",
	))
	ind := res.Database.Individual("I1")
	assert.Nil(t, ind.Address)
	resi := ind.FindEvents(EventResidence)
	require.Len(t, resi, 1)
	assert.Equal(t, "Carrer Major, 12\n17001", resi[0].Address.AddressLine)
	assert.Equal(t, "Girona", resi[0].Address.City)
	assert.Equal(t, "I1", resi[0].OwnerXref)
}

func TestReadHeader(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"1 SOUR GENEAPP",
		"2 VERS 7.1",
		"2 NAME Genealogy App",
		"2 CORP Empresa SL",
		"3 ADDR Plaça 1",
		"3 PHON 555-1234",
		"1 DATE 3 MAR 2020",
		"2 TIME 10:11:12",
		"1 SUBM @U1@",
		"1 GEDC",
		"2 VERS 5.5.1",
		"2 FORM LINEAGE-LINKED",
		"1 CHAR UTF-8",
		"1 PLAC",
		"2 FORM Poble, Comarca, País",
		"0 @U1@ SUBM",
		"1 NAME Marc",
		"0 TRLR",
	))
	h := res.Database.Header
	require.NotNil(t, h)
	assert.Equal(t, "GENEAPP", h.ApprovedSystemID)
	assert.Equal(t, "7.1", h.ApplicationVersion)
	assert.Equal(t, "Genealogy App", h.ApplicationName)
	assert.Equal(t, "Empresa SL", h.Corporation)
	require.NotNil(t, h.CorporationAddress)
	assert.Equal(t, "Plaça 1", h.CorporationAddress.AddressLine)
	assert.Equal(t, []string{"555-1234"}, h.CorporationAddress.Phone)
	assert.Equal(t, "10:11:12", h.TransmissionDate.Date.Time)
	assert.Equal(t, "5.5.1", h.GedcomVersion)
	assert.Equal(t, "LINEAGE-LINKED", h.GedcomForm)
	assert.Equal(t, "UTF-8", h.CharacterSet)
	assert.Equal(t, "Poble, Comarca, País", h.PlaceForm)
	assert.Equal(t, "U1", h.SubmitterXref)
	assert.Empty(t, res.Warnings)
}

func TestReadCharsetRestart(t *testing.T) {
	raw := []byte(gedLines(
		"0 HEAD",
		"1 CHAR ANSI",
		"0 @I1@ INDI",
		"1 NAME Jos\xe9 /Garc\xeda/",
		"0 TRLR",
	))
	res, err := NewReader(DefaultParserOptions()).Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, res.Restarted)
	assert.Equal(t, "ANSI", res.Charset)
	assert.Equal(t, "José /García/", res.Database.Individual("I1").Names[0].Value)
}

func TestReadANSEL(t *testing.T) {
	raw := []byte(gedLines(
		"0 HEAD",
		"1 CHAR ANSEL",
		"0 @I1@ INDI",
		"1 NAME Jos\xe2e /Mu\xe4noz/",
		"0 TRLR",
	))
	res, err := NewReader(DefaultParserOptions()).Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, res.Restarted)
	assert.Equal(t, "ANSEL", res.Charset)
	assert.Equal(t, "José /Muñoz/", res.Database.Individual("I1").Names[0].Value)
}

func TestReadUTF16WithBOM(t *testing.T) {
	text := gedLines(
		"0 HEAD",
		"1 CHAR UNICODE",
		"0 @I1@ INDI",
		"1 NAME Núria /Solé/",
		"0 TRLR",
	)
	enc, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	require.NoError(t, err)

	res, err := NewReader(DefaultParserOptions()).ReadString(enc)
	require.NoError(t, err)
	assert.Equal(t, "UTF-16LE", res.Charset)
	assert.False(t, res.Restarted)
	assert.Equal(t, "Núria /Solé/", res.Database.Individual("I1").Names[0].Value)
}

func TestReadLineEndings(t *testing.T) {
	for name, sep := range map[string]string{"LF": "\n", "CR": "\r", "CRLF": "\r\n", "LFCR": "\n\r"} {
		t.Run(name, func(t *testing.T) {
			text := strings.Join([]string{"0 HEAD", "0 @I1@ INDI", "1 NAME Anna", "1 SEX F", "0 TRLR"}, sep) + sep
			res := readString(t, text)
			require.NotNil(t, res.Database.Individual("I1"))
			assert.Equal(t, SexFemale, res.Database.Individual("I1").Sex)
			assert.Empty(t, res.Errors)
		})
	}
}

func TestReadStructuralErrorsAreSkipped(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Anna",
		"aquesta línia no és GEDCOM",
		"1 SEX F",
		"0 TRLR",
	))
	assert.True(t, res.OK)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrCodeMissingLevel, res.Errors[0].Code)
	assert.Equal(t, 4, res.Errors[0].LineNumber)
	assert.Equal(t, SexFemale, res.Database.Individual("I1").Sex)
}

func TestReadBareContinuation(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NOTE primera",
		"2 CONC  part",
		"segona línia",
		"1 SEX M",
		"0 TRLR",
	))
	ind := res.Database.Individual("I1")
	assert.Equal(t, []string{"primera part\nsegona línia"}, ind.NoteTexts)
	assert.Equal(t, SexMale, ind.Sex)
}

func TestReadCustomTagsArePreserved(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @I1@ INDI",
		"1 _COLOR blau",
		"2 _TO fosc",
		"1 SEX M",
		"0 @X1@ _PLACE_DEF Girona",
		"1 _LATI 41.98",
		"0 TRLR",
	))
	ind := res.Database.Individual("I1")
	require.Len(t, ind.Custom, 1)
	assert.Equal(t, "_COLOR", ind.Custom[0].Tag)
	assert.Equal(t, "blau", ind.Custom[0].Value)
	require.Len(t, ind.Custom[0].Children, 1)
	assert.Equal(t, "fosc", ind.Custom[0].Children[0].Value)
	assert.Equal(t, SexMale, ind.Sex)

	rec, ok := res.Database.Get("X1")
	require.True(t, ok)
	c, ok := rec.(*CustomRecord)
	require.True(t, ok)
	assert.Equal(t, "_PLACE_DEF", c.Tag)
	require.Len(t, c.Children, 1)
}

func TestReadDropsRecordsWithoutXref(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 INDI",
		"1 NAME Ningú",
		"0 @I1@ INDI",
		"0 @I1@ INDI",
		"0 TRLR",
	))
	assert.Equal(t, 1, res.Database.Len())
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "duplicat")
}

func TestReadUntitledSources(t *testing.T) {
	res := readString(t, gedLines(
		"0 HEAD",
		"0 @S1@ SOUR",
		"1 AUTH Algú",
		"0 @S2@ SOUR",
		"1 TITL Amb títol",
		"0 @S3@ SOUR",
		"0 TRLR",
	))
	db := res.Database
	assert.Equal(t, "Source 1", db.Source("S1").Title)
	assert.Equal(t, "Amb títol", db.Source("S2").Title)
	assert.Equal(t, "Source 2", db.Source("S3").Title)
	assert.Equal(t, "Algú", db.Source("S1").Originator)
}

func TestReadMissingHeader(t *testing.T) {
	res := readString(t, gedLines("0 @I1@ INDI", "1 NAME Anna", "0 TRLR"))
	assert.False(t, res.OK)
	assert.True(t, errors.Is(res.Fatal, ErrMissingHeader))
	assert.NotNil(t, res.Database.Individual("I1"))
}

func TestReadLineTooLong(t *testing.T) {
	text := gedLines("0 HEAD", "0 @I1@ INDI", "1 NOTE "+strings.Repeat("x", maxLineLength+10), "0 TRLR")
	res := readString(t, text)
	assert.False(t, res.OK)
	assert.True(t, errors.Is(res.Fatal, ErrLineTooLong))
	assert.NotNil(t, res.Database.Individual("I1"))
}

func TestReadProgress(t *testing.T) {
	var lines []string
	lines = append(lines, "0 HEAD")
	for i := 0; i < 2000; i++ {
		lines = append(lines, fmt.Sprintf("0 @I%d@ INDI", i))
		lines = append(lines, "1 NOTE "+strings.Repeat("text ", 20))
	}
	lines = append(lines, "0 TRLR")

	var got []int
	r := NewReader(DefaultParserOptions())
	r.OnProgress = func(p int) { got = append(got, p) }
	_, err := r.ReadString(gedLines(lines...))
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}
}

func TestChangeNotificationAfterLoading(t *testing.T) {
	res := readString(t, gedLines("0 HEAD", "0 @I1@ INDI", "1 SEX M", "0 TRLR"))
	ind := res.Database.Individual("I1")
	assert.Nil(t, ind.ChangeDate)

	var changed []*RecordBase
	res.Database.OnChange = func(b *RecordBase) { changed = append(changed, b) }
	ind.SetSex(SexFemale)
	require.Len(t, changed, 1)
	assert.Same(t, &ind.RecordBase, changed[0])
	require.NotNil(t, ind.ChangeDate)
	assert.NotEmpty(t, ind.ChangeDate.Date.Date.Time)
}

func TestReadLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "large.ged")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("no puc crear fitxer GEDCOM: %v", err)
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	_, _ = fmt.Fprintln(writer, "0 HEAD")
	_, _ = fmt.Fprintln(writer, "1 SOUR CercaGedcom")
	_, _ = fmt.Fprintln(writer, "1 GEDC")

	const totalPersons = 5000
	const totalFamilies = 2500

	for i := 1; i <= totalPersons; i++ {
		_, _ = fmt.Fprintf(writer, "0 @I%d@ INDI\n1 NAME Persona%d /Cognom%d/\n1 SEX M\n1 BIRT\n2 DATE 1 JAN 1900\n", i, i, i)
	}

	for i := 1; i <= totalFamilies; i++ {
		husb := i*2 - 1
		wife := i * 2
		child := i*2 + 1
		if child > totalPersons {
			child = 1
		}
		_, _ = fmt.Fprintf(writer, "0 @F%d@ FAM\n1 HUSB @I%d@\n1 WIFE @I%d@\n1 CHIL @I%d@\n", i, husb, wife, child)
	}

	_, _ = fmt.Fprintln(writer, "0 TRLR")
	if err := writer.Flush(); err != nil {
		t.Fatalf("no puc escriure fitxer GEDCOM: %v", err)
	}

	res, err := NewReader(DefaultParserOptions()).ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile ha fallat: %v", err)
	}
	if !res.OK {
		t.Fatalf("lectura no vàlida: %v", res.Fatal)
	}
	if got := len(res.Database.Individuals()); got != totalPersons {
		t.Fatalf("esperava %d persones, he rebut %d", totalPersons, got)
	}
	if got := len(res.Database.Families()); got != totalFamilies {
		t.Fatalf("esperava %d families, he rebut %d", totalFamilies, got)
	}
	if got := res.Database.Individual("I1").ChildInFamily(fmt.Sprintf("F%d", totalFamilies)); got == nil {
		t.Fatalf("I1 hauria de ser fill de l'última família")
	}
}
