package core

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
	"github.com/marcmoiagese/CercaGedcom/db"
)

const familyGedcom = `0 HEAD
1 SOUR CercaGedcom
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Pere /Puig/
1 SEX M
1 BIRT
2 DATE 3 MAR 1850
2 PLAC Girona
1 FAMS @F1@
0 @I2@ INDI
1 NAME Maria /Serra/
1 SEX F
1 FAMS @F1@
1 NOTE @N1@
0 @I3@ INDI
1 NAME Jordi /Puig/
1 FAMC @F1@
2 PEDI adopted
1 SOUR @S1@
2 PAGE f. 12
1 OBJE
2 FILE fotos/jordi.png
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 MARR
2 DATE 1875
2 PLAC Vic
0 @N1@ NOTE Pagesa de Vic
0 @S1@ SOUR
1 TITL Padró de 1880
1 AUTH Ajuntament
0 @I4@ INDI
1 FAMC @F9@
0 TRLR
`

func writeGedcom(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func newTestApp(t *testing.T, extra map[string]string) *App {
	t.Helper()
	cfg := map[string]string{
		"DB_ENGINE":   "sqlite",
		"DB_PATH":     filepath.Join(t.TempDir(), "test.db"),
		"GEDCOM_ROOT": filepath.Join(t.TempDir(), "gedcom"),
	}
	for k, v := range extra {
		cfg[k] = v
	}
	database, err := db.NewDB(cfg)
	require.NoError(t, err)
	app := NewApp(cfg, database)
	t.Cleanup(app.Close)
	return app
}

func TestImportGedcomFile(t *testing.T) {
	dir := t.TempDir()
	path := writeGedcom(t, dir, "familia.ged", familyGedcom)
	writePNG(t, filepath.Join(dir, "fotos", "jordi.png"), 4, 3)
	app := newTestApp(t, nil)

	imp, err := app.ImportGedcomFile(path)
	require.NoError(t, err)
	require.NotNil(t, imp)
	assert.Equal(t, db.ImportDone, imp.Status)
	assert.Equal(t, "UTF-8", imp.Charset.String)
	assert.Equal(t, 100, imp.ProgressDone)
	assert.Len(t, imp.Checksum, 64)

	var sum gedcomImportSummary
	require.NoError(t, json.Unmarshal([]byte(imp.SummaryJSON.String), &sum))
	assert.Equal(t, 4, sum.Persons)
	assert.Equal(t, 1, sum.Families)
	assert.Equal(t, 4, sum.Relations)
	assert.Equal(t, 1, sum.Sources)
	assert.Equal(t, 2, sum.Places)
	// FAMC @F9@ no existeix
	assert.Equal(t, 1, sum.WarningsTotal)
	require.Len(t, sum.Media, 1)
	assert.Equal(t, "png", sum.Media[0].Format)
	assert.Equal(t, 4, sum.Media[0].Width)

	persones, err := app.DB.ListPersonesByImport(imp.ID)
	require.NoError(t, err)
	require.Len(t, persones, 4)
	assert.Equal(t, "Pere Puig", persones[0].NomComplet.String)
	assert.Equal(t, "1850-03-03", persones[0].DataOrdre.String)
	assert.Equal(t, "Girona", persones[0].LlocNaixement.String)
	assert.Equal(t, "Pagesa de Vic", persones[1].Notes.String)

	rels, err := app.DB.ListRelacionsByImport(imp.ID)
	require.NoError(t, err)
	kinds := map[string]string{}
	for _, r := range rels {
		kinds[r.RelationType] = r.Pedigree.String
	}
	assert.Equal(t, map[string]string{"spouse": "", "father": "adopted", "mother": "adopted"}, kinds)

	// el mateix fitxer no es torna a importar
	again, err := app.ImportGedcomFile(path)
	require.NoError(t, err)
	assert.Equal(t, imp.ID, again.ID)
	all, err := app.DB.ListImports()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImportGedcomFileMissingHeader(t *testing.T) {
	path := writeGedcom(t, t.TempDir(), "dolent.ged", "0 @I1@ INDI\n1 NAME Pere /Puig/\n0 TRLR\n")
	app := newTestApp(t, nil)

	imp, err := app.ImportGedcomFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gedcom.ErrMissingHeader))
	require.NotNil(t, imp)

	got, err := app.DB.GetImport(imp.ID)
	require.NoError(t, err)
	assert.Equal(t, db.ImportError, got.Status)
	assert.True(t, got.ErrorText.Valid)
	n, err := app.DB.CountPersones(imp.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportGedcomFileTooLarge(t *testing.T) {
	big := "0 HEAD\n" + strings.Repeat("1 NOTE "+strings.Repeat("x", 100)+"\n", 11000)
	path := writeGedcom(t, t.TempDir(), "gran.ged", big)
	app := newTestApp(t, map[string]string{"GEDCOM_MAX_UPLOAD_MB": "1"})

	_, err := app.ImportGedcomFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	_, err = app.ImportGedcomFile(filepath.Join(t.TempDir(), "no-hi-és.ged"))
	assert.Error(t, err)
}

func TestImportUsesParserOptions(t *testing.T) {
	src := "0 HEAD\n0 @I1@ INDI\n1  NAME Pere /Puig/\n0 TRLR\n"
	path := writeGedcom(t, t.TempDir(), "espais.ged", src)

	app := newTestApp(t, map[string]string{"GEDCOM_ALLOW_MULTIPLE_DELIMITERS": "false"})
	imp, err := app.ImportGedcomFile(path)
	require.NoError(t, err)
	var sum gedcomImportSummary
	require.NoError(t, json.Unmarshal([]byte(imp.SummaryJSON.String), &sum))
	assert.Equal(t, 1, sum.ErrorsTotal)
	persones, err := app.DB.ListPersonesByImport(imp.ID)
	require.NoError(t, err)
	require.Len(t, persones, 1)
	assert.False(t, persones[0].NomComplet.Valid)
}

func TestAppendWarningCap(t *testing.T) {
	var w []string
	for i := 0; i < 30; i++ {
		w = appendWarning(w, "avís")
	}
	w = appendWarning(w, "")
	assert.Len(t, w, summaryMaxMessages)
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	a := writeGedcom(t, dir, "a.ged", "0 HEAD\n")
	b := writeGedcom(t, dir, "b.ged", "0 HEAD\n")
	c := writeGedcom(t, dir, "c.ged", "0 HEAD\n0 TRLR\n")
	sa, err := fileChecksum(a)
	require.NoError(t, err)
	sb, _ := fileChecksum(b)
	sc, _ := fileChecksum(c)
	assert.Equal(t, sa, sb)
	assert.NotEqual(t, sa, sc)
}
