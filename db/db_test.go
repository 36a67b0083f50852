package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) DB {
	t.Helper()
	d, err := NewDB(map[string]string{
		"DB_ENGINE": "sqlite",
		"DB_PATH":   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestFormatPlaceholders(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, q, formatPlaceholders("sqlite", q))
	assert.Equal(t, q, formatPlaceholders("mysql", q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", formatPlaceholders("postgres", q))
}

func TestNewDBUnknownEngine(t *testing.T) {
	_, err := NewDB(map[string]string{"DB_ENGINE": "oracle"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEngine))
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, d.Migrate())
	rows, err := d.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'gedcom_%'")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestImportLifecycle(t *testing.T) {
	d := newTestDB(t)

	imp := &GedcomImport{Path: "/tmp/a.ged", Checksum: "abc"}
	id, err := d.CreateImport(imp)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, ImportQueued, imp.Status)

	queued, err := d.ListImportsByStatus(ImportQueued, 10)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "/tmp/a.ged", queued[0].Path)

	// encara no està acabada
	found, err := d.FindImportByChecksum("abc")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, d.UpdateImportCharset(id, "ANSEL"))
	require.NoError(t, d.UpdateImportProgress(id, 3, 3))
	require.NoError(t, d.UpdateImportStatus(id, ImportDone, "", `{"persons":3}`))

	found, err = d.FindImportByChecksum("abc")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "ANSEL", found.Charset.String)
	assert.Equal(t, 3, found.ProgressDone)
	assert.Equal(t, `{"persons":3}`, found.SummaryJSON.String)
	assert.False(t, found.ErrorText.Valid)

	// un resum buit no esborra l'anterior
	require.NoError(t, d.UpdateImportStatus(id, ImportDone, "", ""))
	got, err := d.GetImport(id)
	require.NoError(t, err)
	assert.Equal(t, `{"persons":3}`, got.SummaryJSON.String)

	missing, err := d.GetImport(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := d.ListImports()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImportData(t *testing.T) {
	d := newTestDB(t)
	imp := &GedcomImport{Path: "x.ged", Checksum: "x"}
	_, err := d.CreateImport(imp)
	require.NoError(t, err)

	pare := &GedcomPersona{ImportID: imp.ID, ExternalID: "I1", NomComplet: sql.NullString{String: "Pere Puig", Valid: true}}
	fill := &GedcomPersona{ImportID: imp.ID, ExternalID: "I2"}
	_, err = d.InsertPersona(pare)
	require.NoError(t, err)
	_, err = d.InsertPersona(fill)
	require.NoError(t, err)

	_, err = d.InsertFamilia(&GedcomFamilia{ImportID: imp.ID, ExternalID: "F1", MaritID: sql.NullInt64{Int64: int64(pare.ID), Valid: true}, NumFills: 1})
	require.NoError(t, err)
	_, err = d.InsertRelacio(&GedcomRelacio{ImportID: imp.ID, PersonaID: fill.ID, RelatedPersonaID: pare.ID, RelationType: "father", Pedigree: sql.NullString{String: "adopted", Valid: true}})
	require.NoError(t, err)
	_, err = d.InsertFont(&GedcomFont{ImportID: imp.ID, ExternalID: "S1", NumCites: 2})
	require.NoError(t, err)

	n, err := d.CountPersones(imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	persones, err := d.ListPersonesByImport(imp.ID)
	require.NoError(t, err)
	require.Len(t, persones, 2)
	assert.Equal(t, "Pere Puig", persones[0].NomComplet.String)

	rels, err := d.ListRelacionsByImport(imp.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "adopted", rels[0].Pedigree.String)

	require.NoError(t, d.DeleteImportData(imp.ID))
	n, err = d.CountPersones(imp.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	rels, err = d.ListRelacionsByImport(imp.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestRecreateDropsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recrea.db")
	d, err := NewDB(map[string]string{"DB_ENGINE": "sqlite", "DB_PATH": path})
	require.NoError(t, err)
	_, err = d.CreateImport(&GedcomImport{Path: "a", Checksum: "a"})
	require.NoError(t, err)
	d.Close()

	d, err = NewDB(map[string]string{"DB_ENGINE": "sqlite", "DB_PATH": path, "RECREADB": "true"})
	require.NoError(t, err)
	defer d.Close()
	all, err := d.ListImports()
	require.NoError(t, err)
	assert.Empty(t, all)
}
