package db

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Les taules fan servir marcadors que cada motor substitueix.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS gedcom_imports (
        id {{ID}},
        path TEXT NOT NULL,
        checksum {{KEY}} NOT NULL,
        status {{KEY}} NOT NULL,
        charset {{KEY}},
        progress_total INTEGER NOT NULL DEFAULT 0,
        progress_done INTEGER NOT NULL DEFAULT 0,
        summary_json TEXT,
        error_text TEXT,
        created_at {{TS}},
        updated_at {{TS}}
    )`,
	`CREATE TABLE IF NOT EXISTS gedcom_persones (
        id {{ID}},
        import_id INTEGER NOT NULL,
        external_id {{KEY}} NOT NULL,
        nom TEXT,
        cognom1 TEXT,
        nom_complet TEXT,
        sexe {{KEY}},
        data_naixement TEXT,
        lloc_naixement TEXT,
        data_defuncio TEXT,
        lloc_defuncio TEXT,
        data_ordre {{KEY}},
        notes TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS gedcom_families (
        id {{ID}},
        import_id INTEGER NOT NULL,
        external_id {{KEY}} NOT NULL,
        marit_id INTEGER,
        muller_id INTEGER,
        data_matrimoni TEXT,
        lloc_matrimoni TEXT,
        num_fills INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS gedcom_relacions (
        id {{ID}},
        import_id INTEGER NOT NULL,
        persona_id INTEGER NOT NULL,
        related_persona_id INTEGER NOT NULL,
        relation_type {{KEY}} NOT NULL,
        pedigree {{KEY}}
    )`,
	`CREATE TABLE IF NOT EXISTS gedcom_fonts (
        id {{ID}},
        import_id INTEGER NOT NULL,
        external_id {{KEY}} NOT NULL,
        titol TEXT,
        autor TEXT,
        publicacio TEXT,
        abreviatura TEXT,
        num_cites INTEGER NOT NULL DEFAULT 0
    )`,
}

var schemaIndexes = []struct{ name, table, columns string }{
	{"idx_gedcom_imports_checksum", "gedcom_imports", "checksum"},
	{"idx_gedcom_imports_status", "gedcom_imports", "status"},
	{"idx_gedcom_persones_import", "gedcom_persones", "import_id"},
	{"idx_gedcom_families_import", "gedcom_families", "import_id"},
	{"idx_gedcom_relacions_import", "gedcom_relacions", "import_id"},
	{"idx_gedcom_fonts_import", "gedcom_fonts", "import_id"},
}

var schemaTables = []string{"gedcom_relacions", "gedcom_families", "gedcom_fonts", "gedcom_persones", "gedcom_imports"}

func (h sqlHelper) schemaReplacer() *strings.Replacer {
	switch h.style {
	case "postgres":
		return strings.NewReplacer("{{ID}}", "SERIAL PRIMARY KEY", "{{KEY}}", "VARCHAR(255)", "{{TS}}", "TIMESTAMP")
	case "mysql":
		return strings.NewReplacer("{{ID}}", "INT AUTO_INCREMENT PRIMARY KEY", "{{KEY}}", "VARCHAR(255)", "{{TS}}", "DATETIME")
	default: // sqlite
		return strings.NewReplacer("{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{KEY}}", "TEXT", "{{TS}}", "TIMESTAMP")
	}
}

// Migrate crea les taules i els índexs que faltin.
func (h sqlHelper) Migrate() error {
	r := h.schemaReplacer()
	for _, stmt := range schemaStatements {
		if _, err := h.db.Exec(r.Replace(stmt)); err != nil {
			return errors.Wrap(err, "creant taules")
		}
	}
	for _, idx := range schemaIndexes {
		if h.indexExists(idx.table, idx.name) {
			continue
		}
		stmt := "CREATE INDEX " + idx.name + " ON " + idx.table + " (" + idx.columns + ")"
		if _, err := h.db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "creant índex %s", idx.name)
		}
	}
	logInfof("esquema %s al dia", h.style)
	return nil
}

func (h sqlHelper) DropTables() error {
	for _, table := range schemaTables {
		if _, err := h.db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			logErrorf("no s'ha pogut esborrar %s: %v", table, err)
			return errors.Wrapf(err, "esborrant %s", table)
		}
	}
	return nil
}

func (h sqlHelper) indexExists(table, name string) bool {
	var query string
	switch h.style {
	case "mysql":
		query = `SELECT 1 FROM INFORMATION_SCHEMA.STATISTICS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ? LIMIT 1`
	case "postgres":
		query = `SELECT 1 FROM pg_indexes WHERE tablename = $1 AND indexname = $2`
	default: // sqlite
		query = `SELECT 1 FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?`
	}
	var tmp int
	if err := h.db.QueryRow(query, table, name).Scan(&tmp); err != nil {
		return false
	}
	return true
}
