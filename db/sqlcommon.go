package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

func formatPlaceholders(style, query string) string {
	if strings.ToLower(style) != "postgres" {
		return query
	}
	var b strings.Builder
	idx := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteString(fmt.Sprintf("$%d", idx))
			idx++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// sqlHelper conté tot el SQL compartit pels tres motors. Cada motor
// l'incrusta després de connectar.
type sqlHelper struct {
	db     *sql.DB
	style  string
	nowFun string
}

func newSQLHelper(db *sql.DB, style, nowFun string) sqlHelper {
	return sqlHelper{db: db, style: strings.ToLower(style), nowFun: nowFun}
}

func (h sqlHelper) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// Exec retorna l'últim id inserit, o les files afectades a PostgreSQL.
func (h sqlHelper) Exec(query string, args ...interface{}) (int64, error) {
	res, err := h.db.Exec(formatPlaceholders(h.style, query), args...)
	if err != nil {
		return 0, err
	}
	if h.style == "postgres" {
		return res.RowsAffected()
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (h sqlHelper) Query(query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := h.db.Query(formatPlaceholders(h.style, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// insert executa un INSERT i retorna l'id nou. A PostgreSQL cal RETURNING.
func (h sqlHelper) insert(stmt string, args ...interface{}) (int, error) {
	if h.style == "postgres" {
		stmt += " RETURNING id"
	}
	stmt = formatPlaceholders(h.style, stmt)
	if h.style == "postgres" {
		var id int
		if err := h.db.QueryRow(stmt, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := h.db.Exec(stmt, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (h sqlHelper) CreateImport(i *GedcomImport) (int, error) {
	if i == nil {
		return 0, nil
	}
	status := strings.TrimSpace(i.Status)
	if status == "" {
		status = ImportQueued
	}
	i.Status = status
	stmt := `INSERT INTO gedcom_imports (path, checksum, status, charset, progress_total, progress_done, summary_json, error_text, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ` + h.nowFun + `, ` + h.nowFun + `)`
	id, err := h.insert(stmt, i.Path, i.Checksum, status, i.Charset, i.ProgressTotal, i.ProgressDone, i.SummaryJSON, i.ErrorText)
	if err != nil {
		return 0, errors.Wrap(err, "creant importació")
	}
	i.ID = id
	return id, nil
}

const importColumns = `id, path, checksum, status, charset, progress_total, progress_done, summary_json, error_text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanImport(row rowScanner) (*GedcomImport, error) {
	var i GedcomImport
	if err := row.Scan(&i.ID, &i.Path, &i.Checksum, &i.Status, &i.Charset, &i.ProgressTotal, &i.ProgressDone, &i.SummaryJSON, &i.ErrorText, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func (h sqlHelper) GetImport(id int) (*GedcomImport, error) {
	query := formatPlaceholders(h.style, `SELECT `+importColumns+` FROM gedcom_imports WHERE id = ?`)
	imp, err := scanImport(h.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return imp, err
}

// FindImportByChecksum retorna la darrera importació acabada amb aquest checksum, o nil.
func (h sqlHelper) FindImportByChecksum(checksum string) (*GedcomImport, error) {
	checksum = strings.TrimSpace(checksum)
	if checksum == "" {
		return nil, nil
	}
	query := `SELECT ` + importColumns + ` FROM gedcom_imports WHERE checksum = ? AND status = ? ORDER BY id DESC LIMIT 1`
	query = formatPlaceholders(h.style, query)
	imp, err := scanImport(h.db.QueryRow(query, checksum, ImportDone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return imp, err
}

func (h sqlHelper) listImports(where string, args []interface{}, limit int) ([]GedcomImport, error) {
	query := `SELECT ` + importColumns + ` FROM gedcom_imports` + where + ` ORDER BY created_at ASC, id ASC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := h.db.Query(formatPlaceholders(h.style, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []GedcomImport
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *imp)
	}
	return res, rows.Err()
}

func (h sqlHelper) ListImports() ([]GedcomImport, error) {
	return h.listImports("", nil, 0)
}

func (h sqlHelper) ListImportsByStatus(status string, limit int) ([]GedcomImport, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, nil
	}
	return h.listImports(" WHERE status = ?", []interface{}{status}, limit)
}

func (h sqlHelper) UpdateImportStatus(id int, status, errorText, summaryJSON string) error {
	stmt := `UPDATE gedcom_imports SET status = ?, error_text = ?, summary_json = COALESCE(?, summary_json), updated_at = ` + h.nowFun + ` WHERE id = ?`
	stmt = formatPlaceholders(h.style, stmt)
	_, err := h.db.Exec(stmt, status, nullString(errorText), nullString(summaryJSON), id)
	return err
}

func (h sqlHelper) UpdateImportProgress(id, done, total int) error {
	stmt := `UPDATE gedcom_imports SET progress_done = ?, progress_total = ?, updated_at = ` + h.nowFun + ` WHERE id = ?`
	stmt = formatPlaceholders(h.style, stmt)
	_, err := h.db.Exec(stmt, done, total, id)
	return err
}

func (h sqlHelper) UpdateImportCharset(id int, charset string) error {
	stmt := formatPlaceholders(h.style, `UPDATE gedcom_imports SET charset = ? WHERE id = ?`)
	_, err := h.db.Exec(stmt, nullString(charset), id)
	return err
}

func (h sqlHelper) InsertPersona(p *GedcomPersona) (int, error) {
	stmt := `INSERT INTO gedcom_persones (import_id, external_id, nom, cognom1, nom_complet, sexe, data_naixement, lloc_naixement, data_defuncio, lloc_defuncio, data_ordre, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := h.insert(stmt, p.ImportID, p.ExternalID, p.Nom, p.Cognom1, p.NomComplet, p.Sexe, p.DataNaixement, p.LlocNaixement, p.DataDefuncio, p.LlocDefuncio, p.DataOrdre, p.Notes)
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

func (h sqlHelper) InsertFamilia(f *GedcomFamilia) (int, error) {
	stmt := `INSERT INTO gedcom_families (import_id, external_id, marit_id, muller_id, data_matrimoni, lloc_matrimoni, num_fills)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := h.insert(stmt, f.ImportID, f.ExternalID, f.MaritID, f.MullerID, f.DataMatrimoni, f.LlocMatrimoni, f.NumFills)
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

func (h sqlHelper) InsertRelacio(r *GedcomRelacio) (int, error) {
	stmt := `INSERT INTO gedcom_relacions (import_id, persona_id, related_persona_id, relation_type, pedigree)
        VALUES (?, ?, ?, ?, ?)`
	id, err := h.insert(stmt, r.ImportID, r.PersonaID, r.RelatedPersonaID, r.RelationType, r.Pedigree)
	if err != nil {
		return 0, err
	}
	r.ID = id
	return id, nil
}

func (h sqlHelper) InsertFont(f *GedcomFont) (int, error) {
	stmt := `INSERT INTO gedcom_fonts (import_id, external_id, titol, autor, publicacio, abreviatura, num_cites)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := h.insert(stmt, f.ImportID, f.ExternalID, f.Titol, f.Autor, f.Publicacio, f.Abreviatura, f.NumCites)
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

func (h sqlHelper) ListPersonesByImport(importID int) ([]GedcomPersona, error) {
	query := `SELECT id, import_id, external_id, nom, cognom1, nom_complet, sexe, data_naixement, lloc_naixement, data_defuncio, lloc_defuncio, data_ordre, notes
        FROM gedcom_persones WHERE import_id = ? ORDER BY id ASC`
	rows, err := h.db.Query(formatPlaceholders(h.style, query), importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []GedcomPersona
	for rows.Next() {
		var p GedcomPersona
		if err := rows.Scan(&p.ID, &p.ImportID, &p.ExternalID, &p.Nom, &p.Cognom1, &p.NomComplet, &p.Sexe, &p.DataNaixement, &p.LlocNaixement, &p.DataDefuncio, &p.LlocDefuncio, &p.DataOrdre, &p.Notes); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (h sqlHelper) ListRelacionsByImport(importID int) ([]GedcomRelacio, error) {
	query := `SELECT id, import_id, persona_id, related_persona_id, relation_type, pedigree
        FROM gedcom_relacions WHERE import_id = ? ORDER BY id ASC`
	rows, err := h.db.Query(formatPlaceholders(h.style, query), importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []GedcomRelacio
	for rows.Next() {
		var r GedcomRelacio
		if err := rows.Scan(&r.ID, &r.ImportID, &r.PersonaID, &r.RelatedPersonaID, &r.RelationType, &r.Pedigree); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (h sqlHelper) CountPersones(importID int) (int, error) {
	query := formatPlaceholders(h.style, `SELECT COUNT(*) FROM gedcom_persones WHERE import_id = ?`)
	var total int
	if err := h.db.QueryRow(query, importID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteImportData esborra tot el que ha generat una importació, però no la importació.
func (h sqlHelper) DeleteImportData(importID int) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	for _, table := range []string{"gedcom_relacions", "gedcom_families", "gedcom_fonts", "gedcom_persones"} {
		stmt := formatPlaceholders(h.style, `DELETE FROM `+table+` WHERE import_id = ?`)
		if _, err := tx.Exec(stmt, importID); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "esborrant %s", table)
		}
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
