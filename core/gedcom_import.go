package core

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
	"github.com/marcmoiagese/CercaGedcom/db"
)

const (
	summaryMaxMessages = 20
)

var ErrFileTooLarge = errors.New("fitxer GEDCOM massa gran")

type gedcomConfig struct {
	Root           string
	MaxUploadBytes int64
}

type gedcomImportSummary struct {
	Persons       int         `json:"persons"`
	Families      int         `json:"families"`
	Relations     int         `json:"relations"`
	Sources       int         `json:"sources"`
	Places        int         `json:"places"`
	Lines         int         `json:"lines"`
	Charset       string      `json:"charset,omitempty"`
	Restarted     bool        `json:"restarted,omitempty"`
	Media         []MediaInfo `json:"media,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`
	Errors        []string    `json:"errors,omitempty"`
	WarningsTotal int         `json:"warnings_total,omitempty"`
	ErrorsTotal   int         `json:"errors_total,omitempty"`
}

func (a *App) gedcomConfig() gedcomConfig {
	ac := a.settings()
	return gedcomConfig{Root: ac.GedcomRoot, MaxUploadBytes: int64(ac.GedcomMaxUploadMB) * 1024 * 1024}
}

// ImportGedcomFile importa el fitxer ara mateix. Si ja s'havia importat un
// fitxer idèntic retorna aquella importació sense tornar-lo a llegir.
func (a *App) ImportGedcomFile(path string) (*db.GedcomImport, error) {
	if err := a.checkGedcomSize(path); err != nil {
		return nil, err
	}
	sum, err := fileChecksum(path)
	if err != nil {
		return nil, err
	}
	prev, err := a.DB.FindImportByChecksum(sum)
	if err != nil {
		return nil, errors.Wrap(err, "cercant importacions anteriors")
	}
	if prev != nil {
		Infof("%s ja importat (importació %d)", path, prev.ID)
		return prev, nil
	}

	imp := &db.GedcomImport{Path: path, Checksum: sum, Status: db.ImportQueued}
	if _, err := a.DB.CreateImport(imp); err != nil {
		return nil, err
	}
	if err := a.processGedcomImport(imp); err != nil {
		_ = a.DB.UpdateImportStatus(imp.ID, db.ImportError, err.Error(), "")
		return imp, err
	}
	return a.DB.GetImport(imp.ID)
}

// QueueGedcomFile copia el fitxer a GEDCOM_ROOT i el deixa a la cua del worker.
func (a *App) QueueGedcomFile(path string) (*db.GedcomImport, error) {
	if err := a.checkGedcomSize(path); err != nil {
		return nil, err
	}
	sum, err := fileChecksum(path)
	if err != nil {
		return nil, err
	}
	if prev, err := a.DB.FindImportByChecksum(sum); err != nil {
		return nil, errors.Wrap(err, "cercant importacions anteriors")
	} else if prev != nil {
		Infof("%s ja importat (importació %d)", path, prev.ID)
		return prev, nil
	}
	cfg := a.gedcomConfig()
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creant %s", cfg.Root)
	}
	dst := filepath.Join(cfg.Root, sum+".ged")
	if err := copyFile(path, dst); err != nil {
		return nil, err
	}
	imp := &db.GedcomImport{Path: dst, Checksum: sum, Status: db.ImportQueued}
	if _, err := a.DB.CreateImport(imp); err != nil {
		return nil, err
	}
	Infof("importació %d a la cua: %s", imp.ID, path)
	return imp, nil
}

func (a *App) checkGedcomSize(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "no es pot llegir %s", path)
	}
	if st.IsDir() {
		return errors.Newf("%s és una carpeta", path)
	}
	if limit := a.gedcomConfig().MaxUploadBytes; st.Size() > limit {
		return errors.Wrapf(ErrFileTooLarge, "%s (%d bytes, màxim %d)", path, st.Size(), limit)
	}
	return nil
}

func (a *App) processGedcomImport(imp *db.GedcomImport) error {
	if imp == nil {
		return errors.New("falta la importació")
	}
	if _, err := os.Stat(imp.Path); err != nil {
		return errors.Wrapf(err, "falta el fitxer %s", imp.Path)
	}
	_ = a.DB.UpdateImportStatus(imp.ID, db.ImportParsing, "", "")

	reader := gedcom.NewReader(a.parserOptions())
	reader.OnProgress = func(percent int) {
		_ = a.DB.UpdateImportProgress(imp.ID, percent, 100)
	}
	res, err := reader.ReadFile(imp.Path)
	if err != nil {
		return err
	}
	if !res.OK {
		return errors.Wrap(res.Fatal, "fitxer GEDCOM invàlid")
	}
	_ = a.DB.UpdateImportCharset(imp.ID, res.Charset)
	_ = a.DB.UpdateImportStatus(imp.ID, db.ImportNormalizing, "", "")

	// una reimportació substitueix les dades anteriors
	if err := a.DB.DeleteImportData(imp.ID); err != nil {
		return err
	}

	gdb := res.Database
	summary := gedcomImportSummary{
		Lines:     res.Lines,
		Charset:   res.Charset,
		Restarted: res.Restarted,
		Places:    len(gdb.PlaceUsage()),
	}
	var warnings []string
	for _, w := range res.Warnings {
		warnings = appendWarning(warnings, w)
	}
	summary.WarningsTotal = len(res.Warnings)

	personIDs := map[string]int{}
	for _, ind := range gdb.Individuals() {
		row := NewPersona(ind).row(imp.ID)
		if _, err := a.DB.InsertPersona(row); err != nil {
			warnings = appendWarning(warnings, fmt.Sprintf("No s'ha pogut crear persona %s", ind.XrefID))
			summary.WarningsTotal++
			continue
		}
		personIDs[ind.XrefID] = row.ID
		summary.Persons++
	}
	_ = a.DB.UpdateImportStatus(imp.ID, db.ImportPersisted, "", "")

	for _, fam := range gdb.Families() {
		n, err := a.persistFamily(imp.ID, gdb, fam, personIDs)
		if err != nil {
			warnings = appendWarning(warnings, fmt.Sprintf("No s'ha pogut crear família %s", fam.XrefID))
			summary.WarningsTotal++
			continue
		}
		summary.Families++
		summary.Relations += n
	}

	for _, src := range gdb.Sources() {
		font := &db.GedcomFont{
			ImportID:    imp.ID,
			ExternalID:  src.XrefID,
			Titol:       sqlNullString(src.Title),
			Autor:       sqlNullString(src.Originator),
			Publicacio:  sqlNullString(src.PublicationFacts),
			Abreviatura: sqlNullString(src.FiledBy),
			NumCites:    len(src.Citations),
		}
		if _, err := a.DB.InsertFont(font); err != nil {
			warnings = appendWarning(warnings, fmt.Sprintf("No s'ha pogut crear font %s", src.XrefID))
			summary.WarningsTotal++
			continue
		}
		summary.Sources++
	}

	summary.Media = a.ProbeMultimedia(imp.Path, multimediaFiles(gdb))

	var errs []string
	for _, e := range res.Errors {
		errs = appendWarning(errs, e.Error())
	}
	summary.Warnings = warnings
	summary.Errors = errs
	summary.ErrorsTotal = len(res.Errors)

	summaryJSON := ""
	if b, err := json.Marshal(summary); err == nil {
		summaryJSON = string(b)
	}
	_ = a.DB.UpdateImportProgress(imp.ID, 100, 100)
	if err := a.DB.UpdateImportStatus(imp.ID, db.ImportDone, "", summaryJSON); err != nil {
		return err
	}
	Infof("importació %d: %d persones, %d famílies, %d relacions, %d avisos",
		imp.ID, summary.Persons, summary.Families, summary.Relations, summary.WarningsTotal)
	return nil
}

// persistFamily desa la família i les relacions de parella i de filiació.
// Retorna quantes relacions s'han creat.
func (a *App) persistFamily(importID int, gdb *gedcom.Database, fam *gedcom.FamilyRecord, personIDs map[string]int) (int, error) {
	husbID := personIDs[fam.Husband]
	wifeID := personIDs[fam.Wife]
	row := &db.GedcomFamilia{
		ImportID:   importID,
		ExternalID: fam.XrefID,
		MaritID:    sqlNullInt(husbID),
		MullerID:   sqlNullInt(wifeID),
		NumFills:   len(fam.Children),
	}
	if m := fam.Marriage(); m != nil {
		date, place := eventDatePlace(&m.EventRecord)
		row.DataMatrimoni = sqlNullString(date)
		row.LlocMatrimoni = sqlNullString(place)
	}
	if _, err := a.DB.InsertFamilia(row); err != nil {
		return 0, err
	}

	count := 0
	add := func(from, to int, kind string, pedigree gedcom.PedigreeLinkageType) {
		if from == 0 || to == 0 {
			return
		}
		rel := &db.GedcomRelacio{ImportID: importID, PersonaID: from, RelatedPersonaID: to, RelationType: kind}
		if pedigree != gedcom.PedigreeUnknown {
			rel.Pedigree = sqlNullString(pedigree.String())
		}
		if _, err := a.DB.InsertRelacio(rel); err != nil {
			Errorf("relació %s %d -> %d: %v", kind, from, to, err)
			return
		}
		count++
	}

	add(husbID, wifeID, "spouse", gedcom.PedigreeUnknown)
	add(wifeID, husbID, "spouse", gedcom.PedigreeUnknown)
	for _, child := range fam.Children {
		childID := personIDs[child]
		father, mother := childPedigrees(gdb.Individual(child), fam.XrefID)
		add(childID, husbID, "father", father)
		add(childID, wifeID, "mother", mother)
	}
	return count, nil
}

func childPedigrees(ind *gedcom.IndividualRecord, family string) (gedcom.PedigreeLinkageType, gedcom.PedigreeLinkageType) {
	if ind == nil {
		return gedcom.PedigreeUnknown, gedcom.PedigreeUnknown
	}
	link := ind.ChildInFamily(family)
	if link == nil {
		return gedcom.PedigreeUnknown, gedcom.PedigreeUnknown
	}
	father, mother := link.FatherPedigree, link.MotherPedigree
	if father == gedcom.PedigreeUnknown {
		father = link.Pedigree
	}
	if mother == gedcom.PedigreeUnknown {
		mother = link.Pedigree
	}
	return father, mother
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "obrint %s", path)
	}
	defer f.Close()
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "llegint %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "obrint %s", src)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creant %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "copiant a %s", dst)
	}
	return out.Close()
}

func sqlNullInt(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id > 0}
}

func appendWarning(warnings []string, msg string) []string {
	if msg == "" {
		return warnings
	}
	if len(warnings) >= summaryMaxMessages {
		return warnings
	}
	return append(warnings, msg)
}
