package db

import "database/sql"

// Estats d'una importació.
const (
	ImportQueued      = "queued"
	ImportParsing     = "parsing"
	ImportNormalizing = "normalizing"
	ImportPersisted   = "persisted"
	ImportDone        = "done"
	ImportError       = "error"
)

// GedcomImport és una importació d'un fitxer GEDCOM. Checksum identifica el
// contingut del fitxer i evita importar dues vegades el mateix.
type GedcomImport struct {
	ID            int
	Path          string
	Checksum      string
	Status        string
	Charset       sql.NullString
	ProgressTotal int
	ProgressDone  int
	SummaryJSON   sql.NullString
	ErrorText     sql.NullString
	CreatedAt     sql.NullTime
	UpdatedAt     sql.NullTime
}

type GedcomPersona struct {
	ID            int
	ImportID      int
	ExternalID    string
	Nom           sql.NullString
	Cognom1       sql.NullString
	NomComplet    sql.NullString
	Sexe          sql.NullString
	DataNaixement sql.NullString
	LlocNaixement sql.NullString
	DataDefuncio  sql.NullString
	LlocDefuncio  sql.NullString
	// data de naixement normalitzada (2006-01-02) per ordenar
	DataOrdre sql.NullString
	Notes     sql.NullString
}

type GedcomFamilia struct {
	ID            int
	ImportID      int
	ExternalID    string
	MaritID       sql.NullInt64
	MullerID      sql.NullInt64
	DataMatrimoni sql.NullString
	LlocMatrimoni sql.NullString
	NumFills      int
}

// GedcomRelacio va de PersonaID cap a RelatedPersonaID: "spouse", "father" o "mother".
type GedcomRelacio struct {
	ID               int
	ImportID         int
	PersonaID        int
	RelatedPersonaID int
	RelationType     string
	Pedigree         sql.NullString
}

type GedcomFont struct {
	ID          int
	ImportID    int
	ExternalID  string
	Titol       sql.NullString
	Autor       sql.NullString
	Publicacio  sql.NullString
	Abreviatura sql.NullString
	NumCites    int
}
