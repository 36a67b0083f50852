package db

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrUnknownEngine = errors.New("motor de BD desconegut")

type DB interface {
	Connect() error
	Close()
	Exec(query string, args ...interface{}) (int64, error)
	Query(query string, args ...interface{}) ([]map[string]interface{}, error)

	// Esquema
	Migrate() error
	DropTables() error

	// Importacions
	CreateImport(i *GedcomImport) (int, error)
	GetImport(id int) (*GedcomImport, error)
	FindImportByChecksum(checksum string) (*GedcomImport, error)
	ListImports() ([]GedcomImport, error)
	ListImportsByStatus(status string, limit int) ([]GedcomImport, error)
	UpdateImportStatus(id int, status, errorText, summaryJSON string) error
	UpdateImportProgress(id, done, total int) error
	UpdateImportCharset(id int, charset string) error

	// Dades importades
	InsertPersona(p *GedcomPersona) (int, error)
	InsertFamilia(f *GedcomFamilia) (int, error)
	InsertRelacio(r *GedcomRelacio) (int, error)
	InsertFont(f *GedcomFont) (int, error)
	ListPersonesByImport(importID int) ([]GedcomPersona, error)
	ListRelacionsByImport(importID int) ([]GedcomRelacio, error)
	CountPersones(importID int) (int, error)
	DeleteImportData(importID int) error
}

func NewDB(config map[string]string) (DB, error) {
	var dbInstance DB
	engine := strings.ToLower(strings.TrimSpace(config["DB_ENGINE"]))
	if engine == "" {
		engine = "sqlite"
	}

	switch engine {
	case "sqlite":
		path := config["DB_PATH"]
		if path == "" {
			path = "./database.db"
		}
		dbInstance = &SQLite{Path: path}
	case "postgres":
		dbInstance = &PostgreSQL{
			Host:   config["DB_HOST"],
			Port:   config["DB_PORT"],
			User:   config["DB_USR"],
			Pass:   config["DB_PASS"],
			DBName: config["DB_NAME"],
		}
	case "mysql":
		dbInstance = &MySQL{
			Host:   config["DB_HOST"],
			Port:   config["DB_PORT"],
			User:   config["DB_USR"],
			Pass:   config["DB_PASS"],
			DBName: config["DB_NAME"],
		}
	default:
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", engine)
	}

	// Connectem primer
	if err := dbInstance.Connect(); err != nil {
		return nil, err
	}

	// Si cal, recrearem les taules
	if strings.EqualFold(strings.TrimSpace(config["RECREADB"]), "true") {
		logInfof("RECREADB actiu, s'esborren les taules de %s", engine)
		if err := dbInstance.DropTables(); err != nil {
			dbInstance.Close()
			return nil, errors.Wrapf(err, "error recreant BD amb %s", engine)
		}
	}
	if err := dbInstance.Migrate(); err != nil {
		dbInstance.Close()
		return nil, err
	}

	return dbInstance, nil
}
