package core

import (
	"github.com/marcmoiagese/CercaGedcom/cnf"
	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
	"github.com/marcmoiagese/CercaGedcom/db"
)

// App encapsula dependències compartides entre les ordres i el worker.
type App struct {
	Config map[string]string
	DB     db.DB
}

func NewApp(cfg map[string]string, database db.DB) *App {
	if cfg == nil {
		cfg = map[string]string{}
	}
	return &App{Config: cfg, DB: database}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// settings valida la configuració. Si és invàlida es fan servir els valors
// per defecte.
func (a *App) settings() cnf.AppConfig {
	ac, err := cnf.ParseConfig(a.Config)
	if err != nil {
		Errorf("configuració invàlida, es fan servir els valors per defecte: %v", err)
		ac, _ = cnf.ParseConfig(map[string]string{})
	}
	return ac
}

// parserOptions llegeix els GEDCOM_ALLOW_*.
func (a *App) parserOptions() gedcom.ParserOptions {
	return a.settings().Parser
}
