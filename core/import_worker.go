package core

import (
	"context"
	"sync"
	"time"

	"github.com/marcmoiagese/CercaGedcom/db"
)

type importWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// importWorkerState evita que una mateixa importació s'executi dos cops i
// limita quantes en corren alhora. Cada importació fa servir el seu lector.
type importWorkerState struct {
	mu      sync.Mutex
	running int
	active  map[int]struct{}
	wg      sync.WaitGroup
}

var importWorker = &importWorkerState{
	active: map[int]struct{}{},
}

func (a *App) importWorkerConfig() importWorkerConfig {
	ac := a.settings()
	return importWorkerConfig{
		PollInterval: time.Duration(ac.WorkerPollSeconds) * time.Second,
		BatchSize:    ac.WorkerBatch,
	}
}

// RunImportWorker processa la cua fins que es cancel·la el context i
// espera que acabin les importacions en curs.
func (a *App) RunImportWorker(ctx context.Context) {
	cfg := a.importWorkerConfig()
	Infof("worker d'importacions actiu cada %s, lots de %d", cfg.PollInterval, cfg.BatchSize)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	a.dispatchImports(cfg)
	for {
		select {
		case <-ctx.Done():
			importWorker.wait()
			return
		case <-ticker.C:
			a.dispatchImports(cfg)
		}
	}
}

// dispatchImports llança les importacions pendents i retorna quantes ha començat.
func (a *App) dispatchImports(cfg importWorkerConfig) int {
	if a == nil || a.DB == nil {
		return 0
	}
	imports, err := a.DB.ListImportsByStatus(db.ImportQueued, cfg.BatchSize)
	if err != nil {
		Errorf("llistant importacions pendents: %v", err)
		return 0
	}
	started := 0
	for _, imp := range imports {
		if !importWorker.tryStart(imp.ID, cfg.BatchSize) {
			continue
		}
		started++
		go a.runImportJob(&imp)
	}
	return started
}

func (w *importWorkerState) tryStart(importID, limit int) bool {
	if importID <= 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.active[importID]; ok {
		return false
	}
	if limit > 0 && w.running >= limit {
		return false
	}
	w.active[importID] = struct{}{}
	w.running++
	w.wg.Add(1)
	return true
}

func (w *importWorkerState) finish(importID int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.active[importID]; !ok {
		return
	}
	delete(w.active, importID)
	w.running--
	w.wg.Done()
}

func (w *importWorkerState) wait() {
	w.wg.Wait()
}

func (a *App) runImportJob(imp *db.GedcomImport) {
	if imp == nil {
		return
	}
	defer importWorker.finish(imp.ID)

	if err := a.processGedcomImport(imp); err != nil {
		Errorf("importació %d: %v", imp.ID, err)
		_ = a.DB.UpdateImportStatus(imp.ID, db.ImportError, err.Error(), "")
	}
}
