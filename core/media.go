package core

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
)

const mediaProbeMax = 200

// MediaInfo descriu un FILE d'un OBJE trobat al disc.
type MediaInfo struct {
	File   string `json:"file"`
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// mediaRoots retorna on es busquen els fitxers: MEDIA_ROOT i la carpeta del GEDCOM.
func (a *App) mediaRoots(gedcomPath string) []string {
	var roots []string
	if root := a.settings().MediaRoot; root != "" {
		roots = append(roots, root)
	}
	if gedcomPath != "" {
		roots = append(roots, filepath.Dir(gedcomPath))
	}
	return roots
}

// ProbeMultimedia mira la mida i el format de les imatges dels OBJE. Els
// fitxers que no es troben o no es poden descodificar porten Error.
func (a *App) ProbeMultimedia(gedcomPath string, files []*gedcom.MultimediaFile) []MediaInfo {
	roots := a.mediaRoots(gedcomPath)
	var out []MediaInfo
	for _, f := range files {
		if f == nil || strings.TrimSpace(f.Filename) == "" {
			continue
		}
		if len(out) >= mediaProbeMax {
			break
		}
		info := MediaInfo{File: f.Filename}
		path, ok := resolveMediaPath(roots, f.Filename)
		if !ok {
			info.Error = "no trobat"
			out = append(out, info)
			continue
		}
		info.Path = path
		format, w, h, err := probeImage(path)
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Format, info.Width, info.Height = format, w, h
		}
		out = append(out, info)
	}
	return out
}

// resolveMediaPath prova el camí tal com ve dins de cada arrel i, si no hi
// és, només el nom del fitxer. Mai surt de l'arrel.
func resolveMediaPath(roots []string, name string) (string, bool) {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	candidates := []string{filepath.FromSlash(name)}
	if base := filepath.Base(filepath.FromSlash(name)); base != candidates[0] {
		candidates = append(candidates, base)
	}
	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		for _, c := range candidates {
			if filepath.IsAbs(c) || filepath.VolumeName(c) != "" {
				continue
			}
			p := filepath.Join(absRoot, c)
			rel, err := filepath.Rel(absRoot, p)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

func probeImage(path string) (string, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "format no reconegut")
	}
	return format, cfg.Width, cfg.Height, nil
}

// multimediaFiles recull els FILE dels OBJE de nivell 0 i dels OBJE en línia dels registres.
func multimediaFiles(gdb *gedcom.Database) []*gedcom.MultimediaFile {
	var files []*gedcom.MultimediaFile
	for _, rec := range gdb.Records() {
		if m, ok := rec.(*gedcom.MultimediaRecord); ok {
			files = append(files, m.Files...)
		}
		for _, m := range rec.Base().InlineMultimedia {
			files = append(files, m.Files...)
		}
	}
	return files
}
