package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.cfg", `
# comentari
; un altre
DB_ENGINE = postgres
DB_HOST=localhost # inline
DB_PASS=a#b
LOG_LEVEL=debug ; inline
sense igual
DB_HOST=db.local
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg["DB_ENGINE"])
	assert.Equal(t, "db.local", cfg["DB_HOST"])
	assert.Equal(t, "a#b", cfg["DB_PASS"])
	assert.Equal(t, "debug", cfg["LOG_LEVEL"])
	assert.Equal(t, cfg, Config)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "no.cfg"))
	assert.Error(t, err)
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	ac, err := ParseConfig(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", ac.DBEngine)
	assert.Equal(t, "./database.db", ac.DBPath)
	assert.Equal(t, "info", ac.LogLevel)
	assert.Equal(t, "development", ac.Env)
	assert.Equal(t, 50, ac.GedcomMaxUploadMB)
	assert.Equal(t, 5, ac.WorkerPollSeconds)
	assert.Equal(t, 10, ac.WorkerBatch)
	assert.False(t, ac.RecreaDB)
	assert.True(t, ac.Parser.AllowTabs)
	assert.True(t, ac.Parser.AllowBareContinuation)
}

func TestParseConfigValues(t *testing.T) {
	ac, err := ParseConfig(map[string]string{
		"DB_ENGINE":                    "MySQL",
		"RECREADB":                     "TRUE",
		"IMPORT_WORKER_BATCH":          "0",
		"IMPORT_WORKER_POLL_SECONDS":   "30",
		"GEDCOM_ALLOW_TABS":            "false",
		"GEDCOM_ALLOW_TAG_PUNCTUATION": "0",
		"ENVIRONMENT":                  "production",
	})
	require.NoError(t, err)
	assert.Equal(t, "mysql", ac.DBEngine)
	assert.True(t, ac.RecreaDB)
	assert.Equal(t, 10, ac.WorkerBatch)
	assert.Equal(t, 30, ac.WorkerPollSeconds)
	assert.False(t, ac.Parser.AllowTabs)
	assert.False(t, ac.Parser.AllowTagPunctuation)
	assert.True(t, ac.Parser.AllowMultipleDelimiters)
	assert.Equal(t, "production", ac.Env)
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"motor":   {"DB_ENGINE": "oracle"},
		"enter":   {"IMPORT_WORKER_BATCH": "deu"},
		"booleà":  {"GEDCOM_ALLOW_TABS": "potser"},
		"recrear": {"RECREADB": "sí"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
database:
  engine: postgres
  host: localhost
  port: 5432
  user: cerca
  password: secret
  name: gedcom
log_level: debug
gedcom:
  max-upload-mb: 20
  allow_tabs: false
media_root: ./media
extra:
  - a
  - b
`)
	cfg, err := LoadYAMLConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg["DB_ENGINE"])
	assert.Equal(t, "5432", cfg["DB_PORT"])
	assert.Equal(t, "cerca", cfg["DB_USR"])
	assert.Equal(t, "secret", cfg["DB_PASS"])
	assert.Equal(t, "gedcom", cfg["DB_NAME"])
	assert.Equal(t, "debug", cfg["LOG_LEVEL"])
	assert.Equal(t, "20", cfg["GEDCOM_MAX_UPLOAD_MB"])
	assert.Equal(t, "a,b", cfg["EXTRA"])
	_, left := cfg["DATABASE_ENGINE"]
	assert.False(t, left)

	ac, err := ParseConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 20, ac.GedcomMaxUploadMB)
	assert.False(t, ac.Parser.AllowTabs)
	assert.Equal(t, "./media", ac.MediaRoot)
}
