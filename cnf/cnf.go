package cnf

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
)

// Config – Variable pública amb les opcions de configuració
var Config map[string]string

// AppConfig – Configuració tipada per facilitar l'ús
type AppConfig struct {
	DBEngine string
	DBPath   string
	RecreaDB bool
	LogLevel string
	Env      string
	DBHost   string
	DBUser   string
	DBPass   string
	DBPort   string
	DBName   string

	GedcomRoot        string
	GedcomMaxUploadMB int
	MediaRoot         string
	WorkerPollSeconds int
	WorkerBatch       int

	// Tolerància del lector de línies
	Parser gedcom.ParserOptions
}

// LoadConfig carrega el fitxer en format clau=valor, ignorant línies buides o comentaris.
func LoadConfig(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "no s'ha pogut obrir el fitxer de configuració")
	}
	defer file.Close()

	config := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		config[strings.TrimSpace(key)] = stripInlineComment(strings.TrimSpace(value))
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error llegint config")
	}

	Config = config
	return config, nil
}

func stripInlineComment(value string) string {
	commentIdx := -1
	for _, marker := range []string{" #", "\t#", " ;", "\t;"} {
		if idx := strings.Index(value, marker); idx >= 0 && (commentIdx == -1 || idx < commentIdx) {
			commentIdx = idx
		}
	}
	if commentIdx >= 0 {
		value = strings.TrimSpace(value[:commentIdx])
	}
	return value
}

// ParseConfig converteix map[string]string en AppConfig amb valors per defecte.
func ParseConfig(cfg map[string]string) (AppConfig, error) {
	ac := AppConfig{
		DBEngine:   strings.ToLower(strings.TrimSpace(cfg["DB_ENGINE"])),
		DBPath:     cfg["DB_PATH"],
		LogLevel:   strings.TrimSpace(cfg["LOG_LEVEL"]),
		Env:        strings.TrimSpace(cfg["ENVIRONMENT"]),
		DBHost:     cfg["DB_HOST"],
		DBUser:     cfg["DB_USR"],
		DBPass:     cfg["DB_PASS"],
		DBPort:     cfg["DB_PORT"],
		DBName:     cfg["DB_NAME"],
		GedcomRoot: strings.TrimSpace(cfg["GEDCOM_ROOT"]),
		MediaRoot:  strings.TrimSpace(cfg["MEDIA_ROOT"]),
	}

	if ac.DBEngine == "" {
		ac.DBEngine = "sqlite"
	}
	switch ac.DBEngine {
	case "sqlite", "postgres", "mysql":
	default:
		return ac, errors.Newf("DB_ENGINE desconegut: %s", ac.DBEngine)
	}
	if ac.DBPath == "" {
		ac.DBPath = "./database.db"
	}
	if ac.LogLevel == "" {
		ac.LogLevel = "info"
	}
	if ac.Env == "" {
		ac.Env = os.Getenv("ENVIRONMENT")
		if ac.Env == "" {
			ac.Env = "development"
		}
	}
	if ac.GedcomRoot == "" {
		ac.GedcomRoot = "./data/gedcom"
	}

	var err error
	if ac.RecreaDB, err = parseBool(cfg, "RECREADB", false); err != nil {
		return ac, err
	}
	if ac.GedcomMaxUploadMB, err = parsePositiveInt(cfg, "GEDCOM_MAX_UPLOAD_MB", 50); err != nil {
		return ac, err
	}
	if ac.WorkerPollSeconds, err = parsePositiveInt(cfg, "IMPORT_WORKER_POLL_SECONDS", 5); err != nil {
		return ac, err
	}
	if ac.WorkerBatch, err = parsePositiveInt(cfg, "IMPORT_WORKER_BATCH", 10); err != nil {
		return ac, err
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"GEDCOM_ALLOW_MULTIPLE_DELIMITERS", &ac.Parser.AllowMultipleDelimiters},
		{"GEDCOM_ALLOW_MISSING_DELIMITERS", &ac.Parser.AllowMissingDelimiters},
		{"GEDCOM_ALLOW_BARE_CONTINUATION", &ac.Parser.AllowBareContinuation},
		{"GEDCOM_ALLOW_TABS", &ac.Parser.AllowTabs},
		{"GEDCOM_ALLOW_IS1_DELIMITER", &ac.Parser.AllowIS1Delimiter},
		{"GEDCOM_ALLOW_TAG_PUNCTUATION", &ac.Parser.AllowTagPunctuation},
	}
	for _, f := range flags {
		if *f.dst, err = parseBool(cfg, f.key, true); err != nil {
			return ac, err
		}
	}

	return ac, nil
}

func parseBool(cfg map[string]string, key string, fallback bool) (bool, error) {
	v, ok := cfg[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return fallback, errors.Wrapf(err, "valor invàlid per %s", key)
	}
	return b, nil
}

func parsePositiveInt(cfg map[string]string, key string, fallback int) (int, error) {
	v := strings.TrimSpace(cfg[key])
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, errors.Wrapf(err, "valor invàlid per %s", key)
	}
	if n <= 0 {
		return fallback, nil
	}
	return n, nil
}
