package cnf

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// LoadYAMLConfig llegeix un YAML i l'aplana a les mateixes claus que LoadConfig:
//
//	database:
//	  engine: postgres   ->  DATABASE_ENGINE=postgres
//	db_path: ./x.db      ->  DB_PATH=./x.db
//
// Les llistes s'uneixen amb comes.
func LoadYAMLConfig(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error obrint fitxer de configuració")
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrap(err, "error decodificant YAML")
	}
	config := make(map[string]string)
	flatten(config, "", doc)
	normalizeYAMLKeys(config)
	Config = config
	return config, nil
}

func flatten(dst map[string]string, prefix string, v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			flatten(dst, joinKey(prefix, k), child)
		}
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		dst[prefix] = strings.Join(parts, ",")
	case nil:
		dst[prefix] = ""
	default:
		dst[prefix] = fmt.Sprint(t)
	}
}

func joinKey(prefix, key string) string {
	key = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(key), "-", "_"))
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// Àlies de la secció database: cap a les claus que fa servir el paquet db.
var yamlAliases = map[string]string{
	"DATABASE_ENGINE":   "DB_ENGINE",
	"DATABASE_TYPE":     "DB_ENGINE",
	"DATABASE_PATH":     "DB_PATH",
	"DATABASE_HOST":     "DB_HOST",
	"DATABASE_PORT":     "DB_PORT",
	"DATABASE_USER":     "DB_USR",
	"DATABASE_PASSWORD": "DB_PASS",
	"DATABASE_NAME":     "DB_NAME",
	"DATABASE_RECREATE": "RECREADB",
}

func normalizeYAMLKeys(config map[string]string) {
	for from, to := range yamlAliases {
		v, ok := config[from]
		if !ok {
			continue
		}
		if _, set := config[to]; !set {
			config[to] = v
		}
		delete(config, from)
	}
}
