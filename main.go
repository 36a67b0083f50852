package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/marcmoiagese/CercaGedcom/cnf"
	"github.com/marcmoiagese/CercaGedcom/core"
	"github.com/marcmoiagese/CercaGedcom/db"
)

const defaultConfigPath = "cnf/config.cfg"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "cercagedcom",
	Short:         "Lector i importador de fitxers GEDCOM",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ac, err := cnf.ParseConfig(cfg)
		if err != nil {
			return err
		}
		level := ac.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		core.SetLogLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "fitxer de configuració (clau=valor o YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "silent, error, warn, info o debug")
	rootCmd.AddCommand(importCmd, checkCmd, dateCmd, exportCmd, queueCmd, workerCmd)
}

// loadConfig llegeix la configuració. Si no s'ha indicat cap fitxer i el
// per defecte no existeix, es continua amb els valors per defecte.
func loadConfig(cmd *cobra.Command) (map[string]string, error) {
	if _, err := os.Stat(configPath); err != nil && !cmd.Flags().Changed("config") {
		cnf.Config = map[string]string{}
		return cnf.Config, nil
	}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return cnf.LoadYAMLConfig(configPath)
	default:
		return cnf.LoadConfig(configPath)
	}
}

// openApp obre la base de dades segons la configuració carregada.
func openApp() (*core.App, error) {
	database, err := db.NewDB(cnf.Config)
	if err != nil {
		return nil, errors.Wrap(err, "no s'ha pogut obrir la base de dades")
	}
	return core.NewApp(cnf.Config, database), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
