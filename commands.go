package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/marcmoiagese/CercaGedcom/cnf"
	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
	"github.com/marcmoiagese/CercaGedcom/core/gedcomdate"
)

var importCmd = &cobra.Command{
	Use:   "import <fitxer.ged>...",
	Short: "Importa fitxers GEDCOM a la base de dades",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		for _, path := range args {
			imp, err := app.ImportGedcomFile(path)
			if err != nil {
				return errors.Wrapf(err, "important %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: importació %d (%s)\n", path, imp.ID, imp.Status)
			if imp.SummaryJSON.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), imp.SummaryJSON.String)
			}
		}
		return nil
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue <fitxer.ged>...",
	Short: "Deixa fitxers GEDCOM a la cua del worker",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		for _, path := range args {
			imp, err := app.QueueGedcomFile(path)
			if err != nil {
				return errors.Wrapf(err, "afegint %s a la cua", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: importació %d (%s)\n", path, imp.ID, imp.Status)
		}
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Processa la cua d'importacions fins que s'atura",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		app.RunImportWorker(ctx)
		return nil
	},
}

// checkReport és el que mostra "check" amb --json.
type checkReport struct {
	OK        bool     `json:"ok"`
	Fatal     string   `json:"fatal,omitempty"`
	Charset   string   `json:"charset"`
	Restarted bool     `json:"restarted,omitempty"`
	Lines     int      `json:"lines"`
	Records   int      `json:"records"`
	Persons   int      `json:"persons"`
	Families  int      `json:"families"`
	Sources   int      `json:"sources"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

func readerOptions(strict bool) gedcom.ParserOptions {
	if strict {
		return gedcom.StrictParserOptions()
	}
	ac, err := cnf.ParseConfig(cnf.Config)
	if err != nil {
		return gedcom.DefaultParserOptions()
	}
	return ac.Parser
}

var checkCmd = &cobra.Command{
	Use:   "check <fitxer.ged>",
	Short: "Llegeix un fitxer GEDCOM i n'informa dels problemes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		res, err := gedcom.NewReader(readerOptions(strict)).ReadFile(args[0])
		if err != nil {
			return err
		}
		rep := checkReport{
			OK:        res.OK,
			Charset:   res.Charset,
			Restarted: res.Restarted,
			Lines:     res.Lines,
			Records:   res.Database.Len(),
			Persons:   len(res.Database.Individuals()),
			Families:  len(res.Database.Families()),
			Sources:   len(res.Database.Sources()),
			Warnings:  res.Warnings,
		}
		if res.Fatal != nil {
			rep.Fatal = res.Fatal.Error()
		}
		for _, e := range res.Errors {
			rep.Errors = append(rep.Errors, e.Error())
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			b, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else {
			fmt.Fprintf(out, "charset: %s\nlínies: %d\nregistres: %d (persones %d, famílies %d, fonts %d)\n",
				rep.Charset, rep.Lines, rep.Records, rep.Persons, rep.Families, rep.Sources)
			for _, w := range rep.Warnings {
				fmt.Fprintf(out, "avís: %s\n", w)
			}
			for _, e := range rep.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
		}
		if !res.OK {
			return res.Fatal
		}
		return nil
	},
}

var dateCmd = &cobra.Command{
	Use:   "date <data GEDCOM>",
	Short: "Interpreta una data GEDCOM",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		other, _ := cmd.Flags().GetString("compare")
		d := gedcomdate.Parse(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "text: %s\ncalendari: %s\nperíode: %s\n", d.Period(), d.DateType(), d.DatePeriod())
		if err := d.Err(); err != nil {
			fmt.Fprintf(out, "avís: %v\n", err)
		}
		if iso := d.ISO(); iso != "" {
			fmt.Fprintf(out, "data1: %s (%d parts)\n", iso, d.PartsParsed1())
		}
		if t := d.DateTime2(); t != nil {
			fmt.Fprintf(out, "data2: %s (%d parts)\n", t.Format("2006-01-02"), d.PartsParsed2())
		}
		if other != "" {
			o := gedcomdate.Parse(other)
			fmt.Fprintf(out, "compara: %d\ncoincidència: %.0f\n", gedcomdate.Compare(d, o), gedcomdate.IsMatch(d, o))
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <entrada.ged> <sortida.ged>",
	Short: "Torna a escriure un GEDCOM en UTF-8 (5.5.1)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := gedcom.NewReader(readerOptions(false)).ReadFile(args[0])
		if err != nil {
			return err
		}
		if !res.OK {
			return res.Fatal
		}
		f, err := os.Create(args[1])
		if err != nil {
			return errors.Wrapf(err, "creant %s", args[1])
		}
		if err := gedcom.NewWriter(f).WriteDatabase(res.Database); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d registres escrits a %s\n", res.Database.Len(), args[1])
		return nil
	},
}

func init() {
	checkCmd.Flags().Bool("strict", false, "no tolera cap desviació de l'estàndard")
	checkCmd.Flags().BoolP("json", "j", false, "sortida en JSON")
	dateCmd.Flags().String("compare", "", "una altra data per comparar")
}
