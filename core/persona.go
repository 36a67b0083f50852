package core

import (
	"database/sql"
	"strings"

	"github.com/marcmoiagese/CercaGedcom/core/gedcom"
	"github.com/marcmoiagese/CercaGedcom/db"
)

// Persona és una foto plana d'un individu llegit d'un GEDCOM. No es manté
// sincronitzada amb el registre.
type Persona struct {
	ID            string
	Nom           string
	Cognom        string
	NomComplet    string
	Sexe          string
	Alies         []string
	DataNaixement string
	LlocNaixement string
	DataDefuncio  string
	LlocDefuncio  string
	// DataOrdre és el naixement normalitzat (2006-01-02), o el bateig si no n'hi ha.
	DataOrdre string
	FillDe    []string
	ConjugeA  []string
	Notes     string
}

func NewPersona(ind *gedcom.IndividualRecord) *Persona {
	if ind == nil {
		return nil
	}
	p := &Persona{
		ID:   ind.XrefID,
		Sexe: ind.Sex.String(),
	}
	if n := ind.Name(); n != nil {
		p.Nom = n.Given
		p.Cognom = n.Surname
		p.NomComplet = n.FullName()
	}
	for i, n := range ind.Names {
		if i == 0 {
			continue
		}
		if full := n.FullName(); full != "" {
			p.Alies = append(p.Alies, full)
		}
	}
	p.Alies = append(p.Alies, ind.Aliases...)

	if ev := ind.Birth(); ev != nil {
		p.DataNaixement, p.LlocNaixement = eventDatePlace(&ev.EventRecord)
		if ev.Date != nil && ev.Date.Date != nil {
			p.DataOrdre = ev.Date.Date.ISO()
		}
	}
	for _, t := range []gedcom.EventType{gedcom.EventChristening, gedcom.EventBaptism} {
		if p.DataOrdre != "" {
			break
		}
		for _, ev := range ind.FindEvents(t) {
			if ev.Date != nil && ev.Date.Date != nil {
				if iso := ev.Date.Date.ISO(); iso != "" {
					p.DataOrdre = iso
					break
				}
			}
		}
	}
	if ev := ind.Death(); ev != nil {
		p.DataDefuncio, p.LlocDefuncio = eventDatePlace(&ev.EventRecord)
	}
	for _, l := range ind.ChildIn {
		p.FillDe = append(p.FillDe, l.Family)
	}
	for _, l := range ind.SpouseIn {
		p.ConjugeA = append(p.ConjugeA, l.Family)
	}
	p.Notes = strings.Join(notesOf(ind.Base()), "\n\n")
	return p
}

func eventDatePlace(ev *gedcom.EventRecord) (string, string) {
	place := ""
	if ev.Place != nil {
		place = ev.Place.Name
	}
	return ev.DateText(), place
}

// notesOf retorna les notes en línia i les enllaçades que existeixen.
func notesOf(b *gedcom.RecordBase) []string {
	out := append([]string{}, b.NoteTexts...)
	gdb := b.Database()
	if gdb == nil {
		return out
	}
	for _, xref := range b.Notes {
		if n := gdb.Note(xref); n != nil && strings.TrimSpace(n.Text) != "" {
			out = append(out, n.Text)
		}
	}
	return out
}

func (p *Persona) row(importID int) *db.GedcomPersona {
	return &db.GedcomPersona{
		ImportID:      importID,
		ExternalID:    p.ID,
		Nom:           sqlNullString(p.Nom),
		Cognom1:       sqlNullString(p.Cognom),
		NomComplet:    sqlNullString(p.NomComplet),
		Sexe:          sqlNullString(p.Sexe),
		DataNaixement: sqlNullString(p.DataNaixement),
		LlocNaixement: sqlNullString(p.LlocNaixement),
		DataDefuncio:  sqlNullString(p.DataDefuncio),
		LlocDefuncio:  sqlNullString(p.LlocDefuncio),
		DataOrdre:     sqlNullString(p.DataOrdre),
		Notes:         sqlNullString(p.Notes),
	}
}

func sqlNullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
