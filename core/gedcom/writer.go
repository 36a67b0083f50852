package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// maxValueLength és el màxim de caràcters de valor per línia abans de partir amb CONC.
const maxValueLength = 248

// Writer escriu una Database en format GEDCOM 5.5.1 i UTF-8.
type Writer struct {
	w   *bufio.Writer
	err error

	// ApplicationName va a HEAD.SOUR si la capçalera no en porta.
	ApplicationName string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), ApplicationName: "CercaGedcom"}
}

// WriteDatabase escriu la capçalera, tots els registres en ordre i el TRLR.
func (w *Writer) WriteDatabase(db *Database) error {
	w.writeHeader(db.Header)
	for _, rec := range db.Records() {
		w.writeRecord(rec)
	}
	w.line(0, "", "TRLR", "")
	if w.err != nil {
		return errors.Wrap(w.err, "escrivint GEDCOM")
	}
	return errors.Wrap(w.w.Flush(), "escrivint GEDCOM")
}

func (w *Writer) raw(level int, xref, tag, value string) {
	if w.err != nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d ", level)
	if xref != "" {
		b.WriteString("@" + xref + "@ ")
	}
	b.WriteString(tag)
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteString("\r\n")
	_, w.err = w.w.WriteString(b.String())
}

// line escriu un valor de text: "@" es dobla, els salts de línia van amb
// CONT i els trossos massa llargs amb CONC.
func (w *Writer) line(level int, xref, tag, value string) {
	parts := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "@", "@@")
		chunks := splitValue(part)
		for j, c := range chunks {
			switch {
			case i == 0 && j == 0:
				w.raw(level, xref, tag, c)
			case j == 0:
				w.raw(level+1, "", "CONT", c)
			default:
				w.raw(level+1, "", "CONC", c)
			}
		}
	}
}

// splitValue parteix el text en trossos de maxValueLength caràcters sense
// deixar un espai al final ni al principi d'un tros.
func splitValue(s string) []string {
	r := []rune(s)
	if len(r) <= maxValueLength {
		return []string{s}
	}
	var out []string
	for len(r) > maxValueLength {
		cut := maxValueLength
		for cut > 1 && (r[cut] == ' ' || r[cut-1] == ' ') {
			cut--
		}
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	return append(out, string(r))
}

func (w *Writer) pointer(level int, tag, xref string) {
	if xref != "" {
		w.raw(level, "", tag, "@"+xref+"@")
	}
}

func (w *Writer) value(level int, tag, v string) {
	if v != "" {
		w.line(level, "", tag, v)
	}
}

func (w *Writer) date(level int, tag string, d *DateRecord) {
	if d == nil {
		return
	}
	text := d.Text()
	if text == "" {
		text = d.Raw
	}
	w.raw(level, "", tag, text)
	if d.Date != nil {
		w.value(level+1, "TIME", d.Date.Time)
	}
}

func (w *Writer) writeHeader(h *HeaderRecord) {
	if h == nil {
		h = &HeaderRecord{}
	}
	w.raw(0, "", "HEAD", "")
	src := h.ApprovedSystemID
	if src == "" {
		src = w.ApplicationName
	}
	w.value(1, "SOUR", src)
	w.value(2, "VERS", h.ApplicationVersion)
	w.value(2, "NAME", h.ApplicationName)
	if h.Corporation != "" {
		w.value(2, "CORP", h.Corporation)
		w.address(3, h.CorporationAddress)
	}
	w.value(2, "DATA", h.SourceData)
	w.value(1, "DEST", h.Destination)
	if h.TransmissionDate != nil {
		w.date(1, "DATE", h.TransmissionDate)
	} else {
		w.raw(1, "", "DATE", strings.ToUpper(time.Now().Format("2 Jan 2006")))
	}
	w.pointer(1, "SUBM", h.SubmitterXref)
	w.pointer(1, "SUBN", h.SubmissionXref)
	w.value(1, "FILE", h.Filename)
	w.value(1, "COPR", h.Copyright)
	w.raw(1, "", "GEDC", "")
	w.raw(2, "", "VERS", "5.5.1")
	w.raw(2, "", "FORM", "LINEAGE-LINKED")
	w.raw(1, "", "CHAR", "UTF-8")
	w.value(1, "LANG", h.Language)
	if h.PlaceForm != "" {
		w.raw(1, "", "PLAC", "")
		w.value(2, "FORM", h.PlaceForm)
	}
	w.common(1, &h.RecordBase)
}

func (w *Writer) writeRecord(rec Record) {
	b := rec.Base()
	switch r := rec.(type) {
	case *IndividualRecord:
		w.raw(0, b.XrefID, "INDI", "")
		w.individual(r)
	case *FamilyRecord:
		w.raw(0, b.XrefID, "FAM", "")
		w.family(r)
	case *SourceRecord:
		w.raw(0, b.XrefID, "SOUR", "")
		w.source(r)
	case *RepositoryRecord:
		w.raw(0, b.XrefID, "REPO", "")
		w.value(1, "NAME", r.Name)
		w.address(1, r.Address)
	case *NoteRecord:
		w.line(0, b.XrefID, "NOTE", r.Text)
	case *MultimediaRecord:
		w.raw(0, b.XrefID, "OBJE", "")
		w.multimedia(1, r)
	case *SubmitterRecord:
		w.raw(0, b.XrefID, "SUBM", "")
		w.value(1, "NAME", r.Name)
		w.address(1, r.Address)
		for _, l := range r.LanguagePreferences {
			w.value(1, "LANG", l)
		}
		w.value(1, "RFN", r.RegisteredRFN)
	case *SubmissionRecord:
		w.raw(0, b.XrefID, "SUBN", "")
		w.pointer(1, "SUBM", r.SubmitterXref)
		w.value(1, "FAMF", r.FamilyFile)
		w.value(1, "TEMP", r.TempleCode)
		w.value(1, "ANCE", r.AncestorGenerations)
		w.value(1, "DESC", r.DescendantGenerations)
		w.value(1, "ORDI", r.OrdinanceProcessFlag)
	case *CustomRecord:
		w.custom(0, r)
		return
	default:
		return
	}
	w.common(1, b)
}

func (w *Writer) individual(r *IndividualRecord) {
	for _, n := range r.Names {
		w.line(1, "", "NAME", n.Value)
		w.value(2, "TYPE", n.Type)
		w.value(2, "NPFX", n.Prefix)
		w.value(2, "GIVN", n.Given)
		w.value(2, "NICK", n.Nickname)
		w.value(2, "SPFX", n.SurnamePrefix)
		w.value(2, "SURN", n.Surname)
		w.value(2, "NSFX", n.Suffix)
		w.common(2, &n.RecordBase)
	}
	if r.Sex != SexUnknown {
		w.raw(1, "", "SEX", r.Sex.String())
	}
	for _, ev := range r.Events {
		w.event(1, &ev.EventRecord)
		if ev.FamcXref != "" {
			w.pointer(2, "FAMC", ev.FamcXref)
			if ev.AdoptedBy != AdoptedByNone {
				w.raw(3, "", "ADOP", ev.AdoptedBy.String())
			}
		}
		w.common(2, &ev.RecordBase)
	}
	for _, fl := range r.ChildIn {
		w.pointer(1, "FAMC", fl.Family)
		if fl.Pedigree != PedigreeUnknown {
			w.raw(2, "", "PEDI", fl.Pedigree.String())
		}
		w.value(2, "STAT", fl.Status)
		w.common(2, &fl.RecordBase)
	}
	for _, fl := range r.SpouseIn {
		w.pointer(1, "FAMS", fl.Family)
		w.common(2, &fl.RecordBase)
	}
	for _, a := range r.Associations {
		w.pointer(1, "ASSO", a.Individual)
		w.value(2, "RELA", a.Relation)
		w.common(2, &a.RecordBase)
	}
	for _, x := range r.Aliases {
		w.pointer(1, "ALIA", x)
	}
	for _, x := range r.Submitters {
		w.pointer(1, "SUBM", x)
	}
	for _, x := range r.AncestorInterest {
		w.pointer(1, "ANCI", x)
	}
	for _, x := range r.DescendantInterest {
		w.pointer(1, "DESI", x)
	}
	w.value(1, "RFN", r.PermanentRecordFileNumber)
	w.value(1, "AFN", r.AncestralFileNumber)
}

func (w *Writer) family(f *FamilyRecord) {
	w.pointer(1, "HUSB", f.Husband)
	w.pointer(1, "WIFE", f.Wife)
	for _, c := range f.Children {
		w.pointer(1, "CHIL", c)
		if cp := f.ChildPedigrees[c]; cp != nil {
			if cp.Father != PedigreeUnknown {
				w.raw(2, "", "_FREL", cp.Father.String())
			}
			if cp.Mother != PedigreeUnknown {
				w.raw(2, "", "_MREL", cp.Mother.String())
			}
		}
	}
	w.value(1, "NCHI", f.NumberOfChildren)
	for _, x := range f.Submitters {
		w.pointer(1, "SUBM", x)
	}
	for _, ev := range f.Events {
		w.event(1, &ev.EventRecord)
		if ev.HusbandAge != "" {
			w.raw(2, "", "HUSB", "")
			w.value(3, "AGE", ev.HusbandAge)
		}
		if ev.WifeAge != "" {
			w.raw(2, "", "WIFE", "")
			w.value(3, "AGE", ev.WifeAge)
		}
		w.common(2, &ev.RecordBase)
	}
}

// event escriu la línia de l'esdeveniment i els seus camps, sense les
// notes ni les cites, que van a common.
func (w *Writer) event(level int, e *EventRecord) {
	tag := e.EventType.Tag()
	w.line(level, "", tag, e.Value)
	w.value(level+1, "TYPE", e.Classification)
	w.date(level+1, "DATE", e.Date)
	if p := e.Place; p != nil {
		w.line(level+1, "", "PLAC", p.Name)
		w.value(level+2, "FORM", p.Form)
		if p.Latitude != "" || p.Longitude != "" {
			w.raw(level+2, "", "MAP", "")
			w.value(level+3, "LATI", p.Latitude)
			w.value(level+3, "LONG", p.Longitude)
		}
	}
	w.address(level+1, e.Address)
	w.value(level+1, "AGE", e.Age)
	w.value(level+1, "AGNC", e.ResponsibleAgency)
	w.value(level+1, "RELI", e.ReligiousAffiliation)
	w.value(level+1, "CAUS", e.Cause)
}

func (w *Writer) source(s *SourceRecord) {
	w.value(1, "TITL", s.Title)
	w.value(1, "AUTH", s.Originator)
	w.value(1, "PUBL", s.PublicationFacts)
	w.value(1, "ABBR", s.FiledBy)
	w.value(1, "TEXT", s.Text)
	if len(s.EventsRecorded) > 0 || s.Agency != "" {
		w.raw(1, "", "DATA", "")
		for _, e := range s.EventsRecorded {
			w.value(2, "EVEN", e)
		}
		w.value(2, "AGNC", s.Agency)
	}
	for _, rc := range s.RepositoryCitations {
		if rc.RepositoryXref != "" {
			w.pointer(1, "REPO", rc.RepositoryXref)
		} else {
			w.raw(1, "", "REPO", "")
		}
		for i, cn := range rc.CallNumbers {
			w.value(2, "CALN", cn)
			if i < len(rc.MediaTypes) {
				w.value(3, "MEDI", rc.MediaTypes[i])
			}
		}
		w.common(2, &rc.RecordBase)
	}
}

func (w *Writer) address(level int, a *Address) {
	if a.IsEmpty() {
		return
	}
	w.line(level, "", "ADDR", a.AddressLine)
	w.value(level+1, "ADR1", a.Line1)
	w.value(level+1, "ADR2", a.Line2)
	w.value(level+1, "ADR3", a.Line3)
	w.value(level+1, "CITY", a.City)
	w.value(level+1, "STAE", a.State)
	w.value(level+1, "POST", a.PostalCode)
	w.value(level+1, "CTRY", a.Country)
	for _, v := range a.Phone {
		w.value(level, "PHON", v)
	}
	for _, v := range a.Email {
		w.value(level, "EMAIL", v)
	}
	for _, v := range a.Fax {
		w.value(level, "FAX", v)
	}
	for _, v := range a.WWW {
		w.value(level, "WWW", v)
	}
}

func (w *Writer) multimedia(level int, m *MultimediaRecord) {
	for _, f := range m.Files {
		w.value(level, "FILE", f.Filename)
		if f.Format != "" {
			w.value(level+1, "FORM", f.Format)
			w.value(level+2, "TYPE", f.MediaType)
		}
		w.value(level+1, "TITL", f.Title)
	}
	w.value(level, "TITL", m.Title)
}

func (w *Writer) citation(level int, c *SourceCitation) {
	if c.SourceXref != "" {
		w.pointer(level, "SOUR", c.SourceXref)
	} else {
		w.line(level, "", "SOUR", c.Description)
	}
	w.value(level+1, "PAGE", c.Page)
	if c.EventCited != "" {
		w.value(level+1, "EVEN", c.EventCited)
		w.value(level+2, "ROLE", c.Role)
	}
	w.value(level+1, "QUAY", c.Certainty)
	if c.DataDate != nil || c.Text != "" {
		w.raw(level+1, "", "DATA", "")
		w.date(level+2, "DATE", c.DataDate)
		w.value(level+2, "TEXT", c.Text)
	}
	w.common(level+1, &c.RecordBase)
}

// common escriu els camps de RecordBase.
func (w *Writer) common(level int, b *RecordBase) {
	for _, x := range b.Notes {
		w.pointer(level, "NOTE", x)
	}
	for _, t := range b.NoteTexts {
		w.line(level, "", "NOTE", t)
	}
	for _, c := range b.Citations {
		w.citation(level, c)
	}
	for _, x := range b.Multimedia {
		w.pointer(level, "OBJE", x)
	}
	for _, m := range b.InlineMultimedia {
		w.raw(level, "", "OBJE", "")
		w.multimedia(level+1, m)
	}
	for _, ref := range b.UserReferences {
		w.value(level, "REFN", ref.Number)
		w.value(level+1, "TYPE", ref.Type)
	}
	w.value(level, "RIN", b.AutomatedRecordID)
	w.value(level, "RESN", b.RestrictionNotice)
	w.value(level, "_UID", b.UID)
	if b.ChangeDate != nil && b.ChangeDate.Date != nil {
		w.raw(level, "", "CHAN", "")
		w.date(level+1, "DATE", b.ChangeDate.Date)
	}
	for _, c := range b.Custom {
		w.custom(level, c)
	}
}

func (w *Writer) custom(level int, c *CustomRecord) {
	if c.IsPointer {
		w.raw(level, c.XrefID, c.Tag, "@"+c.Value+"@")
	} else {
		w.line(level, c.XrefID, c.Tag, c.Value)
	}
	for _, ch := range c.Children {
		w.custom(level+1, ch)
	}
	if level == 0 {
		w.common(1, &c.RecordBase)
	}
}
