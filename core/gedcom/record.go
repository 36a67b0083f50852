package gedcom

import (
	"strings"
	"time"

	"github.com/marcmoiagese/CercaGedcom/core/gedcomdate"
)

// RecordKind identifica la variant concreta d'un Record.
type RecordKind int

const (
	KindHeader RecordKind = iota
	KindIndividual
	KindFamily
	KindSource
	KindRepository
	KindSubmitter
	KindNote
	KindMultimedia
	KindSubmission
	KindEvent
	KindIndividualEvent
	KindFamilyEvent
	KindPlace
	KindSourceCitation
	KindRepositoryCitation
	KindFamilyLink
	KindAssociation
	KindName
	KindDate
	KindChangeDate
	KindAddress
	KindCustom
)

var recordKindNames = []string{
	"Header", "Individual", "Family", "Source", "Repository", "Submitter", "Note",
	"Multimedia", "Submission", "Event", "IndividualEvent", "FamilyEvent", "Place",
	"SourceCitation", "RepositoryCitation", "FamilyLink", "Association", "Name",
	"Date", "ChangeDate", "Address", "Custom",
}

func (k RecordKind) String() string {
	if int(k) < len(recordKindNames) {
		return recordKindNames[k]
	}
	return "Unknown"
}

// Record és qualsevol registre del graf. La variant es distingeix amb Kind()
// o amb un type switch sobre el tipus concret.
type Record interface {
	Kind() RecordKind
	Base() *RecordBase
}

// UserReference és un REFN amb el seu TYPE opcional.
type UserReference struct {
	Number string
	Type   string
}

// RecordBase conté els camps comuns. Els enllaços amb altres registres són
// sempre identificadors (xref), mai punters.
type RecordBase struct {
	XrefID       string
	Level        int
	ParsingLevel int

	Notes             []string
	NoteTexts         []string
	Citations         []*SourceCitation
	Multimedia        []string
	InlineMultimedia  []*MultimediaRecord
	ChangeDate        *ChangeDate
	UserReferences    []UserReference
	AutomatedRecordID string
	RestrictionNotice string
	UID               string
	Custom            []*CustomRecord

	db *Database
}

func (b *RecordBase) Base() *RecordBase { return b }

// Database retorna la base de dades propietària, o nil.
func (b *RecordBase) Database() *Database { return b.db }

// Changed actualitza el CHAN i avisa OnChange. No fa res mentre es llegeix el fitxer.
func (b *RecordBase) Changed() {
	if b.db == nil || b.db.loading {
		return
	}
	now := time.Now().UTC()
	if b.ChangeDate == nil {
		b.ChangeDate = &ChangeDate{}
	}
	b.ChangeDate.Date = &DateRecord{Date: gedcomdate.Parse(strings.ToUpper(now.Format("2 Jan 2006")))}
	b.ChangeDate.Date.Date.Time = now.Format("15:04:05")
	if b.db.OnChange != nil {
		b.db.OnChange(b)
	}
}

func (b *RecordBase) removeNote(xref string) {
	out := b.Notes[:0]
	for _, n := range b.Notes {
		if n != xref {
			out = append(out, n)
		}
	}
	b.Notes = out
}

// ChangeDate és el CHAN d'un registre.
type ChangeDate struct {
	RecordBase
	Date *DateRecord
}

func (*ChangeDate) Kind() RecordKind { return KindChangeDate }

// DateRecord embolcalla la data interpretada. Raw és el text tal com venia.
type DateRecord struct {
	RecordBase
	Raw  string
	Date *gedcomdate.Date
}

func (*DateRecord) Kind() RecordKind { return KindDate }

func newDateRecord(raw string) *DateRecord {
	return &DateRecord{Raw: raw, Date: gedcomdate.Parse(raw)}
}

// Text retorna la frase de data reconstruïda.
func (d *DateRecord) Text() string {
	if d == nil || d.Date == nil {
		return ""
	}
	return d.Date.Period()
}

// SetText torna a interpretar la data; és el que fan servir els formularis d'edició.
func (d *DateRecord) SetText(raw string) {
	d.Raw = raw
	if d.Date == nil {
		d.Date = gedcomdate.Parse(raw)
	} else {
		d.Date.SetPeriod(raw)
	}
	d.Changed()
}

// CustomRecord guarda etiquetes no estàndard perquè no es perdin.
type CustomRecord struct {
	RecordBase
	Tag       string
	Value     string
	IsPointer bool
	Children  []*CustomRecord
}

func (*CustomRecord) Kind() RecordKind { return KindCustom }

// Address és una adreça (ADDR) amb els telèfons, correus i webs germans.
type Address struct {
	RecordBase
	AddressLine string
	Line1       string
	Line2       string
	Line3       string
	City        string
	State       string
	PostalCode  string
	Country     string
	Phone       []string
	Email       []string
	Fax         []string
	WWW         []string
}

func (*Address) Kind() RecordKind { return KindAddress }

// IsEmpty és cert si l'adreça no té cap dada.
func (a *Address) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.AddressLine == "" && a.Line1 == "" && a.Line2 == "" && a.Line3 == "" &&
		a.City == "" && a.State == "" && a.PostalCode == "" && a.Country == "" &&
		len(a.Phone) == 0 && len(a.Email) == 0 && len(a.Fax) == 0 && len(a.WWW) == 0
}

// PlaceRecord és un PLAC.
type PlaceRecord struct {
	RecordBase
	Name      string
	Form      string
	Latitude  string
	Longitude string
}

func (*PlaceRecord) Kind() RecordKind { return KindPlace }

// NoteRecord és una nota, amb identificador (nivell 0) o en línia.
type NoteRecord struct {
	RecordBase
	Text string

	text  strings.Builder
	owner *RecordBase
}

func (*NoteRecord) Kind() RecordKind { return KindNote }

// MultimediaFile és un FILE d'un OBJE.
type MultimediaFile struct {
	Filename  string
	Format    string
	MediaType string
	Title     string
}

type MultimediaRecord struct {
	RecordBase
	Title string
	Files []*MultimediaFile
}

func (*MultimediaRecord) Kind() RecordKind { return KindMultimedia }

func (m *MultimediaRecord) lastFile() *MultimediaFile {
	if len(m.Files) == 0 {
		m.Files = append(m.Files, &MultimediaFile{})
	}
	return m.Files[len(m.Files)-1]
}

type SubmitterRecord struct {
	RecordBase
	Name                string
	Address             *Address
	LanguagePreferences []string
	RegisteredRFN       string
}

func (*SubmitterRecord) Kind() RecordKind { return KindSubmitter }

type SubmissionRecord struct {
	RecordBase
	SubmitterXref         string
	FamilyFile            string
	TempleCode            string
	AncestorGenerations   string
	DescendantGenerations string
	OrdinanceProcessFlag  string
}

func (*SubmissionRecord) Kind() RecordKind { return KindSubmission }

// HeaderRecord és el HEAD. N'hi ha un per base de dades.
type HeaderRecord struct {
	RecordBase
	ApprovedSystemID    string
	ApplicationName     string
	ApplicationVersion  string
	Corporation         string
	CorporationAddress  *Address
	SourceData          string
	Destination         string
	TransmissionDate    *DateRecord
	SubmitterXref       string
	SubmissionXref      string
	Filename            string
	Copyright           string
	GedcomVersion       string
	GedcomForm          string
	CharacterSet        string
	CharacterSetVersion string
	Language            string
	PlaceForm           string
}

func (*HeaderRecord) Kind() RecordKind { return KindHeader }
