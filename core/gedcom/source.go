package gedcom

import "strings"

// SourceCitation és un SOUR dins d'un altre registre. Pot apuntar a una
// font (SourceXref) o descriure-la en línia (Description).
type SourceCitation struct {
	RecordBase
	SourceXref  string
	Description string
	Page        string
	EventCited  string
	Role        string
	Certainty   string
	DataDate    *DateRecord
	Text        string
	OwnerXref   string

	text strings.Builder
}

func (*SourceCitation) Kind() RecordKind { return KindSourceCitation }

// RepositoryCitation és un REPO dins d'una font.
type RepositoryCitation struct {
	RecordBase
	RepositoryXref string
	CallNumbers    []string
	MediaTypes     []string
	OwnerXref      string
}

func (*RepositoryCitation) Kind() RecordKind { return KindRepositoryCitation }

type SourceRecord struct {
	RecordBase
	Title               string
	Originator          string
	PublicationFacts    string
	Text                string
	FiledBy             string
	EventsRecorded      []string
	Agency              string
	RepositoryCitations []*RepositoryCitation

	// Citations són les cites que apunten a aquesta font; s'omplen en acabar la lectura.
	Citations []*SourceCitation

	title       strings.Builder
	originator  strings.Builder
	publication strings.Builder
	text        strings.Builder
}

func (*SourceRecord) Kind() RecordKind { return KindSource }

// builderFor retorna l'acumulador de text que correspon a l'etiqueta.
func (s *SourceRecord) builderFor(tag string) *strings.Builder {
	switch tag {
	case "TITL":
		return &s.title
	case "AUTH":
		return &s.originator
	case "PUBL":
		return &s.publication
	case "TEXT":
		return &s.text
	}
	return nil
}

func (s *SourceRecord) flush() {
	if s.title.Len() > 0 {
		s.Title = s.title.String()
	}
	if s.originator.Len() > 0 {
		s.Originator = s.originator.String()
	}
	if s.publication.Len() > 0 {
		s.PublicationFacts = s.publication.String()
	}
	if s.text.Len() > 0 {
		s.Text = s.text.String()
	}
}

type RepositoryRecord struct {
	RecordBase
	Name    string
	Address *Address

	Citations []*RepositoryCitation
}

func (*RepositoryRecord) Kind() RecordKind { return KindRepository }
