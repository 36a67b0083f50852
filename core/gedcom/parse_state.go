package gedcom

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/marcmoiagese/CercaGedcom/core/gedcomdate"
)

type stackEntry struct {
	rec      Record
	level    int
	topLevel bool
}

type tagEntry struct {
	tag   string
	level int
}

// pendingRef és un punter que es comprova quan s'acaba el fitxer.
type pendingRef struct {
	xref  string
	tag   string
	from  string
	line  int
	owner *RecordBase
}

// ParseState és l'estat d'una lectura. Se'n crea un per passada i no es
// comparteix entre lectures.
type ParseState struct {
	db *Database

	records []stackEntry
	tags    []tagEntry

	missing         []pendingRef
	removedNotes    map[string]bool
	sourceCitations []*SourceCitation
	repoCitations   []*RepositoryCitation
	warnings        []string
	lineNo          int

	// onCharset rep el valor de HEAD.CHAR; si retorna cert cal tornar a començar.
	onCharset func(string) bool
	restart   bool
}

func newParseState(db *Database) *ParseState {
	db.loading = true
	return &ParseState{
		db:           db,
		removedNotes: map[string]bool{},
	}
}

func (ps *ParseState) Database() *Database { return ps.db }

func (ps *ParseState) Warnings() []string { return ps.warnings }

func (ps *ParseState) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if ps.lineNo > 0 {
		msg = fmt.Sprintf("línia %d: %s", ps.lineNo, msg)
	}
	ps.warnings = append(ps.warnings, msg)
}

func (ps *ParseState) top() *stackEntry {
	if len(ps.records) == 0 {
		return nil
	}
	return &ps.records[len(ps.records)-1]
}

// currentXref és l'identificador del registre de nivell 0 obert.
func (ps *ParseState) currentXref() string {
	if len(ps.records) == 0 {
		return ""
	}
	return ps.records[0].rec.Base().XrefID
}

func (ps *ParseState) push(rec Record, l Line) {
	b := rec.Base()
	b.Level = l.Level
	b.ParsingLevel = l.Level
	b.db = ps.db
	ps.records = append(ps.records, stackEntry{rec: rec, level: l.Level})
}

// parentTag és l'etiqueta de la línia pare de l, segons la pila de germans.
func (ps *ParseState) parentTag(l Line) string {
	for i := len(ps.tags) - 1; i >= 0; i-- {
		if ps.tags[i].level < l.Level {
			return ps.tags[i].tag
		}
	}
	return ""
}

func (ps *ParseState) addRef(xref, tag string, owner *RecordBase) {
	if xref == "" {
		return
	}
	ps.missing = append(ps.missing, pendingRef{
		xref:  xref,
		tag:   tag,
		from:  ps.currentXref(),
		line:  ps.lineNo,
		owner: owner,
	})
}

// process tracta una línia ja partida.
func (ps *ParseState) process(l Line) {
	for len(ps.records) > 0 && l.Level <= ps.top().level {
		ps.pop()
	}
	for len(ps.tags) > 0 && ps.tags[len(ps.tags)-1].level >= l.Level {
		ps.tags = ps.tags[:len(ps.tags)-1]
	}
	l.Tag = aliasTag(l.Tag)

	if l.Level == 0 || len(ps.records) == 0 {
		ps.startTopLevel(l)
	} else if !ps.dispatch(l) {
		if l.XrefID != "" && isTopLevelTag(l.Tag) {
			for len(ps.records) > 0 {
				ps.pop()
			}
			ps.startTopLevel(l)
		} else {
			ps.addCustom(l)
		}
	}
	ps.tags = append(ps.tags, tagEntry{tag: l.Tag, level: l.Level})
}

// dispatch passa la línia al gestor del registre obert. Retorna fals si cap
// taula no coneix l'etiqueta.
func (ps *ParseState) dispatch(l Line) bool {
	top := ps.top()
	parent := ""
	if l.Level > top.level+1 {
		parent = ps.parentTag(l)
	}
	var handled bool
	switch r := top.rec.(type) {
	case *HeaderRecord:
		handled = headerTags.dispatch(ps, r, parent, l)
	case *IndividualRecord:
		handled = individualTags.dispatch(ps, r, parent, l)
	case *FamilyRecord:
		handled = familyTags.dispatch(ps, r, parent, l)
	case *SourceRecord:
		handled = sourceTags.dispatch(ps, r, parent, l)
	case *RepositoryRecord:
		handled = repositoryTags.dispatch(ps, r, parent, l)
	case *SubmitterRecord:
		handled = submitterTags.dispatch(ps, r, parent, l)
	case *SubmissionRecord:
		handled = submissionTags.dispatch(ps, r, parent, l)
	case *MultimediaRecord:
		handled = multimediaTags.dispatch(ps, r, parent, l)
	case *NoteRecord:
		handled = noteTags.dispatch(ps, r, parent, l)
	case *IndividualEvent:
		handled = individualEventFieldTags.dispatch(ps, r, parent, l) ||
			eventTags.dispatch(ps, &r.EventRecord, parent, l)
	case *FamilyEvent:
		handled = familyEventFieldTags.dispatch(ps, r, parent, l) ||
			eventTags.dispatch(ps, &r.EventRecord, parent, l)
	case *NameRecord:
		handled = nameTags.dispatch(ps, r, parent, l)
	case *FamilyLink:
		handled = familyLinkTags.dispatch(ps, r, parent, l)
	case *Association:
		handled = associationTags.dispatch(ps, r, parent, l)
	case *SourceCitation:
		handled = citationTags.dispatch(ps, r, parent, l)
	case *RepositoryCitation:
		handled = repoCitationTags.dispatch(ps, r, parent, l)
	case *DateRecord:
		handled = dateTags.dispatch(ps, r, parent, l)
	case *ChangeDate:
		handled = changeDateTags.dispatch(ps, r, parent, l)
	case *PlaceRecord:
		handled = placeTags.dispatch(ps, r, parent, l)
	case *Address:
		handled = addressTags.dispatch(ps, r, parent, l)
	case *CustomRecord:
		ps.dispatchCustom(r, l)
		return true
	}
	if !handled {
		handled = commonTags.dispatch(ps, top.rec.Base(), parent, l)
	}
	return handled
}

// startTopLevel obre un registre de nivell 0. Tret del HEAD, cal xref.
func (ps *ParseState) startTopLevel(l Line) {
	if l.Level != 0 {
		ps.warnf("etiqueta %s de nivell %d sense registre pare", l.Tag, l.Level)
	}
	var rec Record
	switch l.Tag {
	case "HEAD":
		ps.pushTop(&HeaderRecord{}, l)
		return
	case "TRLR":
		return
	case "INDI":
		rec = &IndividualRecord{}
	case "FAM":
		rec = &FamilyRecord{}
	case "SOUR":
		rec = &SourceRecord{}
	case "REPO":
		rec = &RepositoryRecord{}
	case "SUBM":
		rec = &SubmitterRecord{}
	case "SUBN":
		rec = &SubmissionRecord{}
	case "OBJE":
		rec = &MultimediaRecord{}
	case "NOTE":
		n := &NoteRecord{}
		if l.ValueKind == ValueData {
			n.text.WriteString(l.Value)
		}
		rec = n
	default:
		if l.XrefID == "" {
			ps.warnf("etiqueta desconeguda %s sense identificador", l.Tag)
			return
		}
		rec = &CustomRecord{Tag: l.Tag, Value: l.Value, IsPointer: l.IsPointer()}
	}
	if l.XrefID == "" {
		ps.warnf("registre %s sense identificador, descartat", l.Tag)
		return
	}
	rec.Base().XrefID = l.XrefID
	ps.pushTop(rec, l)
}

func (ps *ParseState) pushTop(rec Record, l Line) {
	ps.push(rec, l)
	ps.top().topLevel = true
}

// pop tanca el registre del cim de la pila.
func (ps *ParseState) pop() {
	e := ps.records[len(ps.records)-1]
	ps.records = ps.records[:len(ps.records)-1]

	switch r := e.rec.(type) {
	case *NoteRecord:
		r.Text = r.text.String()
		r.text.Reset()
		if strings.TrimSpace(r.Text) == "" {
			if r.XrefID != "" {
				ps.removedNotes[r.XrefID] = true
			}
			return
		}
		if r.owner != nil {
			r.owner.NoteTexts = append(r.owner.NoteTexts, r.Text)
		}
	case *SourceRecord:
		r.flush()
	case *SourceCitation:
		if r.text.Len() > 0 {
			r.Text = r.text.String()
			r.text.Reset()
		}
	case *IndividualRecord:
		if !r.Address.IsEmpty() {
			ev := &IndividualEvent{EventRecord: EventRecord{
				EventType: EventResidence,
				Address:   r.Address,
				OwnerXref: r.XrefID,
			}}
			ev.Level = r.Level + 1
			ev.db = ps.db
			r.Events = append(r.Events, ev)
			r.Address = nil
		}
	case *NameRecord:
		r.fillPieces()
	}

	if !e.topLevel {
		return
	}
	if h, ok := e.rec.(*HeaderRecord); ok {
		if ps.db.Header == nil {
			ps.db.Header = h
			h.db = ps.db
		} else {
			ps.warnf("capçalera repetida, s'ignora")
		}
		return
	}
	if err := ps.db.Add(e.rec.Base().XrefID, e.rec); err != nil {
		if errors.Is(err, ErrDuplicateXref) {
			ps.warnf("identificador duplicat @%s@, s'ignora el segon registre", e.rec.Base().XrefID)
			return
		}
		ps.warnf("%v", err)
	}
}

// finish tanca tots els registres oberts i resol les referències.
func (ps *ParseState) finish() {
	for len(ps.records) > 0 {
		ps.pop()
	}
	ps.tags = nil
	ps.lineNo = 0
	ps.link()
	ps.db.loading = false
}

// addCustom guarda una etiqueta desconeguda penjada del registre obert.
func (ps *ParseState) addCustom(l Line) {
	c := &CustomRecord{Tag: l.Tag, Value: l.Value, IsPointer: l.IsPointer()}
	c.XrefID = l.XrefID
	b := ps.top().rec.Base()
	b.Custom = append(b.Custom, c)
	ps.push(c, l)
}

func (ps *ParseState) dispatchCustom(c *CustomRecord, l Line) {
	switch l.Tag {
	case "CONC":
		c.Value += l.Value
		return
	case "CONT":
		c.Value += "\n" + l.Value
		return
	}
	child := &CustomRecord{Tag: l.Tag, Value: l.Value, IsPointer: l.IsPointer()}
	child.XrefID = l.XrefID
	c.Children = append(c.Children, child)
	ps.push(child, l)
}

// newDate interpreta el valor d'un DATE i avisa dels calendaris sense suport.
func (ps *ParseState) newDate(l Line) *DateRecord {
	d := newDateRecord(l.Value)
	if err := d.Date.Err(); errors.Is(err, gedcomdate.ErrNotSupported) {
		ps.warnf("data %q: %v", l.Value, err)
	}
	ps.push(d, l)
	return d
}

var topLevelTags = map[string]bool{
	"HEAD": true, "TRLR": true, "INDI": true, "FAM": true, "SOUR": true, "REPO": true,
	"SUBM": true, "SUBN": true, "OBJE": true, "NOTE": true,
}

func isTopLevelTag(tag string) bool { return topLevelTags[tag] }

var tagAliases = map[string]string{
	"_AKA":   "AKA",
	"_DEG":   "GRAD",
	"_EMAIL": "EMAIL",
	"EMAL":   "EMAIL",
	"_URL":   "WWW",
	"URL":    "WWW",
}

func aliasTag(tag string) string {
	if a, ok := tagAliases[tag]; ok {
		return a
	}
	return tag
}
