package gedcom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Database és el graf de registres d'un fitxer. Els registres de nivell 0 es
// guarden per xref; el HEAD és a part.
type Database struct {
	Header *HeaderRecord

	// OnChange rep cada registre modificat un cop acabada la lectura.
	OnChange func(*RecordBase)

	records map[string]Record
	order   []string
	places  map[string]*placeEntry
	loading bool
}

type placeEntry struct {
	name  string
	count int
}

func NewDatabase() *Database {
	return &Database{
		records: map[string]Record{},
		places:  map[string]*placeEntry{},
	}
}

// Add insereix un registre de nivell 0. El HEAD no passa per aquí.
func (d *Database) Add(xref string, rec Record) error {
	xref = trimXref(xref)
	if xref == "" {
		return errors.New("registre sense identificador")
	}
	if _, ok := d.records[xref]; ok {
		return errors.Wrapf(ErrDuplicateXref, "@%s@", xref)
	}
	b := rec.Base()
	b.XrefID = xref
	b.db = d
	d.records[xref] = rec
	d.order = append(d.order, xref)
	return nil
}

func (d *Database) Get(xref string) (Record, bool) {
	rec, ok := d.records[trimXref(xref)]
	return rec, ok
}

// Remove treu el registre i retorna si existia.
func (d *Database) Remove(xref string) bool {
	xref = trimXref(xref)
	if _, ok := d.records[xref]; !ok {
		return false
	}
	delete(d.records, xref)
	for i, x := range d.order {
		if x == xref {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

func (d *Database) Len() int { return len(d.records) }

func (d *Database) Individual(xref string) *IndividualRecord {
	rec, _ := d.Get(xref)
	r, _ := rec.(*IndividualRecord)
	return r
}

func (d *Database) Family(xref string) *FamilyRecord {
	rec, _ := d.Get(xref)
	r, _ := rec.(*FamilyRecord)
	return r
}

func (d *Database) Source(xref string) *SourceRecord {
	rec, _ := d.Get(xref)
	r, _ := rec.(*SourceRecord)
	return r
}

func (d *Database) Repository(xref string) *RepositoryRecord {
	rec, _ := d.Get(xref)
	r, _ := rec.(*RepositoryRecord)
	return r
}

func (d *Database) Note(xref string) *NoteRecord {
	rec, _ := d.Get(xref)
	r, _ := rec.(*NoteRecord)
	return r
}

// Records retorna els registres en ordre d'inserció.
func (d *Database) Records() []Record {
	out := make([]Record, 0, len(d.order))
	for _, x := range d.order {
		out = append(out, d.records[x])
	}
	return out
}

func (d *Database) Individuals() []*IndividualRecord {
	var out []*IndividualRecord
	for _, x := range d.order {
		if r, ok := d.records[x].(*IndividualRecord); ok {
			out = append(out, r)
		}
	}
	return out
}

func (d *Database) Families() []*FamilyRecord {
	var out []*FamilyRecord
	for _, x := range d.order {
		if r, ok := d.records[x].(*FamilyRecord); ok {
			out = append(out, r)
		}
	}
	return out
}

func (d *Database) Sources() []*SourceRecord {
	var out []*SourceRecord
	for _, x := range d.order {
		if r, ok := d.records[x].(*SourceRecord); ok {
			out = append(out, r)
		}
	}
	return out
}

// GenerateXref retorna el primer identificador lliure amb el prefix donat (I1, F2...).
func (d *Database) GenerateXref(prefix string) string {
	for i := len(d.records) + 1; ; i++ {
		x := fmt.Sprintf("%s%d", prefix, i)
		if _, ok := d.records[x]; !ok {
			return x
		}
	}
}

// InternPlace comparteix el text dels llocs i en compta els usos. La clau és
// el text exacte, sense plegar majúscules.
func (d *Database) InternPlace(name string) string {
	if strings.TrimSpace(name) == "" {
		return name
	}
	if p, ok := d.places[name]; ok {
		p.count++
		return p.name
	}
	d.places[name] = &placeEntry{name: name, count: 1}
	return name
}

// PlaceUsage és el nombre d'usos per lloc, ordenat per nom.
type PlaceUsage struct {
	Name  string
	Count int
}

func (d *Database) PlaceUsage() []PlaceUsage {
	out := make([]PlaceUsage, 0, len(d.places))
	for _, p := range d.places {
		out = append(out, PlaceUsage{Name: p.name, Count: p.count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// trimXref treu les arroves d'un identificador ("@I1@" -> "I1").
func trimXref(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "@")
	v = strings.TrimSuffix(v, "@")
	return strings.TrimSpace(v)
}
