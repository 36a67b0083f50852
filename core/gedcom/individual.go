package gedcom

import "strings"

type Sex int

const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
	SexUndetermined
)

func parseSex(v string) Sex {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M", "MALE":
		return SexMale
	case "F", "FEMALE":
		return SexFemale
	case "U", "":
		return SexUnknown
	default:
		return SexUndetermined
	}
}

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "M"
	case SexFemale:
		return "F"
	case SexUndetermined:
		return "X"
	default:
		return "U"
	}
}

// PedigreeLinkageType és la naturalesa del vincle entre fill i pares.
type PedigreeLinkageType int

const (
	PedigreeUnknown PedigreeLinkageType = iota
	PedigreeBirth
	PedigreeAdopted
	PedigreeFoster
	PedigreeSealing
	PedigreeStep
)

func parsePedigree(v string) PedigreeLinkageType {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "birth", "natural", "biological":
		return PedigreeBirth
	case "adopted", "adoption":
		return PedigreeAdopted
	case "foster":
		return PedigreeFoster
	case "sealing":
		return PedigreeSealing
	case "step", "stepchild":
		return PedigreeStep
	}
	return PedigreeUnknown
}

func (p PedigreeLinkageType) String() string {
	switch p {
	case PedigreeBirth:
		return "birth"
	case PedigreeAdopted:
		return "adopted"
	case PedigreeFoster:
		return "foster"
	case PedigreeSealing:
		return "sealing"
	case PedigreeStep:
		return "step"
	}
	return "unknown"
}

// NameRecord és un NAME. Value conserva el text original amb el cognom entre barres.
type NameRecord struct {
	RecordBase
	Value         string
	Type          string
	Prefix        string
	Given         string
	Nickname      string
	SurnamePrefix string
	Surname       string
	Suffix        string
}

func (*NameRecord) Kind() RecordKind { return KindName }

// fillPieces omple nom i cognom a partir del valor si no venien com a subetiquetes.
func (n *NameRecord) fillPieces() {
	if n.Given != "" || n.Surname != "" {
		return
	}
	given, surname, suffix := splitName(n.Value)
	n.Given, n.Surname = given, surname
	if n.Suffix == "" {
		n.Suffix = suffix
	}
}

// FullName retorna "Nom Cognom" sense barres.
func (n *NameRecord) FullName() string {
	if n == nil {
		return ""
	}
	given, surname := n.Given, n.Surname
	if given == "" && surname == "" {
		given, surname, _ = splitName(n.Value)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(given+" "+surname), " "))
}

// splitName separa "Joan /Puig/ Jr." en nom, cognom i sufix.
func splitName(value string) (string, string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", ""
	}
	if !strings.Contains(value, "/") {
		return value, "", ""
	}
	parts := strings.SplitN(value, "/", 3)
	given := strings.TrimSpace(parts[0])
	surname := ""
	if len(parts) > 1 {
		surname = strings.TrimSpace(parts[1])
	}
	suffix := ""
	if len(parts) > 2 {
		suffix = strings.TrimSpace(parts[2])
	}
	return given, surname, suffix
}

// FamilyLink és un FAMC o FAMS vist des de l'individu.
type FamilyLink struct {
	RecordBase
	Family         string
	Individual     string
	Pedigree       PedigreeLinkageType
	FatherPedigree PedigreeLinkageType
	MotherPedigree PedigreeLinkageType
	Status         string
	Preferred      bool
}

func (*FamilyLink) Kind() RecordKind { return KindFamilyLink }

// Association és un ASSO.
type Association struct {
	RecordBase
	Individual string
	Relation   string
}

func (*Association) Kind() RecordKind { return KindAssociation }

type IndividualRecord struct {
	RecordBase
	Names                     []*NameRecord
	Sex                       Sex
	Events                    []*IndividualEvent
	ChildIn                   []*FamilyLink
	SpouseIn                  []*FamilyLink
	Associations              []*Association
	Aliases                   []string
	Submitters                []string
	AncestorInterest          []string
	DescendantInterest        []string
	PermanentRecordFileNumber string
	AncestralFileNumber       string

	// Address no és estàndard; en tancar el registre es converteix en un RESI.
	Address *Address
}

func (*IndividualRecord) Kind() RecordKind { return KindIndividual }

// Name retorna el primer nom, o nil.
func (r *IndividualRecord) Name() *NameRecord {
	if len(r.Names) == 0 {
		return nil
	}
	return r.Names[0]
}

func (r *IndividualRecord) SetSex(s Sex) {
	r.Sex = s
	r.Changed()
}

// FindEvents retorna els esdeveniments d'un tipus en ordre d'aparició.
func (r *IndividualRecord) FindEvents(t EventType) []*IndividualEvent {
	var out []*IndividualEvent
	for _, ev := range r.Events {
		if ev.EventType == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *IndividualRecord) firstEvent(t EventType) *IndividualEvent {
	for _, ev := range r.Events {
		if ev.EventType == t {
			return ev
		}
	}
	return nil
}

func (r *IndividualRecord) Birth() *IndividualEvent { return r.firstEvent(EventBirth) }
func (r *IndividualRecord) Death() *IndividualEvent { return r.firstEvent(EventDeath) }

func (r *IndividualRecord) ChildInFamily(family string) *FamilyLink {
	for _, l := range r.ChildIn {
		if l.Family == family {
			return l
		}
	}
	return nil
}

func (r *IndividualRecord) SpouseInFamily(family string) *FamilyLink {
	for _, l := range r.SpouseIn {
		if l.Family == family {
			return l
		}
	}
	return nil
}
