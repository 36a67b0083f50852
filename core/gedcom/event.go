package gedcom

import "strings"

// EventType és el tipus d'esdeveniment o atribut.
type EventType int

const (
	EventGeneric EventType = iota
	EventBirth
	EventChristening
	EventDeath
	EventBurial
	EventCremation
	EventAdoption
	EventBaptism
	EventBarMitzvah
	EventBasMitzvah
	EventBlessing
	EventAdultChristening
	EventConfirmation
	EventFirstCommunion
	EventOrdination
	EventNaturalization
	EventEmigration
	EventImmigration
	EventCensus
	EventProbate
	EventWill
	EventGraduation
	EventRetirement

	EventCaste
	EventPhysicalDescription
	EventEducation
	EventIdentNumber
	EventNationality
	EventChildrenCount
	EventMarriageCount
	EventOccupation
	EventProperty
	EventReligion
	EventResidence
	EventSocialSecurityNumber
	EventTitle
	EventFact

	EventAnnulment
	EventDivorce
	EventDivorceFiled
	EventEngagement
	EventMarriageBann
	EventMarriageContract
	EventMarriage
	EventMarriageLicense
	EventMarriageSettlement
)

type eventDef struct {
	tag        string
	attribute  bool
	individual bool
	family     bool
}

var eventDefs = map[EventType]eventDef{
	EventGeneric:          {tag: "EVEN", individual: true, family: true},
	EventBirth:            {tag: "BIRT", individual: true},
	EventChristening:      {tag: "CHR", individual: true},
	EventDeath:            {tag: "DEAT", individual: true},
	EventBurial:           {tag: "BURI", individual: true},
	EventCremation:        {tag: "CREM", individual: true},
	EventAdoption:         {tag: "ADOP", individual: true},
	EventBaptism:          {tag: "BAPM", individual: true},
	EventBarMitzvah:       {tag: "BARM", individual: true},
	EventBasMitzvah:       {tag: "BASM", individual: true},
	EventBlessing:         {tag: "BLES", individual: true},
	EventAdultChristening: {tag: "CHRA", individual: true},
	EventConfirmation:     {tag: "CONF", individual: true},
	EventFirstCommunion:   {tag: "FCOM", individual: true},
	EventOrdination:       {tag: "ORDN", individual: true},
	EventNaturalization:   {tag: "NATU", individual: true},
	EventEmigration:       {tag: "EMIG", individual: true},
	EventImmigration:      {tag: "IMMI", individual: true},
	EventCensus:           {tag: "CENS", individual: true, family: true},
	EventProbate:          {tag: "PROB", individual: true},
	EventWill:             {tag: "WILL", individual: true},
	EventGraduation:       {tag: "GRAD", individual: true},
	EventRetirement:       {tag: "RETI", individual: true},

	EventCaste:                {tag: "CAST", attribute: true, individual: true},
	EventPhysicalDescription:  {tag: "DSCR", attribute: true, individual: true},
	EventEducation:            {tag: "EDUC", attribute: true, individual: true},
	EventIdentNumber:          {tag: "IDNO", attribute: true, individual: true},
	EventNationality:          {tag: "NATI", attribute: true, individual: true},
	EventChildrenCount:        {tag: "NCHI", attribute: true, individual: true},
	EventMarriageCount:        {tag: "NMR", attribute: true, individual: true},
	EventOccupation:           {tag: "OCCU", attribute: true, individual: true},
	EventProperty:             {tag: "PROP", attribute: true, individual: true},
	EventReligion:             {tag: "RELI", attribute: true, individual: true},
	EventResidence:            {tag: "RESI", attribute: true, individual: true, family: true},
	EventSocialSecurityNumber: {tag: "SSN", attribute: true, individual: true},
	EventTitle:                {tag: "TITL", attribute: true, individual: true},
	EventFact:                 {tag: "FACT", attribute: true, individual: true},

	EventAnnulment:          {tag: "ANUL", family: true},
	EventDivorce:            {tag: "DIV", family: true},
	EventDivorceFiled:       {tag: "DIVF", family: true},
	EventEngagement:         {tag: "ENGA", family: true},
	EventMarriageBann:       {tag: "MARB", family: true},
	EventMarriageContract:   {tag: "MARC", family: true},
	EventMarriage:           {tag: "MARR", family: true},
	EventMarriageLicense:    {tag: "MARL", family: true},
	EventMarriageSettlement: {tag: "MARS", family: true},
}

var individualEventTags, familyEventTags = eventTagIndex()

func eventTagIndex() (map[string]EventType, map[string]EventType) {
	ind, fam := map[string]EventType{}, map[string]EventType{}
	for t, def := range eventDefs {
		if def.individual {
			ind[def.tag] = t
		}
		if def.family {
			fam[def.tag] = t
		}
	}
	return ind, fam
}

func (t EventType) Tag() string { return eventDefs[t].tag }

// IsAttribute és cert pels atributs (OCCU, RESI, FACT...).
func (t EventType) IsAttribute() bool { return eventDefs[t].attribute }

// AdoptionType és el valor de "ADOP" dins d'un esdeveniment d'adopció.
type AdoptionType int

const (
	AdoptedByNone AdoptionType = iota
	AdoptedByHusband
	AdoptedByWife
	AdoptedByBoth
)

func parseAdoptedBy(v string) AdoptionType {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "HUSB", "HUSBAND":
		return AdoptedByHusband
	case "WIFE":
		return AdoptedByWife
	case "BOTH":
		return AdoptedByBoth
	}
	return AdoptedByNone
}

func (a AdoptionType) String() string {
	switch a {
	case AdoptedByHusband:
		return "HUSB"
	case AdoptedByWife:
		return "WIFE"
	case AdoptedByBoth:
		return "BOTH"
	}
	return ""
}

// EventRecord té els camps comuns a tots els esdeveniments.
type EventRecord struct {
	RecordBase
	EventType            EventType
	Value                string
	Classification       string
	Date                 *DateRecord
	Place                *PlaceRecord
	Address              *Address
	Age                  string
	ResponsibleAgency    string
	ReligiousAffiliation string
	Cause                string
	OwnerXref            string
}

func (*EventRecord) Kind() RecordKind { return KindEvent }

// DateText és un accés directe a la data com a text, per als editors.
func (e *EventRecord) DateText() string {
	return e.Date.Text()
}

func (e *EventRecord) SetDateText(raw string) {
	if e.Date == nil {
		e.Date = newDateRecord(raw)
		e.Date.db = e.db
		e.Changed()
		return
	}
	e.Date.SetText(raw)
}

type IndividualEvent struct {
	EventRecord
	FamcXref  string
	AdoptedBy AdoptionType
}

func (*IndividualEvent) Kind() RecordKind { return KindIndividualEvent }

type FamilyEvent struct {
	EventRecord
	HusbandAge string
	WifeAge    string
}

func (*FamilyEvent) Kind() RecordKind { return KindFamilyEvent }
