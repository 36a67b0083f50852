package gedcom

var headerTags = func() handlerTable[*HeaderRecord] {
	t := handlerTable[*HeaderRecord]{
		key("SOUR"):         func(ps *ParseState, h *HeaderRecord, l Line) { h.ApprovedSystemID = l.Value },
		sub("SOUR", "VERS"): func(ps *ParseState, h *HeaderRecord, l Line) { h.ApplicationVersion = l.Value },
		sub("SOUR", "NAME"): func(ps *ParseState, h *HeaderRecord, l Line) { h.ApplicationName = l.Value },
		sub("SOUR", "CORP"): func(ps *ParseState, h *HeaderRecord, l Line) { h.Corporation = l.Value },
		sub("CORP", "ADDR"): func(ps *ParseState, h *HeaderRecord, l Line) { ps.openAddress(&h.CorporationAddress, l) },
		sub("SOUR", "DATA"): func(ps *ParseState, h *HeaderRecord, l Line) { h.SourceData = l.Value },
		key("DEST"):         func(ps *ParseState, h *HeaderRecord, l Line) { h.Destination = l.Value },
		key("DATE"):         func(ps *ParseState, h *HeaderRecord, l Line) { h.TransmissionDate = ps.newDate(l) },
		key("SUBM"): func(ps *ParseState, h *HeaderRecord, l Line) {
			h.SubmitterXref = l.Value
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("SUBN"): func(ps *ParseState, h *HeaderRecord, l Line) {
			h.SubmissionXref = l.Value
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("FILE"):         func(ps *ParseState, h *HeaderRecord, l Line) { h.Filename = l.Value },
		key("COPR"):         func(ps *ParseState, h *HeaderRecord, l Line) { h.Copyright = l.Value },
		key("GEDC"):         func(ps *ParseState, h *HeaderRecord, l Line) {},
		sub("GEDC", "VERS"): func(ps *ParseState, h *HeaderRecord, l Line) { h.GedcomVersion = l.Value },
		sub("GEDC", "FORM"): func(ps *ParseState, h *HeaderRecord, l Line) { h.GedcomForm = l.Value },
		key("CHAR"): func(ps *ParseState, h *HeaderRecord, l Line) {
			h.CharacterSet = l.Value
			if ps.onCharset != nil && ps.onCharset(l.Value) {
				ps.restart = true
			}
		},
		sub("CHAR", "VERS"): func(ps *ParseState, h *HeaderRecord, l Line) { h.CharacterSetVersion = l.Value },
		key("LANG"):         func(ps *ParseState, h *HeaderRecord, l Line) { h.Language = l.Value },
		key("PLAC"):         func(ps *ParseState, h *HeaderRecord, l Line) {},
		sub("PLAC", "FORM"): func(ps *ParseState, h *HeaderRecord, l Line) { h.PlaceForm = l.Value },
	}
	contactTags(t, "CORP", func(h *HeaderRecord) **Address { return &h.CorporationAddress })
	return t
}()

// customFacts són etiquetes pròpies d'alguns programes que es desen com a fets.
var customFacts = map[string]struct {
	eventType      EventType
	classification string
}{
	"_MILT": {EventGeneric, "Military Service"},
	"_MDCL": {EventFact, "Medical"},
	"_HEIG": {EventFact, "Height"},
	"_WEIG": {EventFact, "Weight"},
}

var individualTags = func() handlerTable[*IndividualRecord] {
	t := handlerTable[*IndividualRecord]{
		key("NAME"): func(ps *ParseState, r *IndividualRecord, l Line) {
			n := &NameRecord{Value: l.Value}
			r.Names = append(r.Names, n)
			ps.push(n, l)
		},
		key("AKA"): func(ps *ParseState, r *IndividualRecord, l Line) {
			n := &NameRecord{Value: l.Value, Type: "aka"}
			r.Names = append(r.Names, n)
			ps.push(n, l)
		},
		key("SEX"): func(ps *ParseState, r *IndividualRecord, l Line) { r.Sex = parseSex(l.Value) },
		key("FAMC"): func(ps *ParseState, r *IndividualRecord, l Line) {
			f := &FamilyLink{Family: l.Value, Individual: r.XrefID}
			r.ChildIn = append(r.ChildIn, f)
			ps.addRef(l.Value, l.Tag, nil)
			ps.push(f, l)
		},
		key("FAMS"): func(ps *ParseState, r *IndividualRecord, l Line) {
			f := &FamilyLink{Family: l.Value, Individual: r.XrefID}
			r.SpouseIn = append(r.SpouseIn, f)
			ps.addRef(l.Value, l.Tag, nil)
			ps.push(f, l)
		},
		key("ASSO"): func(ps *ParseState, r *IndividualRecord, l Line) {
			a := &Association{Individual: l.Value}
			r.Associations = append(r.Associations, a)
			ps.addRef(l.Value, l.Tag, nil)
			ps.push(a, l)
		},
		key("ALIA"): func(ps *ParseState, r *IndividualRecord, l Line) {
			if !l.IsPointer() {
				r.Names = append(r.Names, &NameRecord{Value: l.Value, Type: "aka"})
				return
			}
			r.Aliases = append(r.Aliases, l.Value)
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("SUBM"): func(ps *ParseState, r *IndividualRecord, l Line) {
			r.Submitters = append(r.Submitters, l.Value)
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("ANCI"): func(ps *ParseState, r *IndividualRecord, l Line) {
			r.AncestorInterest = append(r.AncestorInterest, l.Value)
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("DESI"): func(ps *ParseState, r *IndividualRecord, l Line) {
			r.DescendantInterest = append(r.DescendantInterest, l.Value)
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("RFN"):  func(ps *ParseState, r *IndividualRecord, l Line) { r.PermanentRecordFileNumber = l.Value },
		key("AFN"):  func(ps *ParseState, r *IndividualRecord, l Line) { r.AncestralFileNumber = l.Value },
		key("ADDR"): func(ps *ParseState, r *IndividualRecord, l Line) { ps.openAddress(&r.Address, l) },
	}
	contactTags(t, "", func(r *IndividualRecord) **Address { return &r.Address })

	for tag, et := range individualEventTags {
		t[key(tag)] = func(ps *ParseState, r *IndividualRecord, l Line) {
			ps.openIndividualEvent(r, et, "", l)
		}
	}
	for tag, cf := range customFacts {
		t[key(tag)] = func(ps *ParseState, r *IndividualRecord, l Line) {
			ps.openIndividualEvent(r, cf.eventType, cf.classification, l)
		}
	}
	return t
}()

func (ps *ParseState) openIndividualEvent(r *IndividualRecord, et EventType, classification string, l Line) {
	ev := &IndividualEvent{EventRecord: EventRecord{
		EventType:      et,
		Value:          l.Value,
		Classification: classification,
		OwnerXref:      r.XrefID,
	}}
	r.Events = append(r.Events, ev)
	ps.push(ev, l)
}

var familyTags = func() handlerTable[*FamilyRecord] {
	t := handlerTable[*FamilyRecord]{
		key("HUSB"): func(ps *ParseState, f *FamilyRecord, l Line) {
			f.Husband = l.Value
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("WIFE"): func(ps *ParseState, f *FamilyRecord, l Line) {
			f.Wife = l.Value
			ps.addRef(l.Value, l.Tag, nil)
		},
		key("CHIL"): func(ps *ParseState, f *FamilyRecord, l Line) {
			if !f.HasChild(l.Value) {
				f.Children = append(f.Children, l.Value)
			}
			ps.addRef(l.Value, l.Tag, nil)
		},
		sub("CHIL", "_FREL"): func(ps *ParseState, f *FamilyRecord, l Line) {
			if n := len(f.Children); n > 0 {
				f.childPedigree(f.Children[n-1]).Father = parsePedigree(l.Value)
			}
		},
		sub("CHIL", "_MREL"): func(ps *ParseState, f *FamilyRecord, l Line) {
			if n := len(f.Children); n > 0 {
				f.childPedigree(f.Children[n-1]).Mother = parsePedigree(l.Value)
			}
		},
		key("NCHI"): func(ps *ParseState, f *FamilyRecord, l Line) { f.NumberOfChildren = l.Value },
		key("SUBM"): func(ps *ParseState, f *FamilyRecord, l Line) {
			f.Submitters = append(f.Submitters, l.Value)
			ps.addRef(l.Value, l.Tag, nil)
		},
	}
	for tag, et := range familyEventTags {
		t[key(tag)] = func(ps *ParseState, f *FamilyRecord, l Line) {
			ev := &FamilyEvent{EventRecord: EventRecord{EventType: et, Value: l.Value, OwnerXref: f.XrefID}}
			f.Events = append(f.Events, ev)
			ps.push(ev, l)
		}
	}
	return t
}()

// eventTags són els camps comuns de qualsevol esdeveniment.
var eventTags = func() handlerTable[*EventRecord] {
	t := handlerTable[*EventRecord]{
		key("TYPE"): func(ps *ParseState, e *EventRecord, l Line) { e.Classification = l.Value },
		key("DATE"): func(ps *ParseState, e *EventRecord, l Line) { e.Date = ps.newDate(l) },
		key("PLAC"): func(ps *ParseState, e *EventRecord, l Line) { e.Place = ps.newPlace(l) },
		key("ADDR"): func(ps *ParseState, e *EventRecord, l Line) { ps.openAddress(&e.Address, l) },
		key("AGE"):  func(ps *ParseState, e *EventRecord, l Line) { e.Age = l.Value },
		key("AGNC"): func(ps *ParseState, e *EventRecord, l Line) { e.ResponsibleAgency = l.Value },
		key("RELI"): func(ps *ParseState, e *EventRecord, l Line) { e.ReligiousAffiliation = l.Value },
		key("CAUS"): func(ps *ParseState, e *EventRecord, l Line) { e.Cause = l.Value },
		key("CONC"): func(ps *ParseState, e *EventRecord, l Line) { appendConc(&e.Value, l) },
		key("CONT"): func(ps *ParseState, e *EventRecord, l Line) { appendCont(&e.Value, l) },
	}
	contactTags(t, "", func(e *EventRecord) **Address { return &e.Address })
	return t
}()

var individualEventFieldTags = handlerTable[*IndividualEvent]{
	key("FAMC"): func(ps *ParseState, e *IndividualEvent, l Line) {
		e.FamcXref = l.Value
		ps.addRef(l.Value, l.Tag, nil)
	},
	sub("FAMC", "ADOP"): func(ps *ParseState, e *IndividualEvent, l Line) {
		e.AdoptedBy = parseAdoptedBy(l.Value)
	},
}

var familyEventFieldTags = handlerTable[*FamilyEvent]{
	key("HUSB"):        func(ps *ParseState, e *FamilyEvent, l Line) {},
	key("WIFE"):        func(ps *ParseState, e *FamilyEvent, l Line) {},
	sub("HUSB", "AGE"): func(ps *ParseState, e *FamilyEvent, l Line) { e.HusbandAge = l.Value },
	sub("WIFE", "AGE"): func(ps *ParseState, e *FamilyEvent, l Line) { e.WifeAge = l.Value },
}

var sourceTags = func() handlerTable[*SourceRecord] {
	t := handlerTable[*SourceRecord]{
		key("ABBR"): func(ps *ParseState, s *SourceRecord, l Line) { s.FiledBy = l.Value },
		key("DATA"): func(ps *ParseState, s *SourceRecord, l Line) {},
		sub("DATA", "EVEN"): func(ps *ParseState, s *SourceRecord, l Line) {
			s.EventsRecorded = append(s.EventsRecorded, l.Value)
		},
		sub("DATA", "AGNC"): func(ps *ParseState, s *SourceRecord, l Line) { s.Agency = l.Value },
		key("REPO"): func(ps *ParseState, s *SourceRecord, l Line) {
			c := &RepositoryCitation{OwnerXref: s.XrefID}
			if l.IsPointer() {
				c.RepositoryXref = l.Value
			}
			s.RepositoryCitations = append(s.RepositoryCitations, c)
			ps.repoCitations = append(ps.repoCitations, c)
			ps.push(c, l)
		},
	}
	for _, tag := range []string{"TITL", "AUTH", "PUBL", "TEXT"} {
		t[key(tag)] = func(ps *ParseState, s *SourceRecord, l Line) {
			b := s.builderFor(tag)
			b.Reset()
			b.WriteString(l.Value)
		}
		t[sub(tag, "CONC")] = func(ps *ParseState, s *SourceRecord, l Line) { writeCont(s.builderFor(tag), l) }
		t[sub(tag, "CONT")] = func(ps *ParseState, s *SourceRecord, l Line) { writeCont(s.builderFor(tag), l) }
	}
	return t
}()

var citationTags = handlerTable[*SourceCitation]{
	key("PAGE"):         func(ps *ParseState, c *SourceCitation, l Line) { c.Page = l.Value },
	sub("PAGE", "CONC"): func(ps *ParseState, c *SourceCitation, l Line) { appendConc(&c.Page, l) },
	key("EVEN"):         func(ps *ParseState, c *SourceCitation, l Line) { c.EventCited = l.Value },
	sub("EVEN", "ROLE"): func(ps *ParseState, c *SourceCitation, l Line) { c.Role = l.Value },
	key("QUAY"):         func(ps *ParseState, c *SourceCitation, l Line) { c.Certainty = l.Value },
	key("DATA"):         func(ps *ParseState, c *SourceCitation, l Line) {},
	sub("DATA", "DATE"): func(ps *ParseState, c *SourceCitation, l Line) { c.DataDate = ps.newDate(l) },
	sub("DATA", "TEXT"): func(ps *ParseState, c *SourceCitation, l Line) { writeCont(&c.text, l) },
	key("TEXT"):         func(ps *ParseState, c *SourceCitation, l Line) { writeCont(&c.text, l) },
	sub("TEXT", "CONC"): func(ps *ParseState, c *SourceCitation, l Line) { writeCont(&c.text, l) },
	sub("TEXT", "CONT"): func(ps *ParseState, c *SourceCitation, l Line) { writeCont(&c.text, l) },
	key("CONC"):         func(ps *ParseState, c *SourceCitation, l Line) { appendConc(&c.Description, l) },
	key("CONT"):         func(ps *ParseState, c *SourceCitation, l Line) { appendCont(&c.Description, l) },
}

var repoCitationTags = handlerTable[*RepositoryCitation]{
	key("CALN"): func(ps *ParseState, c *RepositoryCitation, l Line) {
		c.CallNumbers = append(c.CallNumbers, l.Value)
	},
	sub("CALN", "MEDI"): func(ps *ParseState, c *RepositoryCitation, l Line) {
		c.MediaTypes = append(c.MediaTypes, l.Value)
	},
}
