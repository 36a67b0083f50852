package gedcom

import "strings"

// tagKey identifica una subetiqueta. parent és buit pels fills directes del
// registre obert; si no, és l'etiqueta de la línia pare.
type tagKey struct {
	parent string
	tag    string
}

type handler[T any] func(ps *ParseState, rec T, l Line)

// handlerTable és la taula d'etiquetes que entén un tipus de registre.
type handlerTable[T any] map[tagKey]handler[T]

func (t handlerTable[T]) dispatch(ps *ParseState, rec T, parent string, l Line) bool {
	h, ok := t[tagKey{parent: parent, tag: l.Tag}]
	if !ok {
		return false
	}
	h(ps, rec, l)
	return true
}

func key(tag string) tagKey         { return tagKey{tag: tag} }
func sub(parent, tag string) tagKey { return tagKey{parent: parent, tag: tag} }

func appendConc(s *string, l Line) { *s += l.Value }
func appendCont(s *string, l Line) { *s += "\n" + l.Value }

// writeCont afegeix una línia CONC o CONT a un acumulador.
func writeCont(b *strings.Builder, l Line) {
	if l.Tag == "CONT" {
		b.WriteByte('\n')
	}
	b.WriteString(l.Value)
}

// commonTags són les etiquetes que admet qualsevol registre.
var commonTags = handlerTable[*RecordBase]{
	key("NOTE"): func(ps *ParseState, b *RecordBase, l Line) {
		if l.IsPointer() {
			b.Notes = append(b.Notes, l.Value)
			ps.addRef(l.Value, l.Tag, b)
			return
		}
		n := &NoteRecord{owner: b}
		n.text.WriteString(l.Value)
		ps.push(n, l)
	},
	key("SOUR"): func(ps *ParseState, b *RecordBase, l Line) {
		c := &SourceCitation{OwnerXref: ps.currentXref()}
		if l.IsPointer() {
			c.SourceXref = l.Value
		} else {
			c.Description = l.Value
		}
		b.Citations = append(b.Citations, c)
		ps.sourceCitations = append(ps.sourceCitations, c)
		ps.push(c, l)
	},
	key("OBJE"): func(ps *ParseState, b *RecordBase, l Line) {
		if l.IsPointer() {
			b.Multimedia = append(b.Multimedia, l.Value)
			ps.addRef(l.Value, l.Tag, b)
			return
		}
		m := &MultimediaRecord{}
		b.InlineMultimedia = append(b.InlineMultimedia, m)
		ps.push(m, l)
	},
	key("CHAN"): func(ps *ParseState, b *RecordBase, l Line) {
		c := &ChangeDate{}
		b.ChangeDate = c
		ps.push(c, l)
	},
	key("REFN"): func(ps *ParseState, b *RecordBase, l Line) {
		b.UserReferences = append(b.UserReferences, UserReference{Number: l.Value})
	},
	sub("REFN", "TYPE"): func(ps *ParseState, b *RecordBase, l Line) {
		if n := len(b.UserReferences); n > 0 {
			b.UserReferences[n-1].Type = l.Value
		}
	},
	key("RIN"):  func(ps *ParseState, b *RecordBase, l Line) { b.AutomatedRecordID = l.Value },
	key("RESN"): func(ps *ParseState, b *RecordBase, l Line) { b.RestrictionNotice = l.Value },
	key("_UID"): func(ps *ParseState, b *RecordBase, l Line) { b.UID = l.Value },
	key("UID"):  func(ps *ParseState, b *RecordBase, l Line) { b.UID = l.Value },
}

var noteTags = handlerTable[*NoteRecord]{
	key("CONC"): func(ps *ParseState, n *NoteRecord, l Line) { writeCont(&n.text, l) },
	key("CONT"): func(ps *ParseState, n *NoteRecord, l Line) { writeCont(&n.text, l) },
}

var dateTags = handlerTable[*DateRecord]{
	key("TIME"):   func(ps *ParseState, d *DateRecord, l Line) { d.Date.Time = l.Value },
	key("PHRASE"): func(ps *ParseState, d *DateRecord, l Line) { d.Date.Phrase = l.Value },
}

var changeDateTags = handlerTable[*ChangeDate]{
	key("DATE"): func(ps *ParseState, c *ChangeDate, l Line) { c.Date = ps.newDate(l) },
}

var placeTags = handlerTable[*PlaceRecord]{
	key("FORM"):        func(ps *ParseState, p *PlaceRecord, l Line) { p.Form = l.Value },
	key("MAP"):         func(ps *ParseState, p *PlaceRecord, l Line) {},
	sub("MAP", "LATI"): func(ps *ParseState, p *PlaceRecord, l Line) { p.Latitude = l.Value },
	sub("MAP", "LONG"): func(ps *ParseState, p *PlaceRecord, l Line) { p.Longitude = l.Value },
	key("CONC"):        func(ps *ParseState, p *PlaceRecord, l Line) { appendConc(&p.Name, l) },
}

// newPlace obre un PLAC i en comparteix el nom amb la resta del fitxer.
func (ps *ParseState) newPlace(l Line) *PlaceRecord {
	p := &PlaceRecord{Name: ps.db.InternPlace(l.Value)}
	ps.push(p, l)
	return p
}

var addressTags = handlerTable[*Address]{
	key("CONT"): func(ps *ParseState, a *Address, l Line) { appendCont(&a.AddressLine, l) },
	key("CONC"): func(ps *ParseState, a *Address, l Line) { appendConc(&a.AddressLine, l) },
	key("ADR1"): func(ps *ParseState, a *Address, l Line) { a.Line1 = l.Value },
	key("ADR2"): func(ps *ParseState, a *Address, l Line) { a.Line2 = l.Value },
	key("ADR3"): func(ps *ParseState, a *Address, l Line) { a.Line3 = l.Value },
	key("CITY"): func(ps *ParseState, a *Address, l Line) { a.City = l.Value },
	key("STAE"): func(ps *ParseState, a *Address, l Line) { a.State = l.Value },
	key("POST"): func(ps *ParseState, a *Address, l Line) { a.PostalCode = l.Value },
	key("CTRY"): func(ps *ParseState, a *Address, l Line) { a.Country = l.Value },
}

// openAddress obre un ADDR; si el registre ja en tenia un (per un PHON
// anterior) s'hi afegeix.
func (ps *ParseState) openAddress(dst **Address, l Line) {
	if *dst == nil {
		*dst = &Address{}
	}
	(*dst).AddressLine = l.Value
	ps.push(*dst, l)
}

// contactTags afegeix PHON, EMAIL, FAX i WWW a l'adreça que retorna get.
func contactTags[T any](t handlerTable[T], parent string, get func(T) **Address) {
	add := func(field func(*Address) *[]string) handler[T] {
		return func(ps *ParseState, rec T, l Line) {
			dst := get(rec)
			if *dst == nil {
				*dst = &Address{}
			}
			f := field(*dst)
			*f = append(*f, l.Value)
		}
	}
	t[sub(parent, "PHON")] = add(func(a *Address) *[]string { return &a.Phone })
	t[sub(parent, "EMAIL")] = add(func(a *Address) *[]string { return &a.Email })
	t[sub(parent, "FAX")] = add(func(a *Address) *[]string { return &a.Fax })
	t[sub(parent, "WWW")] = add(func(a *Address) *[]string { return &a.WWW })
}

var multimediaTags = handlerTable[*MultimediaRecord]{
	key("TITL"): func(ps *ParseState, m *MultimediaRecord, l Line) { m.Title = l.Value },
	key("FORM"): func(ps *ParseState, m *MultimediaRecord, l Line) { m.lastFile().Format = l.Value },
	key("FILE"): func(ps *ParseState, m *MultimediaRecord, l Line) {
		m.Files = append(m.Files, &MultimediaFile{Filename: l.Value})
	},
	sub("FILE", "FORM"): func(ps *ParseState, m *MultimediaRecord, l Line) { m.lastFile().Format = l.Value },
	sub("FILE", "TITL"): func(ps *ParseState, m *MultimediaRecord, l Line) { m.lastFile().Title = l.Value },
	sub("FORM", "TYPE"): func(ps *ParseState, m *MultimediaRecord, l Line) { m.lastFile().MediaType = l.Value },
	sub("FORM", "MEDI"): func(ps *ParseState, m *MultimediaRecord, l Line) { m.lastFile().MediaType = l.Value },
}

var submitterTags = func() handlerTable[*SubmitterRecord] {
	t := handlerTable[*SubmitterRecord]{
		key("NAME"): func(ps *ParseState, s *SubmitterRecord, l Line) { s.Name = l.Value },
		key("ADDR"): func(ps *ParseState, s *SubmitterRecord, l Line) { ps.openAddress(&s.Address, l) },
		key("LANG"): func(ps *ParseState, s *SubmitterRecord, l Line) {
			s.LanguagePreferences = append(s.LanguagePreferences, l.Value)
		},
		key("RFN"): func(ps *ParseState, s *SubmitterRecord, l Line) { s.RegisteredRFN = l.Value },
	}
	contactTags(t, "", func(s *SubmitterRecord) **Address { return &s.Address })
	return t
}()

var submissionTags = handlerTable[*SubmissionRecord]{
	key("SUBM"): func(ps *ParseState, s *SubmissionRecord, l Line) {
		s.SubmitterXref = l.Value
		ps.addRef(l.Value, l.Tag, nil)
	},
	key("FAMF"): func(ps *ParseState, s *SubmissionRecord, l Line) { s.FamilyFile = l.Value },
	key("TEMP"): func(ps *ParseState, s *SubmissionRecord, l Line) { s.TempleCode = l.Value },
	key("ANCE"): func(ps *ParseState, s *SubmissionRecord, l Line) { s.AncestorGenerations = l.Value },
	key("DESC"): func(ps *ParseState, s *SubmissionRecord, l Line) { s.DescendantGenerations = l.Value },
	key("ORDI"): func(ps *ParseState, s *SubmissionRecord, l Line) { s.OrdinanceProcessFlag = l.Value },
}

var repositoryTags = func() handlerTable[*RepositoryRecord] {
	t := handlerTable[*RepositoryRecord]{
		key("NAME"): func(ps *ParseState, r *RepositoryRecord, l Line) { r.Name = l.Value },
		key("ADDR"): func(ps *ParseState, r *RepositoryRecord, l Line) { ps.openAddress(&r.Address, l) },
	}
	contactTags(t, "", func(r *RepositoryRecord) **Address { return &r.Address })
	return t
}()

var nameTags = handlerTable[*NameRecord]{
	key("TYPE"): func(ps *ParseState, n *NameRecord, l Line) { n.Type = l.Value },
	key("NPFX"): func(ps *ParseState, n *NameRecord, l Line) { n.Prefix = l.Value },
	key("GIVN"): func(ps *ParseState, n *NameRecord, l Line) { n.Given = l.Value },
	key("NICK"): func(ps *ParseState, n *NameRecord, l Line) { n.Nickname = l.Value },
	key("SPFX"): func(ps *ParseState, n *NameRecord, l Line) { n.SurnamePrefix = l.Value },
	key("SURN"): func(ps *ParseState, n *NameRecord, l Line) { n.Surname = l.Value },
	key("NSFX"): func(ps *ParseState, n *NameRecord, l Line) { n.Suffix = l.Value },
}

var familyLinkTags = handlerTable[*FamilyLink]{
	key("PEDI"): func(ps *ParseState, f *FamilyLink, l Line) { f.Pedigree = parsePedigree(l.Value) },
	key("STAT"): func(ps *ParseState, f *FamilyLink, l Line) { f.Status = l.Value },
	key("_FREL"): func(ps *ParseState, f *FamilyLink, l Line) {
		f.FatherPedigree = parsePedigree(l.Value)
	},
	key("_MREL"): func(ps *ParseState, f *FamilyLink, l Line) {
		f.MotherPedigree = parsePedigree(l.Value)
	},
	key("_PRIMARY"): func(ps *ParseState, f *FamilyLink, l Line) {
		f.Preferred = strings.EqualFold(l.Value, "Y")
	},
}

var associationTags = handlerTable[*Association]{
	key("RELA"): func(ps *ParseState, a *Association, l Line) { a.Relation = l.Value },
}
